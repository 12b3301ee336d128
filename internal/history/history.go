package history

import (
	"log"

	"voice-assistant/internal/storage"
)

const interruptedSuffix = " (interrupted)"

// Recorder turns conversation events into log entries. Every event produces
// exactly one append, and with it one full rewrite of the log file.
type Recorder struct {
	log storage.Log
}

func NewRecorder(l storage.Log) *Recorder {
	return &Recorder{log: l}
}

func (r *Recorder) OnAgentResponse(response string) {
	r.append(storage.Entry{Role: storage.RoleAssistant, Text: response})
}

// OnAgentResponseCorrection records the corrected text of a response the user
// cut off. The original text is dropped.
func (r *Recorder) OnAgentResponseCorrection(original, corrected string) {
	r.append(storage.Entry{Role: storage.RoleAssistant, Text: corrected + interruptedSuffix})
}

func (r *Recorder) OnUserTranscript(transcript string) {
	r.append(storage.Entry{Role: storage.RoleUser, Text: transcript})
}

// RecordError appends a system entry for a failed session.
func (r *Recorder) RecordError(err error) {
	if err == nil {
		return
	}
	r.append(storage.Entry{Role: storage.RoleSystem, Text: "Error: " + err.Error()})
}

func (r *Recorder) append(e storage.Entry) {
	if err := r.log.Append(e); err != nil {
		log.Printf("❌ failed to persist %s entry: %v", e.Role, err)
	}
}
