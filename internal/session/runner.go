package session

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"
)

// Conversation is the vendor session the runner drives.
type Conversation interface {
	Run(ctx context.Context) error
	End() error
}

// ErrorRecorder persists a failed session as a conversation entry.
type ErrorRecorder interface {
	RecordError(err error)
}

// Runner starts conversations in the background so the UI stays responsive.
// It keeps no session state of its own: a second Start while one is running
// is passed straight to the conversation.
type Runner struct {
	ctx  context.Context
	conv Conversation
	rec  ErrorRecorder

	wg sync.WaitGroup
}

func NewRunner(ctx context.Context, conv Conversation, rec ErrorRecorder) *Runner {
	return &Runner{ctx: ctx, conv: conv, rec: rec}
}

// Start launches one session goroutine and returns its run id.
func (r *Runner) Start() string {
	runID := uuid.NewString()
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.run(runID)
	}()
	return runID
}

func (r *Runner) run(runID string) {
	var err error
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%v", p)
		}
		if err != nil {
			log.Printf("❌ session %s failed: %v", runID, err)
			r.rec.RecordError(err)
			return
		}
		log.Printf("⏹ session %s finished", runID)
	}()

	log.Printf("▶️ session %s starting", runID)
	err = r.conv.Run(r.ctx)
}

// Stop asks the running conversation to end.
func (r *Runner) Stop() error {
	if err := r.conv.End(); err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	return nil
}

// Wait blocks until every started session goroutine has exited.
func (r *Runner) Wait() {
	r.wg.Wait()
}
