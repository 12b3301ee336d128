package convai

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	// The agent expects 16 kHz mono signed 16-bit little-endian PCM.
	inputSampleRate = 16000
	inputChunkSize  = 4000 // samples, 250ms
)

// AudioInterface moves audio between the conversation and the outside world.
// Start must not block; input is called with raw PCM chunks until Stop.
type AudioInterface interface {
	Start(input func(pcm []byte)) error
	Stop()
	Output(pcm []byte)
	Interrupt()
}

// NullAudio sends no input and discards output, leaving a text-only session.
type NullAudio struct{}

func (NullAudio) Start(func([]byte)) error { return nil }
func (NullAudio) Stop()                    {}
func (NullAudio) Output([]byte)            {}
func (NullAudio) Interrupt()               {}

// WAVAudio streams a WAV file to the agent at real-time pace and collects
// the agent's speech into an output WAV written on Stop.
type WAVAudio struct {
	inputPath  string
	outputPath string
	chunkDelay time.Duration

	mu      sync.Mutex
	stop    chan struct{}
	done    chan struct{}
	output  []int
	stopped bool
}

func NewWAVAudio(inputPath, outputPath string) *WAVAudio {
	return &WAVAudio{
		inputPath:  inputPath,
		outputPath: outputPath,
		chunkDelay: time.Duration(inputChunkSize) * time.Second / inputSampleRate,
	}
}

func (w *WAVAudio) Start(input func(pcm []byte)) error {
	var samples []int
	if w.inputPath != "" {
		var err error
		samples, err = readWAV(w.inputPath)
		if err != nil {
			return err
		}
	}

	w.mu.Lock()
	w.stop = make(chan struct{})
	w.done = make(chan struct{})
	w.output = nil
	w.stopped = false
	stop, done := w.stop, w.done
	w.mu.Unlock()

	go func() {
		defer close(done)
		if len(samples) == 0 {
			return
		}
		ticker := time.NewTicker(w.chunkDelay)
		defer ticker.Stop()
		for off := 0; off < len(samples); off += inputChunkSize {
			end := off + inputChunkSize
			if end > len(samples) {
				end = len(samples)
			}
			input(samplesToPCM(samples[off:end]))
			select {
			case <-stop:
				return
			case <-ticker.C:
			}
		}
	}()
	return nil
}

func (w *WAVAudio) Stop() {
	w.mu.Lock()
	if w.stop == nil || w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	close(w.stop)
	done := w.done
	out := w.output
	w.mu.Unlock()

	<-done
	if w.outputPath == "" || len(out) == 0 {
		return
	}
	if err := writeWAV(w.outputPath, out); err != nil {
		log.Printf("❌ failed to write agent audio: %v", err)
	}
}

func (w *WAVAudio) Output(pcm []byte) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.output = append(w.output, pcmToSamples(pcm)...)
}

// Interrupt is a no-op: audio already received is kept in the recording.
func (w *WAVAudio) Interrupt() {}

func readWAV(path string) ([]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input wav: %w", err)
	}
	defer f.Close()

	d := wav.NewDecoder(f)
	if !d.IsValidFile() {
		return nil, errors.New("input is not a valid wav file")
	}
	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decode input wav: %w", err)
	}
	if int(d.SampleRate) != inputSampleRate || int(d.NumChans) != 1 || int(d.BitDepth) != 16 {
		return nil, fmt.Errorf("input wav must be 16kHz mono 16-bit, got %dHz %dch %dbit",
			d.SampleRate, d.NumChans, d.BitDepth)
	}
	return buf.Data, nil
}

func writeWAV(path string, samples []int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output wav: %w", err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, inputSampleRate, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{SampleRate: inputSampleRate, NumChannels: 1},
		Data:           samples,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("write output wav: %w", err)
	}
	return enc.Close()
}

func samplesToPCM(samples []int) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(int16(s)))
	}
	return out
}

func pcmToSamples(pcm []byte) []int {
	out := make([]int, len(pcm)/2)
	for i := range out {
		out[i] = int(int16(binary.LittleEndian.Uint16(pcm[i*2:])))
	}
	return out
}
