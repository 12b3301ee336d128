package convai

import (
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestPCMConversion(t *testing.T) {
	samples := []int{0, 1, -1, 32767, -32768}
	got := pcmToSamples(samplesToPCM(samples))
	for i := range samples {
		if got[i] != samples[i] {
			t.Fatalf("sample %d: want %d, got %d", i, samples[i], got[i])
		}
	}
}

func TestWAVAudio_StreamsInputAndRecordsOutput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.wav")
	out := filepath.Join(dir, "out.wav")

	samples := make([]int, inputChunkSize+100)
	for i := range samples {
		samples[i] = i % 1000
	}
	if err := writeWAV(in, samples); err != nil {
		t.Fatalf("write input: %v", err)
	}

	a := NewWAVAudio(in, out)
	a.chunkDelay = time.Millisecond

	var mu sync.Mutex
	var chunks [][]byte
	done := make(chan struct{})
	if err := a.Start(func(pcm []byte) {
		mu.Lock()
		chunks = append(chunks, pcm)
		n := len(chunks)
		mu.Unlock()
		if n == 2 {
			close(done)
		}
	}); err != nil {
		t.Fatalf("start: %v", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("input not streamed")
	}

	a.Output(samplesToPCM([]int{10, 20, 30}))
	a.Interrupt()
	a.Stop()
	a.Stop()

	mu.Lock()
	if len(chunks[0]) != inputChunkSize*2 || len(chunks[1]) != 200 {
		t.Fatalf("unexpected chunk sizes: %d, %d", len(chunks[0]), len(chunks[1]))
	}
	mu.Unlock()

	recorded, err := readWAV(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if len(recorded) != 3 || recorded[2] != 30 {
		t.Fatalf("unexpected recorded samples: %v", recorded)
	}
}

func TestWAVAudio_MissingInput(t *testing.T) {
	a := NewWAVAudio(filepath.Join(t.TempDir(), "missing.wav"), "")
	if err := a.Start(func([]byte) {}); err == nil {
		t.Fatalf("want error for missing input")
	}
	a.Stop()
}

func TestWAVAudio_NoInputNoOutput(t *testing.T) {
	a := NewWAVAudio("", "")
	if err := a.Start(func([]byte) { t.Errorf("no input expected") }); err != nil {
		t.Fatalf("start: %v", err)
	}
	a.Output([]byte{1, 0})
	a.Stop()
}
