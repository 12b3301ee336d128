// Package display re-renders the whole conversation from the log file into
// a UI container on every poll.
package display

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"voice-assistant/internal/scheduler"
	"voice-assistant/internal/storage"
)

// Container is a UI region whose content is fully replaced on every refresh.
type Container interface {
	Replace(lines []string)
}

// Render formats a single entry the way the chat shows it.
func Render(e storage.Entry) (string, bool) {
	switch e.Role {
	case storage.RoleUser:
		return "🧑 **You:** " + e.Text, true
	case storage.RoleAssistant:
		return "🤖 **Assistant:** " + e.Text, true
	case storage.RoleSystem:
		return "⚠️ " + e.Text, true
	default:
		return "", false
	}
}

// RenderAll renders entries in order, skipping unknown roles.
func RenderAll(entries []storage.Entry) []string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		if line, ok := Render(e); ok {
			lines = append(lines, line)
		}
	}
	return lines
}

type Loop struct {
	path     string
	interval time.Duration

	mu         sync.RWMutex
	containers []Container
}

func NewLoop(path string, interval time.Duration, containers ...Container) *Loop {
	return &Loop{path: path, interval: interval, containers: containers}
}

// Attach adds a container to be refreshed on every tick.
func (l *Loop) Attach(c Container) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.containers = append(l.containers, c)
}

// Refresh reads the log file and replaces every container's content. When the
// file does not exist yet nothing is touched.
func (l *Loop) Refresh(ctx context.Context) error {
	entries, ok, err := storage.ReadFile(l.path)
	if err != nil {
		return fmt.Errorf("refresh display: %w", err)
	}
	if !ok {
		return nil
	}
	lines := RenderAll(entries)

	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, c := range l.containers {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.Replace(lines)
	}
	return nil
}

// Run refreshes immediately and then on every interval until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	if err := l.Refresh(ctx); err != nil {
		log.Printf("⚠️ %v", err)
	}

	s := scheduler.New(l.interval)
	s.SetTask(l.Refresh)
	if err := s.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	s.Stop()
	return nil
}
