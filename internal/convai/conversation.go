package convai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var (
	ErrNotRunning     = errors.New("conversation is not running")
	ErrAlreadyRunning = errors.New("conversation is already running")
)

// Callbacks receive the text events of a conversation. Nil callbacks are skipped.
type Callbacks struct {
	AgentResponse           func(response string)
	AgentResponseCorrection func(original, corrected string)
	UserTranscript          func(transcript string)
}

type Option func(*Conversation)

func WithRequiresAuth(v bool) Option {
	return func(c *Conversation) { c.requiresAuth = v }
}

func WithAudioInterface(a AudioInterface) Option {
	return func(c *Conversation) {
		if a != nil {
			c.audio = a
		}
	}
}

func WithCallbacks(cb Callbacks) Option {
	return func(c *Conversation) { c.callbacks = cb }
}

func WithDialer(d *websocket.Dialer) Option {
	return func(c *Conversation) {
		if d != nil {
			c.dialer = d
		}
	}
}

// Conversation is a single agent conversation. Run blocks for the life of a
// session; End stops it from another goroutine.
type Conversation struct {
	client       *Client
	agentID      string
	requiresAuth bool
	audio        AudioInterface
	callbacks    Callbacks
	dialer       *websocket.Dialer

	mu              sync.Mutex
	running         bool
	cancel          context.CancelFunc
	conversationID  string
	lastInterruptID int

	writeMu sync.Mutex
	conn    *websocket.Conn
}

func NewConversation(client *Client, agentID string, opts ...Option) *Conversation {
	c := &Conversation{
		client:  client,
		agentID: agentID,
		audio:   NullAudio{},
		dialer:  websocket.DefaultDialer,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run starts a session and dispatches server events until End is called,
// ctx is cancelled, or the connection fails. A session stopped by End, by
// ctx, or by a normal close from the server returns nil.
func (c *Conversation) Run(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return ErrAlreadyRunning
	}
	runCtx, cancel := context.WithCancel(ctx)
	c.running = true
	c.cancel = cancel
	c.conversationID = ""
	c.lastInterruptID = 0
	c.mu.Unlock()

	defer func() {
		cancel()
		c.mu.Lock()
		c.running = false
		c.cancel = nil
		c.mu.Unlock()
	}()

	// A session ended while still connecting is a stop, not a failure.
	wsURL, err := c.sessionURL(runCtx)
	if err != nil {
		if runCtx.Err() != nil {
			return nil
		}
		return err
	}
	conn, _, err := c.dialer.DialContext(runCtx, wsURL, http.Header{})
	if err != nil {
		if runCtx.Err() != nil {
			return nil
		}
		return fmt.Errorf("dial conversation: %w", err)
	}
	defer conn.Close()

	c.writeMu.Lock()
	c.conn = conn
	c.writeMu.Unlock()
	defer func() {
		c.writeMu.Lock()
		c.conn = nil
		c.writeMu.Unlock()
	}()

	if err := c.writeJSON(initiationMessage{
		Type:                       "conversation_initiation_client_data",
		CustomLLMExtraBody:         map[string]any{},
		ConversationConfigOverride: map[string]any{},
		DynamicVariables:           map[string]any{},
	}); err != nil {
		return fmt.Errorf("send initiation: %w", err)
	}

	if err := c.audio.Start(c.sendAudio); err != nil {
		return fmt.Errorf("start audio: %w", err)
	}
	defer c.audio.Stop()

	// Closing the socket is the only way to unblock ReadMessage.
	readDone := make(chan struct{})
	defer close(readDone)
	go func() {
		select {
		case <-runCtx.Done():
			_ = conn.Close()
		case <-readDone:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if runCtx.Err() != nil {
				return nil
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			return fmt.Errorf("read conversation: %w", err)
		}
		c.handleMessage(data)
	}
}

// End stops the running session.
func (c *Conversation) End() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running || c.cancel == nil {
		return ErrNotRunning
	}
	c.cancel()
	return nil
}

func (c *Conversation) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// ConversationID is the server-assigned id of the current or last session.
func (c *Conversation) ConversationID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conversationID
}

func (c *Conversation) sessionURL(ctx context.Context) (string, error) {
	if c.requiresAuth {
		return c.client.SignedURL(ctx, c.agentID)
	}
	return c.client.conversationURL(c.agentID)
}

func (c *Conversation) handleMessage(data []byte) {
	var ev serverEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		log.Printf("⚠️ skipping malformed conversation event: %v", err)
		return
	}

	switch ev.Type {
	case eventInitiationMetadata:
		if ev.InitiationMetadata != nil {
			c.mu.Lock()
			c.conversationID = ev.InitiationMetadata.ConversationID
			c.mu.Unlock()
			log.Printf("🎤 conversation started: id=%s format=%s",
				ev.InitiationMetadata.ConversationID, ev.InitiationMetadata.AgentOutputAudioFormat)
		}
	case eventAudio:
		if ev.Audio == nil {
			return
		}
		c.mu.Lock()
		stale := ev.Audio.EventID <= c.lastInterruptID
		c.mu.Unlock()
		if stale {
			return
		}
		pcm, err := base64.StdEncoding.DecodeString(ev.Audio.AudioBase64)
		if err != nil {
			log.Printf("⚠️ invalid audio payload: %v", err)
			return
		}
		c.audio.Output(pcm)
	case eventAgentResponse:
		if ev.AgentResponse != nil && c.callbacks.AgentResponse != nil {
			c.callbacks.AgentResponse(ev.AgentResponse.AgentResponse)
		}
	case eventAgentResponseCorrection:
		if ev.AgentResponseCorrection != nil && c.callbacks.AgentResponseCorrection != nil {
			c.callbacks.AgentResponseCorrection(
				ev.AgentResponseCorrection.OriginalAgentResponse,
				ev.AgentResponseCorrection.CorrectedAgentResponse,
			)
		}
	case eventUserTranscript:
		if ev.UserTranscription != nil && c.callbacks.UserTranscript != nil {
			c.callbacks.UserTranscript(ev.UserTranscription.UserTranscript)
		}
	case eventInterruption:
		if ev.Interruption != nil {
			c.mu.Lock()
			c.lastInterruptID = ev.Interruption.EventID
			c.mu.Unlock()
		}
		c.audio.Interrupt()
	case eventPing:
		if ev.Ping == nil {
			return
		}
		if err := c.writeJSON(pongMessage{Type: "pong", EventID: ev.Ping.EventID}); err != nil {
			log.Printf("⚠️ failed to send pong: %v", err)
		}
	}
}

func (c *Conversation) sendAudio(pcm []byte) {
	msg := audioChunkMessage{UserAudioChunk: base64.StdEncoding.EncodeToString(pcm)}
	if err := c.writeJSON(msg); err != nil {
		log.Printf("⚠️ failed to send audio chunk: %v", err)
	}
}

func (c *Conversation) writeJSON(payload any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.conn == nil {
		return ErrNotRunning
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return c.conn.WriteJSON(payload)
}
