package session

// Notification texts shown by every UI surface.
const (
	NoticeStarted    = "Assistant started. Speak into your microphone!"
	NoticeStopped    = "Assistant stopped."
	NoticeNotRunning = "Assistant is not running."
)
