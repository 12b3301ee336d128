package storage

// Role tags who produced a conversation entry.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Entry is one role-tagged line of the conversation.
// Entries are appended in chronological order and never modified.
type Entry struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Log abstracts persistence of conversation entries.
// Append must persist the whole log before returning.
// Entries returns a copy in chronological order.
// Implementations must be safe for concurrent use.
type Log interface {
	Append(entry Entry) error
	Entries() []Entry
}
