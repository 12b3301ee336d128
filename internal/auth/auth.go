package auth

import "sync"

// Service decides which Telegram users may control the assistant.
// An empty allowlist allows nobody.
type Service struct {
	mu           sync.RWMutex
	allowedUsers map[int64]struct{}
}

func New(initial []int64) *Service {
	s := &Service{allowedUsers: make(map[int64]struct{}, len(initial))}
	for _, id := range initial {
		s.allowedUsers[id] = struct{}{}
	}
	return s
}

func (s *Service) IsAllowed(userID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.allowedUsers[userID]
	return ok
}
