package repository

import (
	"sync"
	"time"

	"teleconsult/entity"
)

// MemoryOTPSessionStore is the single-process OTP session table. Map access
// is guarded by a RWMutex; the cooldown scan-then-insert sequence in the
// precheck flow is intentionally not atomic across the two calls (see the
// service layer for the accepted race).
type MemoryOTPSessionStore struct {
	mu       sync.RWMutex
	sessions map[string]entity.OTPSession
}

// NewMemoryOTPSessionStore creates an empty in-memory OTP session store
func NewMemoryOTPSessionStore() *MemoryOTPSessionStore {
	return &MemoryOTPSessionStore{
		sessions: make(map[string]entity.OTPSession),
	}
}

func (s *MemoryOTPSessionStore) Get(precheckID string) (*entity.OTPSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[precheckID]
	if !ok {
		return nil, nil
	}
	return &session, nil
}

func (s *MemoryOTPSessionStore) Put(precheckID string, session *entity.OTPSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[precheckID] = *session
	return nil
}

func (s *MemoryOTPSessionStore) Update(precheckID string, session *entity.OTPSession) error {
	return s.Put(precheckID, session)
}

func (s *MemoryOTPSessionStore) Delete(precheckID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, precheckID)
	return nil
}

func (s *MemoryOTPSessionStore) FindRecentByMobileHash(mobileHash string, createdAfter time.Time) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, session := range s.sessions {
		if session.MobileHash == mobileHash && session.CreatedAt.After(createdAfter) {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryOTPSessionStore) Sweep(now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, session := range s.sessions {
		if !session.ExpiresAt.After(now) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed, nil
}

// MemoryAccessSessionStore is the single-process consultation access table.
type MemoryAccessSessionStore struct {
	mu       sync.RWMutex
	sessions map[string]entity.AccessSession
}

// NewMemoryAccessSessionStore creates an empty in-memory access session store
func NewMemoryAccessSessionStore() *MemoryAccessSessionStore {
	return &MemoryAccessSessionStore{
		sessions: make(map[string]entity.AccessSession),
	}
}

func (s *MemoryAccessSessionStore) Get(token string) (*entity.AccessSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[token]
	if !ok {
		return nil, nil
	}
	return &session, nil
}

func (s *MemoryAccessSessionStore) Put(token string, session *entity.AccessSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[token] = *session
	return nil
}

func (s *MemoryAccessSessionStore) Delete(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, token)
	return nil
}

func (s *MemoryAccessSessionStore) Sweep(now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for token, session := range s.sessions {
		if !session.ExpiresAt.After(now) {
			delete(s.sessions, token)
			removed++
		}
	}
	return removed, nil
}
