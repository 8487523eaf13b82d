package wizard

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store accumulates one user's wizard input across the two steps.
// A Store is handed by reference to every step and to the result view;
// Reset starts a new session and must be called whenever the wizard is
// entered from the first step.
type Store struct {
	mu        sync.RWMutex
	sessionID string
	startedAt time.Time
	profile   Profile
}

// NewStore returns a store holding an empty profile under a fresh session.
func NewStore() *Store {
	s := &Store{}
	s.Reset()
	return s
}

// Reset discards every field and assigns a new session id, which is returned.
func (s *Store) Reset() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessionID = uuid.NewString()
	s.startedAt = time.Now()
	s.profile = Profile{}
	return s.sessionID
}

// SetPageOne merges the first step's fields into the profile.
// Fields owned by the second step are left untouched.
func (s *Store) SetPageOne(fields StepOne) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = s.profile.mergeOne(fields)
}

// SetPageTwo merges the second step's fields into the profile.
func (s *Store) SetPageTwo(fields StepTwo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = s.profile.mergeTwo(fields)
}

// Profile returns the current, possibly partial, profile.
func (s *Store) Profile() Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile
}

// SessionID identifies the current wizard pass.
func (s *Store) SessionID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessionID
}

// StartedAt is when the current session was reset.
func (s *Store) StartedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.startedAt
}

// Snapshot returns the session id and profile read under a single lock.
func (s *Store) Snapshot() (string, Profile) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessionID, s.profile
}

// Complete promotes the current profile, failing with *IncompleteProfileError
// when a step has not been committed.
func (s *Store) Complete() (CompleteProfile, error) {
	return s.Profile().Complete()
}
