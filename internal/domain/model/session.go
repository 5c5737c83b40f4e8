package model

import (
	"context"
	"sync"
	"time"
)

// Session is the aggregate root for one user's wardrobe and advisor chat.
// Both sequences are append-only for the lifetime of the session.
type Session struct {
	ID        string
	CreatedAt time.Time

	// act is a one-slot semaphore so one session runs one action at a time.
	act chan struct{}

	mu       sync.RWMutex
	lastSeen time.Time
	wardrobe []OutfitRecord
	history  []ChatTurn
}

func NewSession(id string) *Session {
	now := time.Now()
	return &Session{
		ID:        id,
		CreatedAt: now,
		act:       make(chan struct{}, 1),
		lastSeen:  now,
		wardrobe:  make([]OutfitRecord, 0, 4),
		history:   make([]ChatTurn, 0, 8),
	}
}

// Acquire waits until no other action runs on this session or ctx is done.
func (s *Session) Acquire(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case s.act <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release frees the action slot taken by Acquire.
func (s *Session) Release() { <-s.act }

func (s *Session) Touch() {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

func (s *Session) LastSeen() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSeen
}

// Wardrobe returns a copy of the outfit records in insertion order.
func (s *Session) Wardrobe() []OutfitRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]OutfitRecord, len(s.wardrobe))
	copy(out, s.wardrobe)
	return out
}

func (s *Session) AppendOutfit(rec OutfitRecord) {
	s.mu.Lock()
	s.wardrobe = append(s.wardrobe, rec)
	s.mu.Unlock()
}

// ChatHistory returns the flat history lines in insertion order.
func (s *Session) ChatHistory() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.history))
	for _, t := range s.history {
		out = append(out, t.Line())
	}
	return out
}

// Turns returns a copy of the structured history.
func (s *Session) Turns() []ChatTurn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ChatTurn, len(s.history))
	copy(out, s.history)
	return out
}

func (s *Session) AppendChatLine(turn ChatTurn) {
	s.mu.Lock()
	s.history = append(s.history, turn)
	s.mu.Unlock()
}

// RecordOutfit appends the record and its history note in one critical section.
func (s *Session) RecordOutfit(rec OutfitRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wardrobe = append(s.wardrobe, rec)
	s.history = append(s.history, NoteTurn(rec.Idea))
}

// RecordExchange appends the user turn then the assistant turn atomically.
func (s *Session) RecordExchange(userText, reply string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, UserTurn(userText), AssistantTurn(reply))
}

// Sizes reports wardrobe and history lengths under one read lock.
func (s *Session) Sizes() (wardrobe, history int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.wardrobe), len(s.history)
}

// View copies both sequences under one read lock.
func (s *Session) View() ([]OutfitRecord, []ChatTurn) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w := make([]OutfitRecord, len(s.wardrobe))
	copy(w, s.wardrobe)
	h := make([]ChatTurn, len(s.history))
	copy(h, s.history)
	return w, h
}
