// Package session tracks the single pending reply mode of each user.
package session

import (
	"sync"
	"time"
)

type Mode int

const (
	None Mode = iota
	AwaitingComment
	AwaitingAdminMessage
)

func (m Mode) String() string {
	switch m {
	case AwaitingComment:
		return "awaiting_comment"
	case AwaitingAdminMessage:
		return "awaiting_admin_message"
	default:
		return "none"
	}
}

// Flag is the pending mode of one user. Ordinal is set only for
// AwaitingComment.
type Flag struct {
	Mode    Mode
	Ordinal uint64
	SetAt   time.Time
}

// State holds at most one flag per identity; setting a flag overwrites any
// previous one. With a positive ttl, flags older than ttl read as None.
type State struct {
	mu    sync.Mutex
	flags map[int64]Flag
	ttl   time.Duration
	now   func() time.Time
}

func New(ttl time.Duration) *State {
	return &State{
		flags: make(map[int64]Flag),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (s *State) WithClock(now func() time.Time) *State {
	s.now = now
	return s
}

func (s *State) SetAwaitingComment(identity int64, ordinal uint64) {
	s.set(identity, Flag{Mode: AwaitingComment, Ordinal: ordinal})
}

func (s *State) SetAwaitingAdminMessage(identity int64) {
	s.set(identity, Flag{Mode: AwaitingAdminMessage})
}

func (s *State) set(identity int64, f Flag) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f.SetAt = s.now()
	s.flags[identity] = f
}

func (s *State) Clear(identity int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.flags, identity)
}

func (s *State) Get(identity int64) Flag {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, _ := s.live(identity)
	return f
}

// Take returns the identity's flag and clears it in one step, so a message
// consumes a pending mode at most once.
func (s *State) Take(identity int64) Flag {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.live(identity)
	if ok {
		delete(s.flags, identity)
	}
	return f
}

// Restore puts f back unless a newer flag was set in the meantime.
func (s *State) Restore(identity int64, f Flag) {
	if f.Mode == None {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.live(identity); ok {
		return
	}
	s.flags[identity] = f
}

func (s *State) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.flags)
}

// live returns the unexpired flag for identity, dropping an expired one.
// Caller holds mu.
func (s *State) live(identity int64) (Flag, bool) {
	f, ok := s.flags[identity]
	if !ok {
		return Flag{}, false
	}
	if s.ttl > 0 && s.now().Sub(f.SetAt) >= s.ttl {
		delete(s.flags, identity)
		return Flag{}, false
	}
	return f, true
}
