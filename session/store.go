// Package session keeps the signed-in user and their role. Manager is the
// only writer; everything else reads a Store through Reader.
package session

import (
	"sync"
	"time"
)

type Session struct {
	UID          string
	Token        string
	Name         string
	Email        string
	AvatarURL    string
	Role         string
	LastActivity time.Time
}

// State is a snapshot of the store. Pending is true until the first
// resolution finishes. RecentSession mirrors the persisted marker left by
// the last sign-in.
type State struct {
	Pending       bool
	Session       *Session
	RecentSession bool
}

func (s State) Authenticated() bool {
	return s.Session != nil
}

func (s State) Role() string {
	if s.Session == nil {
		return ""
	}
	return s.Session.Role
}

type Reader interface {
	State() State
}

type Store struct {
	mu     sync.RWMutex
	state  State
	subs   map[int]chan State
	nextID int
}

func NewStore() *Store {
	return &Store{
		state: State{Pending: true},
		subs:  make(map[int]chan State),
	}
}

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyState(s.state)
}

// Token returns the current bearer token or "". It fits client.TokenSource.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.Session == nil {
		return ""
	}
	return s.state.Session.Token
}

// Subscribe delivers the latest state after every publish. Slow readers
// only see the newest value. The returned func unsubscribes.
func (s *Store) Subscribe() (<-chan State, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	ch := make(chan State, 1)
	s.subs[id] = ch
	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
}

func (s *Store) publish(st State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = copyState(st)
	for _, ch := range s.subs {
		snapshot := copyState(st)
		select {
		case ch <- snapshot:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- snapshot
		}
	}
}

func copyState(st State) State {
	if st.Session != nil {
		cp := *st.Session
		st.Session = &cp
	}
	return st
}
