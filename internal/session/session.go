// Package session keeps per-player game state in memory. Sessions are
// isolated from each other: each owns its player, history and dice.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/lotus-events/pkg/dice"
	"github.com/jwebster45206/lotus-events/pkg/event"
	"github.com/jwebster45206/lotus-events/pkg/player"
)

var ErrNotFound = errors.New("session not found")

// Session is one player's run. Its fields are guarded by the store; callers
// get copies through View.
type Session struct {
	ID        uuid.UUID
	Seed      uint64
	Player    player.State
	History   *player.History
	Current   *event.EventData
	Turns     int
	CreatedAt time.Time
	UpdatedAt time.Time

	dice *dice.Rand
}

// View is a read-only copy of a session suitable for encoding.
type View struct {
	ID            uuid.UUID        `json:"id"`
	Seed          uint64           `json:"seed"`
	Player        player.State     `json:"player"`
	TierName      string           `json:"tier_name"`
	RecentDomains []event.Domain   `json:"recent_domains"`
	Encountered   int              `json:"encountered"`
	Current       *event.EventData `json:"current_event,omitempty"`
	Turns         int              `json:"turns"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

func (s *Session) view() View {
	v := View{
		ID:            s.ID,
		Seed:          s.Seed,
		Player:        s.Player,
		TierName:      player.TierName(s.Player.Tier),
		RecentDomains: append([]event.Domain(nil), s.History.RecentDomains...),
		Encountered:   len(s.History.Encountered),
		Turns:         s.Turns,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
	if s.Current != nil {
		cur := *s.Current
		v.Current = &cur
	}
	return v
}

// Store is a mutex-guarded map of sessions.
type Store struct {
	mu          sync.Mutex
	sessions    map[uuid.UUID]*Session
	historySize int
	seed        func() (uint64, error)
	now         func() time.Time
}

// NewStore creates a store. A fixed seed of zero means every session draws
// its own random seed.
func NewStore(historySize int, fixedSeed uint64) *Store {
	seed := dice.NewSeed
	if fixedSeed != 0 {
		seed = func() (uint64, error) { return fixedSeed, nil }
	}
	return &Store{
		sessions:    make(map[uuid.UUID]*Session),
		historySize: historySize,
		seed:        seed,
		now:         time.Now,
	}
}

// Create starts a session for p.
func (s *Store) Create(p player.State) (View, error) {
	seed, err := s.seed()
	if err != nil {
		return View{}, err
	}

	now := s.now()
	sess := &Session{
		ID:        uuid.New(),
		Seed:      seed,
		Player:    p,
		History:   player.NewHistory(s.historySize),
		CreatedAt: now,
		UpdatedAt: now,
		dice:      dice.New(seed),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
	return sess.view(), nil
}

// Get returns a copy of the session.
func (s *Store) Get(id uuid.UUID) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return View{}, ErrNotFound
	}
	return sess.view(), nil
}

// Update runs fn with exclusive access to the session. Changes fn makes are
// kept even when it returns an error.
func (s *Store) Update(id uuid.UUID, fn func(sess *Session, src dice.Source) error) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return View{}, ErrNotFound
	}
	err := fn(sess, sess.dice)
	sess.UpdatedAt = s.now()
	return sess.view(), err
}

// Delete removes a session.
func (s *Store) Delete(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(s.sessions, id)
	return nil
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
