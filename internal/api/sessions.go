package api

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/simon-void/voidchess-engine/internal/board"
	"github.com/simon-void/voidchess-engine/internal/storage"
)

var (
	errGameNotFound = errors.New("game not found")
	errTooManyGames = errors.New("too many games")
	errBadGameID    = errors.New("invalid game id")
	errConflict     = errors.New("game changed concurrently")
)

// SessionStore persists sessions. *storage.Storage implements it.
type SessionStore interface {
	SaveGame(rec storage.GameRecord) error
	LoadGame(id string) (storage.GameRecord, bool, error)
	DeleteGame(id string) error
	ListGames() ([]storage.GameRecord, error)
}

type session struct {
	id      string
	config  string
	reason  board.StopReason // draw that ended the game
	created time.Time
}

// Sessions keeps the games played through the API. The map holds every
// session used since start; the store, if any, survives restarts.
type Sessions struct {
	mu    sync.Mutex
	games map[string]*session
	store SessionStore
	max   int
}

func NewSessions(store SessionStore, max int) *Sessions {
	return &Sessions{
		games: make(map[string]*session),
		store: store,
		max:   max,
	}
}

// Create starts a session from a validated config.
func (s *Sessions) Create(config string) (session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.games) >= s.max {
		return session{}, errTooManyGames
	}
	sess := &session{id: uuid.NewString(), config: config, created: time.Now()}
	if err := s.persist(sess); err != nil {
		return session{}, err
	}
	s.games[sess.id] = sess
	return *sess, nil
}

// Get returns the session with the given id, loading it from the store
// when it is not in memory.
func (s *Sessions) Get(id string) (session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return session{}, errBadGameID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.games[id]; ok {
		return *sess, nil
	}
	if s.store == nil {
		return session{}, errGameNotFound
	}
	rec, ok, err := s.store.LoadGame(id)
	if err != nil {
		return session{}, err
	}
	if !ok {
		return session{}, errGameNotFound
	}
	sess := &session{id: rec.ID, config: rec.Config, reason: rec.Reason, created: rec.Created}
	s.games[id] = sess
	return *sess, nil
}

// Update replaces the config of a session. It fails when the session was
// changed since it was read.
func (s *Sessions) Update(old session, config string, reason board.StopReason) (session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.games[old.id]
	if !ok {
		return session{}, errGameNotFound
	}
	if sess.config != old.config || sess.reason != old.reason {
		return session{}, errConflict
	}
	next := *sess
	next.config = config
	next.reason = reason
	if err := s.persist(&next); err != nil {
		return session{}, err
	}
	*sess = next
	return next, nil
}

// Delete removes a session.
func (s *Sessions) Delete(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errBadGameID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, inMemory := s.games[id]
	delete(s.games, id)
	if s.store != nil {
		if _, ok, err := s.store.LoadGame(id); err != nil {
			return err
		} else if ok {
			return s.store.DeleteGame(id)
		}
	}
	if !inMemory {
		return errGameNotFound
	}
	return nil
}

// List returns the ids of all known sessions.
func (s *Sessions) List() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]bool, len(s.games))
	var ids []string
	if s.store != nil {
		recs, err := s.store.ListGames()
		if err != nil {
			return nil, err
		}
		for _, rec := range recs {
			seen[rec.ID] = true
			ids = append(ids, rec.ID)
		}
	}
	for id := range s.games {
		if !seen[id] {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (s *Sessions) persist(sess *session) error {
	if s.store == nil {
		return nil
	}
	return s.store.SaveGame(storage.GameRecord{
		ID:      sess.id,
		Config:  sess.config,
		Reason:  sess.reason,
		Created: sess.created,
	})
}
