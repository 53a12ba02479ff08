package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"

	"github.com/simon-void/voidchess-engine/internal/board"
	"github.com/simon-void/voidchess-engine/internal/engine"
)

// Key prefixes
const (
	evalPrefix = "eval/"
	gamePrefix = "game/"
)

// Options configures Open.
type Options struct {
	Dir      string        // database directory, "" for the default data dir
	InMemory bool          // keep everything in memory, nothing on disk
	EvalTTL  time.Duration // lifetime of cached evaluations, 0 = forever
}

// GameRecord is a stored game session.
type GameRecord struct {
	ID      string    `json:"id"`
	Config  string           `json:"config"`
	Reason  board.StopReason `json:"reason"` // draw that ended the game
	Created time.Time        `json:"created"`
	Updated time.Time        `json:"updated"`
}

// Storage wraps BadgerDB. It implements engine.Cache.
type Storage struct {
	db      *badger.DB
	evalTTL time.Duration
	logger  zerolog.Logger
}

// Open opens (or creates) the database.
func Open(opts Options, logger zerolog.Logger) (*Storage, error) {
	var bopts badger.Options
	if opts.InMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		dir, err := GetDatabaseDir(opts.Dir)
		if err != nil {
			return nil, fmt.Errorf("database directory: %w", err)
		}
		bopts = badger.DefaultOptions(dir)
	}
	bopts.Logger = badgerLogger{logger.With().Str("component", "badger").Logger()}

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	logger.Info().Str("dir", bopts.Dir).Bool("in_memory", opts.InMemory).Msg("storage opened")
	return &Storage{db: db, evalTTL: opts.EvalTTL, logger: logger}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	if s.db != nil {
		s.logger.Info().Msg("storage closed")
		return s.db.Close()
	}
	return nil
}

// Get returns the cached ranking for key.
func (s *Storage) Get(key string) ([]engine.Ranked, bool, error) {
	var ranked []engine.Ranked
	found := false

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(evalPrefix + key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &ranked)
		})
	})
	if err != nil {
		return nil, false, err
	}
	return ranked, found, nil
}

// Put stores the ranking for key.
func (s *Storage) Put(key string, ranked []engine.Ranked) error {
	data, err := json.Marshal(ranked)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(evalPrefix+key), data)
		if s.evalTTL > 0 {
			e = e.WithTTL(s.evalTTL)
		}
		return txn.SetEntry(e)
	})
}

// SaveGame stores a game session, keeping its creation time if it
// already exists.
func (s *Storage) SaveGame(rec GameRecord) error {
	return s.db.Update(func(txn *badger.Txn) error {
		key := []byte(gamePrefix + rec.ID)
		now := time.Now()
		rec.Updated = now

		item, err := txn.Get(key)
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
			if rec.Created.IsZero() {
				rec.Created = now
			}
		case err != nil:
			return err
		default:
			var old GameRecord
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &old)
			}); err != nil {
				return err
			}
			rec.Created = old.Created
		}

		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
}

// LoadGame returns the game session with the given id.
func (s *Storage) LoadGame(id string) (GameRecord, bool, error) {
	var rec GameRecord
	found := false

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(gamePrefix + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	return rec, found, err
}

// DeleteGame removes a game session. Deleting a missing session is not an
// error.
func (s *Storage) DeleteGame(id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(gamePrefix + id))
	})
}

// ListGames returns all stored sessions, oldest first.
func (s *Storage) ListGames() ([]GameRecord, error) {
	var games []GameRecord

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(gamePrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var rec GameRecord
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return err
			}
			games = append(games, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(games, func(i, j int) bool {
		return games[i].Created.Before(games[j].Created)
	})
	return games, nil
}

// CountEvaluations returns the number of cached rankings.
func (s *Storage) CountEvaluations() (int, error) {
	n := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(evalPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}

// badgerLogger forwards badger's log output to zerolog. Badger's info
// chatter goes to debug level.
type badgerLogger struct {
	log zerolog.Logger
}

func (l badgerLogger) Errorf(format string, args ...interface{}) {
	l.log.Error().Msgf(format, args...)
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.log.Warn().Msgf(format, args...)
}

func (l badgerLogger) Infof(format string, args ...interface{}) {
	l.log.Debug().Msgf(format, args...)
}

func (l badgerLogger) Debugf(format string, args ...interface{}) {
	l.log.Trace().Msgf(format, args...)
}
