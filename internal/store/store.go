// Package store holds the capsule collection and keeps it in lockstep with
// durable storage. The collection is loaded once when the Store is opened and
// every mutation rewrites the full collection before it returns.
package store

import (
	"crypto/rand"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/timecapsule/internal/capsule"
	"github.com/hpungsan/timecapsule/internal/errors"
)

// Backend persists the whole capsule collection.
type Backend interface {
	// Load returns the persisted collection in insertion order. found is false
	// when no durable store exists yet.
	Load() (capsules []capsule.Capsule, found bool, err error)

	// Save replaces the persisted collection.
	Save(capsules []capsule.Capsule) error

	Close() error
}

// Store owns the in-memory capsule collection.
type Store struct {
	mu       sync.Mutex
	backend  Backend
	capsules []capsule.Capsule
	entropy  io.Reader
	now      func() time.Time
	newID    func() (string, error)
	logger   *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the clock used to decide whether a capsule is due.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides capsule id generation.
func WithIDGenerator(newID func() (string, error)) Option {
	return func(s *Store) { s.newID = newID }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// FetchResult is a capsule located by Fetch together with its due status.
type FetchResult struct {
	Capsule capsule.Capsule
	Due     bool
}

// Text returns the capsule message when due, otherwise the pending notice.
func (r *FetchResult) Text() string {
	if r.Due {
		return r.Capsule.Message
	}
	return capsule.PendingNotice(r.Capsule.OpenDate)
}

// Open loads the collection from backend. When the durable store does not exist
// yet, an empty collection is persisted immediately.
func Open(backend Backend, opts ...Option) (*Store, error) {
	s := &Store{
		backend: backend,
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     time.Now,
		logger:  slog.Default(),
	}
	s.newID = s.generateULID
	for _, opt := range opts {
		opt(s)
	}

	capsules, found, err := backend.Load()
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	if capsules == nil {
		capsules = []capsule.Capsule{}
	}
	if !found {
		if err := backend.Save(capsules); err != nil {
			return nil, errors.NewInternal(err)
		}
		s.logger.Info("initialized empty capsule store")
	}

	s.capsules = capsules
	s.logger.Debug("capsule store loaded", slog.Int("count", len(capsules)))
	return s, nil
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// Len returns the number of capsules in the collection.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.capsules)
}

// Store appends a new capsule and persists the collection. openDate is not
// validated here; a malformed date surfaces when the capsule is read.
func (s *Store) Store(message, openDate string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.newID()
	if err != nil {
		return "", errors.NewInternal(err)
	}

	next := append(slices.Clone(s.capsules), capsule.New(id, message, openDate))
	if err := s.persist(next); err != nil {
		return "", err
	}

	s.logger.Info("capsule stored", slog.String("capsule_id", id), slog.String("open_date", openDate))
	return id, nil
}

// Fetch locates a capsule by id and reports whether it is due.
func (s *Store) Fetch(id string) (*FetchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, errors.NewNotFound(id)
	}

	c := s.capsules[i]
	due, err := capsule.IsDue(c.OpenDate, s.now())
	if err != nil {
		return nil, errors.NewInvalidOpenDate(c.ID, c.OpenDate, err)
	}
	return &FetchResult{Capsule: c, Due: due}, nil
}

// List returns the id and open date of every capsule in insertion order.
// Each open date must parse, but capsules are not filtered by due status.
func (s *Store) List() ([]capsule.Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	loc := s.now().Location()
	summaries := make([]capsule.Summary, 0, len(s.capsules))
	for i := range s.capsules {
		c := &s.capsules[i]
		if _, err := capsule.ParseOpenDate(c.OpenDate, loc); err != nil {
			return nil, errors.NewInvalidOpenDate(c.ID, c.OpenDate, err)
		}
		summaries = append(summaries, c.ToSummary())
	}
	return summaries, nil
}

// Delete removes the capsule with the given id and persists the collection.
// A missing id leaves the collection and the durable store untouched.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return errors.NewNotFound(id)
	}

	next := slices.Delete(slices.Clone(s.capsules), i, i+1)
	if err := s.persist(next); err != nil {
		return err
	}

	s.logger.Info("capsule deleted", slog.String("capsule_id", id))
	return nil
}

// persist saves next and, only on success, makes it the in-memory collection.
// Callers must hold s.mu.
func (s *Store) persist(next []capsule.Capsule) error {
	if err := s.backend.Save(next); err != nil {
		s.logger.Error("persist capsules", slog.Any("error", err))
		return errors.NewInternal(err)
	}
	s.capsules = next
	return nil
}

// indexOf returns the position of id in the collection, or -1.
func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.capsules, func(c capsule.Capsule) bool {
		return c.ID == id
	})
}

// generateULID generates a new ULID. Callers must hold s.mu; the monotonic
// entropy source is not safe for concurrent use.
func (s *Store) generateULID() (string, error) {
	id, err := ulid.New(ulid.Timestamp(time.Now()), s.entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
