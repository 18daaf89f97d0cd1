package ledger

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/bespinosaaco/KPAdmin/internal/forgejo"
)

// DefaultAttempts bounds the read-modify-write cycle on conflicting appends.
const DefaultAttempts = 3

// ContentStore is the slice of the repository client the ledger needs.
type ContentStore interface {
	GetFile(ctx context.Context, path string) ([]byte, string, error)
	PutFile(ctx context.Context, path string, content []byte, sha, message string) error
	GetRaw(ctx context.Context, path string) ([]byte, error)
}

// Store reads and appends the ledger kept at a fixed repository path.
type Store struct {
	store    ContentStore
	path     string
	attempts int
}

// NewStore creates a Store. attempts <= 0 falls back to DefaultAttempts.
func NewStore(store ContentStore, path string, attempts int) *Store {
	if attempts <= 0 {
		attempts = DefaultAttempts
	}
	return &Store{store: store, path: path, attempts: attempts}
}

// Path returns the repository path the ledger lives at.
func (s *Store) Path() string {
	return s.path
}

// Fetch returns the current table together with the revision token it was
// read at. A ledger that does not exist yet is an empty table with an empty
// token, which makes the next write a create.
func (s *Store) Fetch(ctx context.Context) ([]Record, string, error) {
	data, sha, err := s.store.GetFile(ctx, s.path)
	if err != nil {
		if errors.Is(err, forgejo.ErrNotFound) {
			return []Record{}, "", nil
		}
		return nil, "", err
	}
	records, err := Decode(data)
	if err != nil {
		return nil, "", err
	}
	return records, sha, nil
}

// Append runs one read-modify-write cycle: fetch the table at its current
// token, add rec, write the whole table back conditioned on that token. When
// a concurrent append wins the race the cycle re-fetches and tries again, up
// to the configured budget; the last conflict is returned once the budget is
// spent. Any other failure aborts immediately.
func (s *Store) Append(ctx context.Context, rec Record, message string) error {
	var lastErr error
	for attempt := 1; attempt <= s.attempts; attempt++ {
		records, sha, err := s.Fetch(ctx)
		if err != nil {
			return err
		}
		encoded, err := Encode(append(records, rec))
		if err != nil {
			return err
		}
		err = s.store.PutFile(ctx, s.path, encoded, sha, message)
		if err == nil {
			return nil
		}
		if !errors.Is(err, forgejo.ErrConflict) {
			return err
		}
		lastErr = err
		logrus.Warnf("ledger: lost append race on %s (attempt %d/%d)", s.path, attempt, s.attempts)
	}
	return lastErr
}

// Rows reads the table through the raw endpoint. No token comes back, so
// rows from here must never seed a write; use Fetch for that.
func (s *Store) Rows(ctx context.Context) ([]Record, error) {
	data, err := s.store.GetRaw(ctx, s.path)
	if err != nil {
		if errors.Is(err, forgejo.ErrNotFound) {
			return []Record{}, nil
		}
		return nil, err
	}
	return Decode(data)
}
