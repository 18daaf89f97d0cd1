package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bespinosaaco/KPAdmin/internal/forgejo"
	"github.com/bespinosaaco/KPAdmin/internal/repotest"
)

const testPath = "assets/form_records.csv"

func seedLedger(t *testing.T, store *repotest.Store, rows []Record) {
	t.Helper()
	data, err := Encode(rows)
	if err != nil {
		t.Fatalf("encode seed rows: %v", err)
	}
	store.Seed(testPath, data)
}

func storedRows(t *testing.T, store *repotest.Store) []Record {
	t.Helper()
	rows, err := Decode(store.Files[testPath])
	if err != nil {
		t.Fatalf("decode stored ledger: %v", err)
	}
	return rows
}

func TestFetchMissingLedger(t *testing.T) {
	store := NewStore(repotest.New(), testPath, 0)

	records, sha, err := store.Fetch(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, records)
	assert.Empty(t, sha)
}

func TestAppendCreatesLedger(t *testing.T) {
	fake := repotest.New()
	store := NewStore(fake, testPath, 0)

	rec := Record{Name: "A. Example", Form: "f100d_e", SignedOn: "2024-01-01"}
	err := store.Append(context.Background(), rec, "Edited by A. Example at 2024-01-01-09-30")
	assert.NoError(t, err)
	assert.Equal(t, 1, fake.Puts)
	assert.Equal(t, []string{"Edited by A. Example at 2024-01-01-09-30"}, fake.Messages)
	assert.Equal(t, []Record{rec}, storedRows(t, fake))
}

func TestAppendPreservesExistingRows(t *testing.T) {
	fake := repotest.New()
	seedLedger(t, fake, []Record{
		{Name: "Adam", Form: "f100d_e", SignedOn: "2024-01-01"},
		{Name: "Mia", Form: "f100d_e", SignedOn: "2024-01-02"},
	})
	store := NewStore(fake, testPath, 0)

	err := store.Append(context.Background(), Record{Name: "Zoe", Form: "f100d_e", SignedOn: "2024-01-03"}, "edit")
	assert.NoError(t, err)
	assert.Equal(t, []string{"Adam", "Mia", "Zoe"}, names(storedRows(t, fake)))
}

func TestAppendRetriesAfterLostRace(t *testing.T) {
	fake := repotest.New()
	seedLedger(t, fake, []Record{{Name: "Adam", Form: "f100d_e", SignedOn: "2024-01-01"}})
	store := NewStore(fake, testPath, 0)

	// A competing writer lands between our fetch and our write.
	fake.BeforePut = func(s *repotest.Store) {
		rows, _ := Decode(s.Files[testPath])
		data, _ := Encode(append(rows, Record{Name: "Mia", Form: "f100d_e", SignedOn: "2024-01-02"}))
		s.Seed(testPath, data)
	}

	err := store.Append(context.Background(), Record{Name: "Zoe", Form: "f100d_e", SignedOn: "2024-01-03"}, "edit")
	assert.NoError(t, err)
	assert.Equal(t, 2, fake.Puts)
	assert.Equal(t, []string{"Adam", "Mia", "Zoe"}, names(storedRows(t, fake)))
}

func TestAppendGivesUpAfterBudget(t *testing.T) {
	fake := repotest.New()
	seedLedger(t, fake, []Record{{Name: "Adam", Form: "f100d_e", SignedOn: "2024-01-01"}})
	store := NewStore(fake, testPath, 3)

	// Every attempt loses the race.
	var rearm func(s *repotest.Store)
	rearm = func(s *repotest.Store) {
		rows, _ := Decode(s.Files[testPath])
		data, _ := Encode(append(rows, Record{Name: "Interloper", Form: "f100d_e", SignedOn: "2024-01-02"}))
		s.Seed(testPath, data)
		s.BeforePut = rearm
	}
	fake.BeforePut = rearm

	err := store.Append(context.Background(), Record{Name: "Zoe", Form: "f100d_e", SignedOn: "2024-01-03"}, "edit")
	assert.ErrorIs(t, err, forgejo.ErrConflict)
	assert.Equal(t, 3, fake.Puts)
	assert.NotContains(t, names(storedRows(t, fake)), "Zoe")
}

func TestAppendAbortsOnTransientError(t *testing.T) {
	fake := repotest.New()
	seedLedger(t, fake, []Record{{Name: "Adam", Form: "f100d_e", SignedOn: "2024-01-01"}})
	fake.PutErr = &forgejo.StatusError{StatusCode: 503, Body: "temporarily unavailable"}
	fake.FailPuts = 1
	store := NewStore(fake, testPath, 3)

	err := store.Append(context.Background(), Record{Name: "Zoe", Form: "f100d_e", SignedOn: "2024-01-03"}, "edit")

	var se *forgejo.StatusError
	assert.ErrorAs(t, err, &se)
	assert.Equal(t, 1, fake.Puts, "transient failures must not be retried")
}

func TestRows(t *testing.T) {
	fake := repotest.New()
	seedLedger(t, fake, []Record{{Name: "Adam", Form: "f100d_e", SignedOn: "2024-01-01"}})
	store := NewStore(fake, testPath, 0)

	rows, err := store.Rows(context.Background())
	assert.NoError(t, err)
	assert.Len(t, rows, 1)

	missing := NewStore(repotest.New(), testPath, 0)
	rows, err = missing.Rows(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, rows)
}

func names(records []Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Name
	}
	return out
}
