// Package history records pipeline runs.
//
// Each run of the plan or render pipeline appends an [Entry]: where the
// document came from, how it was planned, which seed and style produced the
// output, and where the output went. Entries are what "handscript history"
// lists, and their stored seed and plan hash are enough to regenerate the
// same sheets later.
//
// Backends:
//   - [FileStore]: one JSON file per entry, for the CLI
//   - [MongoStore]: a MongoDB collection, for the HTTP server
//   - [NullStore]: records nothing
package history

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/handscript/pkg/core/style"
)

// ErrAmbiguous is returned by [Resolve] when a prefix matches several entries.
var ErrAmbiguous = errors.New("ambiguous entry id")

// Entry describes one pipeline run.
type Entry struct {
	ID        string    `json:"id" bson:"_id"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`

	Source string `json:"source" bson:"source"`
	Kind   string `json:"kind" bson:"kind"`

	Pages  int `json:"pages" bson:"pages"`
	Lines  int `json:"lines" bson:"lines"`
	Sheets int `json:"sheets" bson:"sheets"`

	Seed        int64        `json:"seed" bson:"seed"`
	Style       style.Config `json:"style" bson:"style"`
	StyleSource string       `json:"style_source,omitempty" bson:"style_source,omitempty"`
	PlanOrigin  string       `json:"plan_origin" bson:"plan_origin"`
	PlanHash    string       `json:"plan_hash" bson:"plan_hash"`

	Formats  []string      `json:"formats,omitempty" bson:"formats,omitempty"`
	Outputs  []string      `json:"outputs,omitempty" bson:"outputs,omitempty"`
	Duration time.Duration `json:"duration" bson:"duration"`
}

// NewEntry returns an entry with a fresh ID and the current time.
func NewEntry(source string) *Entry {
	return &Entry{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Source:    source,
	}
}

// ShortID returns the first eight characters of the ID.
func (e *Entry) ShortID() string {
	if len(e.ID) <= 8 {
		return e.ID
	}
	return e.ID[:8]
}

// Store persists entries.
type Store interface {
	// Add stores e, replacing any entry with the same ID.
	Add(ctx context.Context, e *Entry) error

	// Get returns the entry with id, or nil, nil when none exists.
	Get(ctx context.Context, id string) (*Entry, error)

	// List returns up to limit entries, newest first. A limit <= 0 means all.
	List(ctx context.Context, limit int) ([]Entry, error)

	// Delete removes id. Deleting a missing entry is not an error.
	Delete(ctx context.Context, id string) error

	// Clear removes every entry and returns how many were removed.
	Clear(ctx context.Context) (int, error)

	Close() error
}

// Resolve finds the entry whose ID equals or starts with prefix.
func Resolve(ctx context.Context, s Store, prefix string) (*Entry, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return nil, nil
	}
	if e, err := s.Get(ctx, prefix); err != nil || e != nil {
		return e, err
	}
	all, err := s.List(ctx, 0)
	if err != nil {
		return nil, err
	}
	var found *Entry
	for i := range all {
		if strings.HasPrefix(all[i].ID, prefix) {
			if found != nil {
				return nil, ErrAmbiguous
			}
			found = &all[i]
		}
	}
	return found, nil
}

// sortNewest orders entries by CreatedAt descending and truncates to limit.
func sortNewest(entries []Entry, limit int) []Entry {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

// NullStore records nothing.
type NullStore struct{}

func (NullStore) Add(context.Context, *Entry) error { return nil }
func (NullStore) Get(context.Context, string) (*Entry, error) { return nil, nil }
func (NullStore) List(context.Context, int) ([]Entry, error) { return nil, nil }
func (NullStore) Delete(context.Context, string) error { return nil }
func (NullStore) Clear(context.Context) (int, error) { return 0, nil }
func (NullStore) Close() error { return nil }

var _ Store = NullStore{}
