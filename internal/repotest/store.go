// Package repotest provides an in-memory stand-in for the repository client.
// It honors the same conditional-write rules as the real server: a non-empty
// token must match the current revision, an empty token only creates. Not
// safe for concurrent use; tests drive it sequentially.
package repotest

import (
	"context"
	"fmt"

	"github.com/bespinosaaco/KPAdmin/internal/forgejo"
)

type Store struct {
	Files map[string][]byte
	SHAs  map[string]string

	Puts     int
	Messages []string

	// BeforePut runs ahead of each conditional check and clears itself; a
	// hook that wants to fire again re-arms from inside.
	BeforePut func(s *Store)

	// PutErr is returned for the next FailPuts calls to PutFile.
	PutErr   error
	FailPuts int

	rev int
}

func New() *Store {
	return &Store{Files: map[string][]byte{}, SHAs: map[string]string{}}
}

// Seed stores data under path as if another writer had committed it.
func (s *Store) Seed(path string, data []byte) {
	s.rev++
	s.Files[path] = data
	s.SHAs[path] = fmt.Sprintf("sha-%d", s.rev)
}

func (s *Store) GetFile(ctx context.Context, path string) ([]byte, string, error) {
	data, ok := s.Files[path]
	if !ok {
		return nil, "", forgejo.ErrNotFound
	}
	return append([]byte(nil), data...), s.SHAs[path], nil
}

func (s *Store) PutFile(ctx context.Context, path string, content []byte, sha, message string) error {
	s.Puts++
	if s.FailPuts > 0 {
		s.FailPuts--
		return s.PutErr
	}
	if hook := s.BeforePut; hook != nil {
		s.BeforePut = nil
		hook(s)
	}
	_, exists := s.Files[path]
	if sha == "" && exists {
		return &forgejo.ConflictError{Path: path, Reason: "repository file already exists"}
	}
	if sha != "" && sha != s.SHAs[path] {
		return &forgejo.ConflictError{Path: path, Reason: "sha does not match"}
	}
	s.Seed(path, content)
	s.Messages = append(s.Messages, message)
	return nil
}

func (s *Store) GetRaw(ctx context.Context, path string) ([]byte, error) {
	data, ok := s.Files[path]
	if !ok {
		return nil, forgejo.ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

// FileURL mirrors the web link the real client builds for a stored path.
func (s *Store) FileURL(path string) string {
	return "https://git.example.org/poduska-lab/KPAdmin/src/branch/main/" + path
}
