package auth

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"boq_engine/internal/utils"
)

// ErrKeyNotFound is returned when an API key does not resolve to a record
var ErrKeyNotFound = errors.New("API key not found")

// APIKeyRecord is the view of an API key needed at request time.
type APIKeyRecord struct {
	ID              string
	Name            string
	AllowedProjects []string
	Revoked         bool
}

// AllowsProject checks whether this key may calculate costs for a project.
func (k *APIKeyRecord) AllowsProject(projectID string) bool {
	// If no projects configured, allow everything.
	if len(k.AllowedProjects) == 0 {
		return true
	}
	return slices.Contains(k.AllowedProjects, projectID)
}

// APIKeyStore resolves plaintext API keys into stored records.
type APIKeyStore interface {
	Lookup(ctx context.Context, plaintextKey string) (*APIKeyRecord, error)
}

// InMemoryAPIKeyStore holds keys configured at startup. Keys are stored
// hashed; the plaintext never lives in process memory past lookup.
type InMemoryAPIKeyStore struct {
	// map of hash(API key) -> record
	keys map[string]*APIKeyRecord
}

// NewInMemoryAPIKeyStore builds a store from the configured plaintext keys.
func NewInMemoryAPIKeyStore(plaintextKeys []string) *InMemoryAPIKeyStore {
	s := &InMemoryAPIKeyStore{
		keys: make(map[string]*APIKeyRecord, len(plaintextKeys)),
	}
	for i, key := range plaintextKeys {
		hash := utils.HashString(key)
		s.keys[hash] = &APIKeyRecord{
			ID:   hash[:12],
			Name: fmt.Sprintf("configured-key-%d", i+1),
			// All projects allowed for configured keys.
			AllowedProjects: nil,
		}
	}
	return s
}

func (s *InMemoryAPIKeyStore) Lookup(ctx context.Context, plaintextKey string) (*APIKeyRecord, error) {
	rec, ok := s.keys[utils.HashString(plaintextKey)]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return rec, nil
}
