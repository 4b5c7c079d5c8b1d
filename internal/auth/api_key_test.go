package auth

import (
	"context"
	"testing"
)

func TestInMemoryAPIKeyStoreLookup(t *testing.T) {
	store := NewInMemoryAPIKeyStore([]string{"key-one", "key-two"})
	ctx := context.Background()

	rec, err := store.Lookup(ctx, "key-one")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if rec.Revoked {
		t.Error("Lookup() returned revoked record for configured key")
	}

	if _, err := store.Lookup(ctx, "unknown-key"); err != ErrKeyNotFound {
		t.Errorf("Lookup() error = %v, want ErrKeyNotFound", err)
	}
}

func TestAPIKeyRecordAllowsProject(t *testing.T) {
	unrestricted := &APIKeyRecord{}
	if !unrestricted.AllowsProject("any-project") {
		t.Error("AllowsProject() = false for unrestricted key")
	}

	restricted := &APIKeyRecord{AllowedProjects: []string{"proj-a"}}
	if !restricted.AllowsProject("proj-a") {
		t.Error("AllowsProject() = false for allowed project")
	}
	if restricted.AllowsProject("proj-b") {
		t.Error("AllowsProject() = true for disallowed project")
	}
}
