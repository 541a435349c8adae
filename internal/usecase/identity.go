package usecase

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mealsnap/backend/internal/domain"
)

// anonIDKey is the local-store key holding the per-install anonymous ID.
const anonIDKey = "anon_user_id"

// IdentityService resolves the stable anonymous identity for this
// install. The prefixed form (anon_<uuid>) is canonical: the same
// string is stored, returned, written into meal logs, and used for
// history queries, so anonymous rows are always distinguishable from
// authenticated ones and always findable again.
type IdentityService struct {
	store domain.KeyValueStore
}

// NewIdentityService creates a new identity service backed by the given store.
func NewIdentityService(store domain.KeyValueStore) *IdentityService {
	return &IdentityService{store: store}
}

// AnonymousID returns the stored anonymous identifier, creating and
// persisting one on first use. Repeated calls against the same store
// return the identical string.
func (s *IdentityService) AnonymousID() (string, error) {
	stored, ok, err := s.store.Get(anonIDKey)
	if err != nil {
		return "", fmt.Errorf("failed to read anonymous ID: %w", err)
	}
	if ok && stored != "" {
		// Older installs may have stored a bare UUID
		if !IsAnonymous(stored) {
			stored = domain.AnonymousIDPrefix + stored
		}
		return stored, nil
	}

	id := domain.AnonymousIDPrefix + uuid.NewString()
	if err := s.store.Set(anonIDKey, id); err != nil {
		return "", fmt.Errorf("failed to persist anonymous ID: %w", err)
	}
	return id, nil
}

// IsAnonymous reports whether an identifier belongs to the anonymous scheme.
func IsAnonymous(id string) bool {
	return strings.HasPrefix(id, domain.AnonymousIDPrefix)
}
