package userrepo

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/yanqian/jeevamithra/internal/domain/auth"
)

// MemoryRepository keeps accounts in process for development and tests.
type MemoryRepository struct {
	mu         sync.RWMutex
	users      map[int64]auth.User
	emailIndex map[string]int64
	identities map[string]auth.Identity
	userIndex  map[string]string
	seq        int64
	identityID int64
}

// NewMemoryRepository constructs a new in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users:      make(map[int64]auth.User),
		emailIndex: make(map[string]int64),
		identities: make(map[string]auth.Identity),
		userIndex:  make(map[string]string),
	}
}

// Create stores the account, assigning its id.
func (r *MemoryRepository) Create(_ context.Context, user auth.User) (auth.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.emailIndex[user.Email]; exists {
		return auth.User{}, auth.ErrEmailExists
	}
	r.seq++
	user.ID = r.seq
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = user.CreatedAt
	}
	r.users[user.ID] = user
	r.emailIndex[user.Email] = user.ID
	return user, nil
}

// Update replaces the profile fields of an existing account.
func (r *MemoryRepository) Update(_ context.Context, user auth.User) (auth.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.users[user.ID]
	if !ok {
		return auth.User{}, auth.ErrUserNotFound
	}
	existing.FullName = user.FullName
	existing.Phone = user.Phone
	existing.Age = user.Age
	existing.Gender = user.Gender
	existing.PhotoURL = user.PhotoURL
	existing.UpdatedAt = user.UpdatedAt
	r.users[user.ID] = existing
	return existing, nil
}

// GetByEmail returns a user by email.
func (r *MemoryRepository) GetByEmail(_ context.Context, email string) (auth.User, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if id, ok := r.emailIndex[email]; ok {
		return r.users[id], true, nil
	}
	return auth.User{}, false, nil
}

// GetByID fetches by ID.
func (r *MemoryRepository) GetByID(_ context.Context, id int64) (auth.User, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	return user, ok, nil
}

// GetIdentity returns an identity by provider and subject.
func (r *MemoryRepository) GetIdentity(_ context.Context, provider, providerSubject string) (auth.Identity, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	identity, ok := r.identities[identityKey(provider, providerSubject)]
	return identity, ok, nil
}

// GetIdentityByUser returns the user's identity with provider.
func (r *MemoryRepository) GetIdentityByUser(_ context.Context, userID int64, provider string) (auth.Identity, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	key, ok := r.userIndex[userIdentityKey(provider, userID)]
	if !ok {
		return auth.Identity{}, false, nil
	}
	identity, ok := r.identities[key]
	return identity, ok, nil
}

// UpsertIdentity stores the link, keeping the old refresh token and email
// when the update carries none.
func (r *MemoryRepository) UpsertIdentity(_ context.Context, identity auth.Identity) (auth.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if identity.UserID == 0 {
		return auth.Identity{}, errors.New("userID is required")
	}
	key := identityKey(identity.Provider, identity.ProviderSubject)
	now := time.Now().UTC()
	if existing, ok := r.identities[key]; ok {
		if identity.RefreshToken != "" {
			existing.RefreshToken = identity.RefreshToken
		}
		if identity.ProviderEmail != "" {
			existing.ProviderEmail = identity.ProviderEmail
		}
		existing.UpdatedAt = now
		r.identities[key] = existing
		return existing, nil
	}
	r.identityID++
	identity.ID = r.identityID
	identity.CreatedAt = now
	identity.UpdatedAt = now
	r.identities[key] = identity
	r.userIndex[userIdentityKey(identity.Provider, identity.UserID)] = key
	return identity, nil
}

var _ auth.Repository = (*MemoryRepository)(nil)

func identityKey(provider, subject string) string {
	return provider + ":" + subject
}

func userIdentityKey(provider string, userID int64) string {
	return provider + ":" + strconv.FormatInt(userID, 10)
}
