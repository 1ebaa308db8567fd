package auth

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/yanqian/jeevamithra/pkg/errors"
)

func TestService_RegisterLoginAndRefresh(t *testing.T) {
	svc := newTestService(newMemoryRepo())
	ctx := context.Background()

	registered, err := svc.Register(ctx, validRegistration("Ravi@Example.com"))
	require.NoError(t, err)
	require.NotEmpty(t, registered.Token)
	require.Equal(t, "ravi@example.com", registered.User.Email)
	require.Equal(t, "Ravi Kumar", registered.User.FullName)
	require.Equal(t, 34, registered.User.Age)
	require.Equal(t, GenderMale, registered.User.Gender)
	require.NotZero(t, registered.User.ID)
	require.False(t, registered.User.CreatedAt.IsZero())

	resp, err := svc.Login(ctx, LoginRequest{Email: "ravi@example.com", Password: "secret1"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.RefreshToken)

	claims, err := svc.ValidateToken(ctx, resp.Token)
	require.NoError(t, err)
	require.Equal(t, registered.User.ID, claims.UserID)
	require.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt, time.Minute)

	_, err = svc.ValidateToken(ctx, resp.RefreshToken)
	require.True(t, apperrors.IsCode(err, "invalid_token"))

	refreshed, err := svc.Refresh(ctx, resp.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, resp.Token, refreshed.Token)
	require.Equal(t, "Ravi Kumar", refreshed.User.FullName)

	_, err = svc.Refresh(ctx, resp.Token)
	require.True(t, apperrors.IsCode(err, "invalid_token"))
}

func TestService_RegisterValidation(t *testing.T) {
	svc := newTestService(newMemoryRepo())

	cases := []struct {
		name   string
		mutate func(*RegisterRequest)
		want   string
	}{
		{"missing phone", func(r *RegisterRequest) { r.Phone = " " }, "All fields are required"},
		{"missing age", func(r *RegisterRequest) { r.Age = 0 }, "All fields are required"},
		{"bad email", func(r *RegisterRequest) { r.Email = "ravi.example.com" }, "Invalid email format"},
		{"short password", func(r *RegisterRequest) { r.Password = "12345" }, "Password must be at least 6 characters"},
		{"gender", func(r *RegisterRequest) { r.Gender = "unknown" }, "Gender must be male, female or other"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validRegistration("ravi@example.com")
			tc.mutate(&req)
			_, err := svc.Register(context.Background(), req)
			require.True(t, apperrors.IsCode(err, "invalid_input"))
			require.Equal(t, tc.want, apperrors.Message(err))
		})
	}
}

func TestService_DuplicateEmail(t *testing.T) {
	svc := newTestService(newMemoryRepo())
	ctx := context.Background()

	_, err := svc.Register(ctx, validRegistration("user@example.com"))
	require.NoError(t, err)

	_, err = svc.Register(ctx, validRegistration("USER@example.com"))
	require.True(t, apperrors.IsCode(err, "email_exists"))
	require.Equal(t, "Email already in use", apperrors.Message(err))
}

func TestService_LoginFailures(t *testing.T) {
	svc := newTestService(newMemoryRepo())
	ctx := context.Background()
	_, err := svc.Register(ctx, validRegistration("user@example.com"))
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginRequest{Email: "user@example.com"})
	require.True(t, apperrors.IsCode(err, "invalid_input"))

	_, err = svc.Login(ctx, LoginRequest{Email: "user@example.com", Password: "wrong-pass"})
	require.True(t, apperrors.IsCode(err, "invalid_credentials"))

	_, err = svc.Login(ctx, LoginRequest{Email: "nobody@example.com", Password: "secret1"})
	require.True(t, apperrors.IsCode(err, "invalid_credentials"))
	require.Equal(t, "Invalid email or password", apperrors.Message(err))
}

func TestService_UpdateProfileAndCurrentUser(t *testing.T) {
	svc := newTestService(newMemoryRepo())
	ctx := context.Background()
	registered, err := svc.Register(ctx, validRegistration("lakshmi@example.com"))
	require.NoError(t, err)
	id := registered.User.ID

	name := "Lakshmi Devi"
	gender := "Female"
	photo := "https://cdn.example.com/p.png"
	view, err := svc.UpdateProfile(ctx, id, ProfileUpdate{FullName: &name, Gender: &gender, PhotoURL: &photo})
	require.NoError(t, err)
	require.Equal(t, "Lakshmi Devi", view.FullName)
	require.Equal(t, GenderFemale, view.Gender)
	require.Equal(t, photo, view.PhotoURL)
	require.Equal(t, "9876543210", view.Phone, "unset fields are kept")
	require.Equal(t, registered.User.CreatedAt, view.CreatedAt)
	require.False(t, view.UpdatedAt.Before(registered.User.UpdatedAt))

	current, err := svc.CurrentUser(ctx, id)
	require.NoError(t, err)
	require.Equal(t, view, current)

	badAge := 0
	_, err = svc.UpdateProfile(ctx, id, ProfileUpdate{Age: &badAge})
	require.True(t, apperrors.IsCode(err, "invalid_input"))

	_, err = svc.UpdateProfile(ctx, 999, ProfileUpdate{FullName: &name})
	require.True(t, apperrors.IsCode(err, "user_not_found"))

	_, err = svc.CurrentUser(ctx, 999)
	require.True(t, apperrors.IsCode(err, "user_not_found"))
}

func TestService_GoogleNotConfigured(t *testing.T) {
	svc := newTestService(newMemoryRepo())

	_, err := svc.GoogleAuthURL(context.Background(), "state", "challenge")
	require.True(t, apperrors.IsCode(err, "auth_not_configured"))
}

func TestService_GoogleAuthURL(t *testing.T) {
	svc := NewService(Config{
		Secret: "test-secret",
		Google: GoogleConfig{
			ClientID:           "client",
			ClientSecret:       "secret",
			RedirectURL:        "http://localhost:8080/api/v1/auth/google/callback",
			TokenEncryptionKey: "0123456789abcdef",
		},
	}, newMemoryRepo(), newTestLogger())

	url, err := svc.GoogleAuthURL(context.Background(), "st", "ch")
	require.NoError(t, err)
	require.Contains(t, url, "accounts.google.com")
	require.Contains(t, url, "code_challenge=ch")
	require.Contains(t, url, "state=st")
}

func TestGoogleFullName(t *testing.T) {
	require.Equal(t, "Anil Reddy", googleFullName(googleClaims{Name: "Anil Reddy", GivenName: "Anil"}))
	require.Equal(t, "Anil", googleFullName(googleClaims{GivenName: " Anil "}))
	require.Equal(t, "anil.r", googleFullName(googleClaims{Email: "anil.r@gmail.com"}))
}

func TestTokenSealing(t *testing.T) {
	key := "0123456789abcdef0123456789abcdef"
	sealed, err := sealToken(key, "1//refresh-token")
	require.NoError(t, err)
	require.NotContains(t, sealed, "refresh-token")

	plain, err := openToken(key, sealed)
	require.NoError(t, err)
	require.Equal(t, "1//refresh-token", plain)

	_, err = openToken("fedcba9876543210fedcba9876543210", sealed)
	require.Error(t, err)

	_, err = sealToken("short", "x")
	require.Error(t, err)

	empty, err := sealToken(key, "")
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestCodeChallengeFromVerifier(t *testing.T) {
	// RFC 7636 appendix B
	require.Equal(t, "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM", CodeChallengeFromVerifier("dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk"))
}

func validRegistration(email string) RegisterRequest {
	return RegisterRequest{
		Email:    email,
		Password: "secret1",
		FullName: "Ravi Kumar",
		Phone:    "9876543210",
		Age:      34,
		Gender:   "male",
	}
}

func newTestService(repo Repository) Service {
	return NewService(Config{
		Secret:          "test-secret",
		TokenTTL:        time.Hour,
		RefreshTokenTTL: 24 * time.Hour,
	}, repo, newTestLogger())
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type memoryRepo struct {
	mu         sync.Mutex
	users      map[int64]User
	identities map[string]Identity
	seq        int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{users: make(map[int64]User), identities: make(map[string]Identity)}
}

func (m *memoryRepo) Create(_ context.Context, user User) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return User{}, ErrEmailExists
		}
	}
	m.seq++
	user.ID = m.seq
	m.users[user.ID] = user
	return user, nil
}

func (m *memoryRepo) Update(_ context.Context, user User) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		return User{}, ErrUserNotFound
	}
	m.users[user.ID] = user
	return user, nil
}

func (m *memoryRepo) GetByEmail(_ context.Context, email string) (User, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.Email == email {
			return user, true, nil
		}
	}
	return User{}, false, nil
}

func (m *memoryRepo) GetByID(_ context.Context, id int64) (User, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	return user, ok, nil
}

func (m *memoryRepo) GetIdentity(_ context.Context, provider, subject string) (Identity, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.identities[provider+":"+subject]
	return id, ok, nil
}

func (m *memoryRepo) GetIdentityByUser(_ context.Context, userID int64, provider string) (Identity, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range m.identities {
		if id.UserID == userID && id.Provider == provider {
			return id, true, nil
		}
	}
	return Identity{}, false, nil
}

func (m *memoryRepo) UpsertIdentity(_ context.Context, identity Identity) (Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.identities[identity.Provider+":"+identity.ProviderSubject] = identity
	return identity, nil
}
