// Package auth is the single account capability: registration, login,
// profile maintenance and Google sign-in, over whichever Repository the
// deployment configures.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/yanqian/jeevamithra/pkg/errors"
)

var validate = validator.New()

// Service exposes authentication workflows.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (LoginResponse, error)
	Login(ctx context.Context, req LoginRequest) (LoginResponse, error)
	UpdateProfile(ctx context.Context, userID int64, update ProfileUpdate) (UserView, error)
	CurrentUser(ctx context.Context, userID int64) (UserView, error)
	GoogleAuthURL(ctx context.Context, state, codeChallenge string) (string, error)
	GoogleCallback(ctx context.Context, code, codeVerifier string) (LoginResponse, error)
	ValidateToken(ctx context.Context, token string) (Claims, error)
	Refresh(ctx context.Context, refreshToken string) (LoginResponse, error)
	Logout(ctx context.Context, userID int64) error
}

type service struct {
	cfg    Config
	repo   Repository
	logger *slog.Logger
	now    func() time.Time

	googleExchange func(ctx context.Context, code, codeVerifier string) (googleGrant, error)
}

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// NewService constructs a Service instance.
func NewService(cfg Config, repo Repository, logger *slog.Logger) Service {
	svc := &service{
		cfg:    cfg,
		repo:   repo,
		logger: logger.With("component", "auth.service"),
		now:    time.Now,
	}
	svc.googleExchange = svc.exchangeGoogleCode
	return svc
}

// Register creates the account and signs it in.
func (s *service) Register(ctx context.Context, req RegisterRequest) (LoginResponse, error) {
	req.Email = normalizeEmail(req.Email)
	req.FullName = strings.TrimSpace(req.FullName)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Gender = strings.ToLower(strings.TrimSpace(req.Gender))
	if err := validate.Struct(req); err != nil {
		return LoginResponse{}, apperrors.Wrap("invalid_input", registerMessage(err), err)
	}
	_, exists, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		return LoginResponse{}, apperrors.Wrap("auth_error", "failed to check user", err)
	}
	if exists {
		return LoginResponse{}, apperrors.Wrap("email_exists", "Email already in use", nil)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return LoginResponse{}, apperrors.Wrap("auth_error", "failed to hash password", err)
	}
	now := s.now().UTC()
	user, err := s.repo.Create(ctx, User{
		Email:        req.Email,
		PasswordHash: string(hashed),
		FullName:     req.FullName,
		Phone:        req.Phone,
		Age:          req.Age,
		Gender:       req.Gender,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, ErrEmailExists) {
			return LoginResponse{}, apperrors.Wrap("email_exists", "Email already in use", err)
		}
		return LoginResponse{}, apperrors.Wrap("auth_error", "Registration failed", err)
	}
	s.logger.Info("user registered", "user_id", user.ID)
	return s.buildLoginResponse(user)
}

func (s *service) Login(ctx context.Context, req LoginRequest) (LoginResponse, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return LoginResponse{}, apperrors.Wrap("invalid_input", "Email and password are required", nil)
	}
	user, found, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return LoginResponse{}, apperrors.Wrap("auth_error", "Login failed", err)
	}
	if !found {
		return LoginResponse{}, apperrors.Wrap("invalid_credentials", "Invalid email or password", nil)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return LoginResponse{}, apperrors.Wrap("invalid_credentials", "Invalid email or password", nil)
	}
	return s.buildLoginResponse(user)
}

func (s *service) UpdateProfile(ctx context.Context, userID int64, update ProfileUpdate) (UserView, error) {
	if update.Gender != nil {
		g := strings.ToLower(strings.TrimSpace(*update.Gender))
		update.Gender = &g
	}
	if err := validate.Struct(update); err != nil {
		return UserView{}, apperrors.Wrap("invalid_input", "invalid profile update", err)
	}
	user, err := s.load(ctx, userID)
	if err != nil {
		return UserView{}, err
	}
	if update.FullName != nil {
		user.FullName = strings.TrimSpace(*update.FullName)
	}
	if update.Phone != nil {
		user.Phone = strings.TrimSpace(*update.Phone)
	}
	if update.Age != nil {
		user.Age = *update.Age
	}
	if update.Gender != nil {
		user.Gender = *update.Gender
	}
	if update.PhotoURL != nil {
		user.PhotoURL = strings.TrimSpace(*update.PhotoURL)
	}
	user.UpdatedAt = s.now().UTC()

	saved, err := s.repo.Update(ctx, user)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return UserView{}, apperrors.Wrap("user_not_found", "User not found", err)
		}
		return UserView{}, apperrors.Wrap("auth_error", "Profile update failed", err)
	}
	return toView(saved), nil
}

func (s *service) CurrentUser(ctx context.Context, userID int64) (UserView, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return UserView{}, err
	}
	return toView(user), nil
}

func (s *service) load(ctx context.Context, userID int64) (User, error) {
	user, found, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return User{}, apperrors.Wrap("auth_error", "failed to load profile", err)
	}
	if !found {
		return User{}, apperrors.Wrap("user_not_found", "User not found", nil)
	}
	return user, nil
}

func (s *service) ValidateToken(_ context.Context, token string) (Claims, error) {
	if strings.TrimSpace(token) == "" {
		return Claims{}, apperrors.Wrap("invalid_token", "token missing", nil)
	}
	claims, err := s.parseToken(token)
	if err != nil {
		return Claims{}, err
	}
	if claims.TokenType != tokenTypeAccess {
		return Claims{}, apperrors.Wrap("invalid_token", "token type mismatch", nil)
	}
	return claims, nil
}

func (s *service) Refresh(ctx context.Context, refreshToken string) (LoginResponse, error) {
	claims, err := s.parseToken(refreshToken)
	if err != nil {
		return LoginResponse{}, err
	}
	if claims.TokenType != tokenTypeRefresh {
		return LoginResponse{}, apperrors.Wrap("invalid_token", "token type mismatch", nil)
	}
	user, err := s.load(ctx, claims.UserID)
	if err != nil {
		return LoginResponse{}, err
	}
	return s.buildLoginResponse(user)
}

func (s *service) buildLoginResponse(user User) (LoginResponse, error) {
	access, err := s.generateToken(user, tokenTypeAccess, s.cfg.TokenTTL)
	if err != nil {
		return LoginResponse{}, err
	}
	refresh, err := s.generateToken(user, tokenTypeRefresh, s.cfg.RefreshTokenTTL)
	if err != nil {
		return LoginResponse{}, err
	}
	return LoginResponse{
		Token:        access,
		RefreshToken: refresh,
		User:         toView(user),
	}, nil
}

type tokenClaims struct {
	jwt.RegisteredClaims
	UserID    int64  `json:"userId"`
	Email     string `json:"email"`
	TokenType string `json:"type"`
}

func (s *service) generateToken(user User, tokenType string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := tokenClaims{
		UserID:    user.ID,
		Email:     user.Email,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			ID:        newTokenID(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", apperrors.Wrap("auth_error", "failed to sign token", err)
	}
	return signed, nil
}

func (s *service) parseToken(token string) (Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &tokenClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
		}
		return []byte(s.cfg.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return Claims{}, apperrors.Wrap("invalid_token", "token validation failed", err)
	}
	claims, ok := parsed.Claims.(*tokenClaims)
	if !ok || !parsed.Valid {
		return Claims{}, apperrors.Wrap("invalid_token", "token invalid", nil)
	}
	return Claims{
		UserID:    claims.UserID,
		Email:     claims.Email,
		TokenType: claims.TokenType,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func toView(user User) UserView {
	missing := missingProfileFields(user)
	return UserView{
		ID:              user.ID,
		Email:           user.Email,
		FullName:        user.FullName,
		Phone:           user.Phone,
		Age:             user.Age,
		Gender:          user.Gender,
		PhotoURL:        user.PhotoURL,
		ProfileComplete: len(missing) == 0,
		MissingFields:   missing,
		CreatedAt:       user.CreatedAt,
		UpdatedAt:       user.UpdatedAt,
	}
}

// missingProfileFields names the registration fields an account still lacks,
// using the JSON names the client sends back through UpdateProfile.
func missingProfileFields(user User) []string {
	var missing []string
	if strings.TrimSpace(user.FullName) == "" {
		missing = append(missing, "fullName")
	}
	if strings.TrimSpace(user.Phone) == "" {
		missing = append(missing, "phone")
	}
	if user.Age <= 0 {
		missing = append(missing, "age")
	}
	if user.Gender == "" {
		missing = append(missing, "gender")
	}
	return missing
}

func normalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// registerMessage turns the first validation failure into the form's wording.
func registerMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Registration failed"
	}
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			return "All fields are required"
		}
	}
	fe := verrs[0]
	switch fe.Field() {
	case "Email":
		return "Invalid email format"
	case "Password":
		return "Password must be at least 6 characters"
	case "Gender":
		return "Gender must be male, female or other"
	case "Age":
		return "Age must be between 1 and 120"
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

func newTokenID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return strconv.FormatInt(time.Now().UnixNano(), 10)
	}
	return hex.EncodeToString(buf)
}
