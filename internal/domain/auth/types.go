package auth

import "time"

// Config drives authentication behavior.
type Config struct {
	Secret          string
	TokenTTL        time.Duration
	RefreshTokenTTL time.Duration
	Google          GoogleConfig
}

// GoogleConfig holds OAuth settings for Google sign-in.
type GoogleConfig struct {
	ClientID             string
	ClientSecret         string
	RedirectURL          string
	TokenEncryptionKey   string
	PostLoginRedirectURL string
}

// Genders accepted on a profile.
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

// User is a persisted account with its profile.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	FullName     string
	Phone        string
	Age          int
	Gender       string
	PhotoURL     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity links a user to an external sign-in provider.
type Identity struct {
	ID              int64
	UserID          int64
	Provider        string
	ProviderSubject string
	ProviderEmail   string
	RefreshToken    string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// RegisterRequest captures the registration form. Every field is required.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"fullName" validate:"required,max=100"`
	Phone    string `json:"phone" validate:"required,max=20"`
	Age      int    `json:"age" validate:"required,gte=1,lte=120"`
	Gender   string `json:"gender" validate:"required,oneof=male female other"`
}

// LoginRequest captures login details.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProfileUpdate changes the profile fields that are set. Email and creation
// time are fixed.
type ProfileUpdate struct {
	FullName *string `json:"fullName" validate:"omitempty,min=1,max=100"`
	Phone    *string `json:"phone" validate:"omitempty,min=1,max=20"`
	Age      *int    `json:"age" validate:"omitempty,gte=1,lte=120"`
	Gender   *string `json:"gender" validate:"omitempty,oneof=male female other"`
	PhotoURL *string `json:"photoURL" validate:"omitempty,url"`
}

// LoginResponse returns the signed tokens and the signed-in profile.
type LoginResponse struct {
	Token        string   `json:"token"`
	RefreshToken string   `json:"refreshToken"`
	User         UserView `json:"user"`
}

// UserView is the profile without credentials. Google sign-ups start
// without phone, age and gender; MissingFields lists what is still needed.
type UserView struct {
	ID              int64     `json:"id"`
	Email           string    `json:"email"`
	FullName        string    `json:"fullName"`
	Phone           string    `json:"phone"`
	Age             int       `json:"age"`
	Gender          string    `json:"gender"`
	PhotoURL        string    `json:"photoURL,omitempty"`
	ProfileComplete bool      `json:"profileComplete"`
	MissingFields   []string  `json:"missingFields,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Claims are extracted from the JWT token.
type Claims struct {
	UserID    int64
	Email     string
	TokenType string
	ExpiresAt time.Time
}

// RefreshRequest encapsulates refresh token payload.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}
