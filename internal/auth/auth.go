package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/ukydev/fleet-dashboard/internal/models"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidToken        = errors.New("invalid token")
	ErrExpiredToken        = errors.New("token expired")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUserNotFound        = errors.New("user not found")
	ErrUserInactive        = errors.New("user is inactive")
	ErrInvalidRegistration = errors.New("invalid registration")
)

const (
	// DefaultSecret signs tokens when no secret is configured.
	DefaultSecret = "default-secret-key-change-in-production"
	// Issuer is stamped into and required on every access token.
	Issuer = "fleet-dashboard"

	MinPasswordLength = 8
	MinUsernameLength = 3
	MaxUsernameLength = 50
)

// tokenClaims is the signed payload of an access token. The subject is the
// user's hex id.
type tokenClaims struct {
	Username string      `json:"username"`
	Role     models.Role `json:"role"`
	jwt.RegisteredClaims
}

// Service issues and verifies dashboard access tokens.
type Service struct {
	jwtSecret []byte
	tokenExp  time.Duration
	now       func() time.Time
}

// NewService creates an authentication service signing with secret.
// Empty secret and non-positive expiry fall back to defaults.
func NewService(secret string, expiry time.Duration) *Service {
	if secret == "" {
		secret = DefaultSecret
	}
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}
	return &Service{jwtSecret: []byte(secret), tokenExp: expiry, now: time.Now}
}

// Authenticate checks credentials against a stored user.
func (s *Service) Authenticate(user *models.User, password string) error {
	switch {
	case user == nil:
		return ErrUserNotFound
	case !user.IsActive:
		return ErrUserInactive
	case !s.CheckPassword(password, user.PasswordHash):
		return ErrInvalidCredentials
	}
	return nil
}

// HashPassword hashes a password with bcrypt.
func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the bcrypt hash.
func (s *Service) CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// GenerateToken signs an HS256 access token carrying the user's role.
func (s *Service) GenerateToken(user *models.User) (string, error) {
	issued := s.now()
	claims := tokenClaims{
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   user.ID.Hex(),
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(issued.Add(s.tokenExp)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}

// GenerateRefreshToken returns 32 random bytes, base64url encoded.
func (s *Service) GenerateRefreshToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate refresh token: %w", err)
	}
	return base64.URLEncoding.EncodeToString(buf), nil
}

// ValidateToken verifies an access token, with or without a "Bearer " prefix,
// and returns its claims.
func (s *Service) ValidateToken(tokenString string) (*models.Claims, error) {
	var claims tokenClaims
	_, err := jwt.ParseWithClaims(strings.TrimPrefix(tokenString, "Bearer "), &claims,
		func(*jwt.Token) (interface{}, error) { return s.jwtSecret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpiredToken
	case err != nil:
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" || claims.Username == "" || claims.Role == "" {
		return nil, ErrInvalidToken
	}
	return &models.Claims{
		UserID:   claims.Subject,
		Username: claims.Username,
		Role:     claims.Role,
		Exp:      claims.ExpiresAt.Unix(),
	}, nil
}

// ExtractTokenFromHeader returns the token of a "Bearer <token>" header.
func (s *Service) ExtractTokenFromHeader(authHeader string) (string, error) {
	scheme, token, ok := strings.Cut(authHeader, " ")
	if !ok || scheme != "Bearer" || token == "" || strings.Contains(token, " ") {
		return "", ErrInvalidToken
	}
	return token, nil
}

// ValidateRegistration checks the username, email and password of a signup.
func (s *Service) ValidateRegistration(req models.RegisterRequest) error {
	for _, check := range []func() error{
		func() error { return s.ValidateUsername(req.Username) },
		func() error { return s.ValidateEmail(req.Email) },
		func() error { return s.ValidatePassword(req.Password) },
	} {
		if err := check(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidRegistration, err)
		}
	}
	return nil
}

// ValidatePassword enforces the minimum password length.
func (s *Service) ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters long", MinPasswordLength)
	}
	return nil
}

// ValidateEmail requires a bare address with a dotted domain.
func (s *Service) ValidateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@"):], ".") {
		return errors.New("invalid email format")
	}
	return nil
}

// ValidateUsername bounds the username length.
func (s *Service) ValidateUsername(username string) error {
	switch n := len(username); {
	case n < MinUsernameLength:
		return fmt.Errorf("username must be at least %d characters long", MinUsernameLength)
	case n > MaxUsernameLength:
		return fmt.Errorf("username must be less than %d characters", MaxUsernameLength)
	}
	return nil
}
