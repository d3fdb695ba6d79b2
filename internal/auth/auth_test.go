package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ukydev/fleet-dashboard/internal/models"
)

func testUser() *models.User {
	return &models.User{
		ID:       primitive.NewObjectID(),
		Username: "dispatcher",
		Role:     models.RoleOperator,
		IsActive: true,
	}
}

func TestNewService(t *testing.T) {
	service := NewService("", 0)
	assert.Equal(t, []byte(DefaultSecret), service.jwtSecret)
	assert.Equal(t, 24*time.Hour, service.tokenExp)

	service = NewService("s3cret", time.Hour)
	assert.Equal(t, []byte("s3cret"), service.jwtSecret)
	assert.Equal(t, time.Hour, service.tokenExp)
}

func TestService_HashAndCheckPassword(t *testing.T) {
	service := NewService("", 0)

	hash, err := service.HashPassword("testpassword123")
	require.NoError(t, err)
	assert.NotEqual(t, "testpassword123", hash)

	assert.True(t, service.CheckPassword("testpassword123", hash))
	assert.False(t, service.CheckPassword("wrongpassword", hash))
}

func TestService_Authenticate(t *testing.T) {
	service := NewService("", 0)
	user := testUser()
	hash, err := service.HashPassword("workshop-pass")
	require.NoError(t, err)
	user.PasswordHash = hash

	assert.NoError(t, service.Authenticate(user, "workshop-pass"))
	assert.ErrorIs(t, service.Authenticate(user, "nope"), ErrInvalidCredentials)
	assert.ErrorIs(t, service.Authenticate(nil, "workshop-pass"), ErrUserNotFound)

	user.IsActive = false
	assert.ErrorIs(t, service.Authenticate(user, "workshop-pass"), ErrUserInactive)
}

func TestService_ValidateToken(t *testing.T) {
	service := NewService("", 0)
	user := testUser()

	token, err := service.GenerateToken(user)
	require.NoError(t, err)

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), claims.UserID)
	assert.Equal(t, user.Username, claims.Username)
	assert.Equal(t, user.Role, claims.Role)

	_, err = service.ValidateToken("Bearer " + token)
	assert.NoError(t, err)

	_, err = service.ValidateToken("invalid-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = NewService("other-secret", 0).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestService_ExpiredToken(t *testing.T) {
	service := NewService("", -time.Hour)
	service.tokenExp = -time.Minute

	token, err := service.GenerateToken(testUser())
	require.NoError(t, err)

	_, err = service.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestService_TokenExpiration(t *testing.T) {
	service := NewService("", 2*time.Hour)
	token, err := service.GenerateToken(testUser())
	require.NoError(t, err)

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	now := time.Now().Unix()
	assert.Greater(t, claims.Exp, now)
	assert.LessOrEqual(t, claims.Exp, now+int64(service.tokenExp.Seconds())+1)
}

func TestService_ExtractTokenFromHeader(t *testing.T) {
	service := NewService("", 0)

	extracted, err := service.ExtractTokenFromHeader("Bearer valid-token")
	require.NoError(t, err)
	assert.Equal(t, "valid-token", extracted)

	for _, header := range []string{"", "InvalidFormat", "Bearer ", "Basic abc"} {
		_, err := service.ExtractTokenFromHeader(header)
		assert.ErrorIs(t, err, ErrInvalidToken, header)
	}
}

func TestService_Validators(t *testing.T) {
	service := NewService("", 0)

	assert.NoError(t, service.ValidatePassword("validpassword123"))
	assert.ErrorContains(t, service.ValidatePassword("short"), "at least 8 characters")

	assert.NoError(t, service.ValidateEmail("ops@fleet.example"))
	for _, email := range []string{"testexample.com", "test@", "test", "Ops <ops@fleet.example>"} {
		assert.ErrorContains(t, service.ValidateEmail(email), "invalid email format", email)
	}

	assert.NoError(t, service.ValidateUsername("dispatcher"))
	assert.ErrorContains(t, service.ValidateUsername("ab"), "at least 3 characters")
	assert.ErrorContains(t, service.ValidateUsername(strings.Repeat("a", 51)), "less than 50 characters")
}

func TestService_ValidateRegistration(t *testing.T) {
	service := NewService("", 0)
	valid := models.RegisterRequest{Username: "dispatcher", Email: "ops@fleet.example", Password: "validpassword123"}
	assert.NoError(t, service.ValidateRegistration(valid))

	bad := valid
	bad.Email = "ops@fleet"
	err := service.ValidateRegistration(bad)
	assert.ErrorIs(t, err, ErrInvalidRegistration)
	assert.ErrorContains(t, err, "invalid email format")

	bad = valid
	bad.Username = "ab"
	assert.ErrorContains(t, service.ValidateRegistration(bad), "username must be at least 3")
}

func TestService_TokenIssuerAndClock(t *testing.T) {
	service := NewService("", time.Hour)
	issued := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return issued }

	token, err := service.GenerateToken(testUser())
	require.NoError(t, err)

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, issued.Add(time.Hour).Unix(), claims.Exp)

	service.now = func() time.Time { return issued.Add(2 * time.Hour) }
	_, err = service.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "abc", "username": "x", "role": "admin", "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(DefaultSecret))
	require.NoError(t, err)
	_, err = NewService("", 0).ValidateToken(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken, "tokens without the issuer are rejected")
}

func TestService_GenerateRefreshToken(t *testing.T) {
	service := NewService("", 0)

	first, err := service.GenerateRefreshToken()
	require.NoError(t, err)
	second, err := service.GenerateRefreshToken()
	require.NoError(t, err)
	assert.Len(t, first, 44)
	assert.NotEqual(t, first, second)
}
