package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ukydev/fleet-dashboard/internal/auth"
	"github.com/ukydev/fleet-dashboard/internal/db"
	"github.com/ukydev/fleet-dashboard/internal/middleware"
	"github.com/ukydev/fleet-dashboard/internal/models"
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	authService    *auth.Service
	userCollection db.UserCollection
	logger         log.FieldLogger
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(authService *auth.Service, userCollection db.UserCollection, logger log.FieldLogger) *AuthHandler {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &AuthHandler{
		authService:    authService,
		userCollection: userCollection,
		logger:         logger,
	}
}

// EnsureAdmin creates the bootstrap admin account when it does not exist yet.
// An empty password skips the bootstrap.
func (h *AuthHandler) EnsureAdmin(ctx context.Context, username, password string) error {
	if password == "" {
		return nil
	}
	_, err := h.userCollection.FindUserByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, db.ErrUserNotFound) {
		return fmt.Errorf("find admin: %w", err)
	}
	hash, err := h.authService.HashPassword(password)
	if err != nil {
		return err
	}
	err = h.userCollection.InsertUser(ctx, models.User{
		ID:           primitive.NewObjectID(),
		Username:     username,
		Email:        username + "@fleet.local",
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		IsActive:     true,
	})
	if err != nil {
		return fmt.Errorf("insert admin: %w", err)
	}
	h.logger.WithField("username", username).Info("Created admin user")
	return nil
}

// Login handles user login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var loginReq models.LoginRequest
	if err := readJSON(r, &loginReq); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if loginReq.Username == "" || loginReq.Password == "" {
		http.Error(w, "Username and password are required", http.StatusBadRequest)
		return
	}

	user, err := h.userCollection.FindUserByUsername(r.Context(), loginReq.Username)
	if err != nil && !errors.Is(err, db.ErrUserNotFound) {
		h.logger.WithError(err).Error("Failed to look up user")
		http.Error(w, "Failed to look up user", http.StatusInternalServerError)
		return
	}
	switch err := h.authService.Authenticate(user, loginReq.Password); {
	case errors.Is(err, auth.ErrUserInactive):
		http.Error(w, "Account is deactivated", http.StatusUnauthorized)
		return
	case err != nil:
		h.logger.WithField("username", loginReq.Username).Warn("Rejected login")
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := h.authService.GenerateToken(user)
	if err != nil {
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	refreshToken, err := h.authService.GenerateRefreshToken()
	if err != nil {
		http.Error(w, "Failed to generate refresh token", http.StatusInternalServerError)
		return
	}

	if err := h.userCollection.UpdateLastLogin(r.Context(), user.ID.Hex()); err != nil {
		h.logger.WithError(err).Warn("Failed to update last login")
	}

	writeJSON(w, http.StatusOK, models.LoginResponse{
		Token:        token,
		RefreshToken: refreshToken,
		User:         *user,
	})
}

// Register handles user registration
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var registerReq models.RegisterRequest
	if err := readJSON(r, &registerReq); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if err := h.authService.ValidateRegistration(registerReq); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if registerReq.Role == "" {
		registerReq.Role = models.RoleViewer
	}
	if !models.IsValidRole(registerReq.Role) {
		http.Error(w, "Invalid role", http.StatusBadRequest)
		return
	}
	// Self-registration never grants admin.
	if registerReq.Role == models.RoleAdmin {
		http.Error(w, "Admin accounts cannot self-register", http.StatusForbidden)
		return
	}

	_, err := h.userCollection.FindUserByUsername(r.Context(), registerReq.Username)
	if err == nil {
		http.Error(w, "Username already exists", http.StatusConflict)
		return
	}

	_, err = h.userCollection.FindUserByEmail(r.Context(), registerReq.Email)
	if err == nil {
		http.Error(w, "Email already exists", http.StatusConflict)
		return
	}

	passwordHash, err := h.authService.HashPassword(registerReq.Password)
	if err != nil {
		http.Error(w, "Failed to hash password", http.StatusInternalServerError)
		return
	}

	user := models.User{
		ID:           primitive.NewObjectID(),
		Username:     registerReq.Username,
		Email:        registerReq.Email,
		PasswordHash: passwordHash,
		Role:         registerReq.Role,
		FirstName:    registerReq.FirstName,
		LastName:     registerReq.LastName,
		IsActive:     true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := h.userCollection.InsertUser(r.Context(), user); err != nil {
		h.logger.WithError(err).Error("Failed to create user")
		http.Error(w, "Failed to create user", http.StatusInternalServerError)
		return
	}

	token, err := h.authService.GenerateToken(&user)
	if err != nil {
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	refreshToken, err := h.authService.GenerateRefreshToken()
	if err != nil {
		http.Error(w, "Failed to generate refresh token", http.StatusInternalServerError)
		return
	}

	h.logger.WithFields(log.Fields{"username": user.Username, "role": user.Role}).Info("Registered user")
	writeJSON(w, http.StatusCreated, models.LoginResponse{
		Token:        token,
		RefreshToken: refreshToken,
		User:         user,
	})
}

// GetProfile returns the current user's profile
func (h *AuthHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}

	user, err := h.userCollection.FindUserByID(r.Context(), claims.UserID)
	if err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

