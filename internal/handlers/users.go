package handlers

import (
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/ukydev/fleet-dashboard/internal/db"
	"github.com/ukydev/fleet-dashboard/internal/middleware"
	"github.com/ukydev/fleet-dashboard/internal/models"
)

// userUpdate is the editable part of an account. Omitted fields keep their
// stored value.
type userUpdate struct {
	Role      *models.Role `json:"role"`
	IsActive  *bool        `json:"is_active"`
	FirstName *string      `json:"first_name"`
	LastName  *string      `json:"last_name"`
}

// RegisterAdmin mounts the user administration routes behind the
// manage-users permission.
func (h *AuthHandler) RegisterAdmin(mux *http.ServeMux, gate Gate) {
	mux.Handle("GET /api/users", gate(models.ActionManageUsers)(http.HandlerFunc(h.ListUsers)))
	mux.Handle("PUT /api/users/{id}", gate(models.ActionManageUsers)(http.HandlerFunc(h.UpdateUser)))
	mux.Handle("DELETE /api/users/{id}", gate(models.ActionManageUsers)(http.HandlerFunc(h.DeleteUser)))
}

// ListUsers returns every account.
func (h *AuthHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userCollection.FindUsers(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to list users")
		http.Error(w, "Failed to list users", http.StatusInternalServerError)
		return
	}
	if users == nil {
		users = []models.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

// UpdateUser changes an account's role, status or name.
func (h *AuthHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req userUpdate
	if err := readJSON(r, &req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Role != nil && !models.IsValidRole(*req.Role) {
		http.Error(w, "Invalid role", http.StatusBadRequest)
		return
	}
	// An admin cannot lock themselves out.
	if isCaller(r, id) && (req.Role != nil || req.IsActive != nil) {
		http.Error(w, "Cannot change your own role or status", http.StatusBadRequest)
		return
	}

	user, err := h.userCollection.FindUserByID(r.Context(), id)
	if err != nil {
		h.userError(w, err, "Failed to load user")
		return
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if err := h.userCollection.UpdateUser(r.Context(), id, *user); err != nil {
		h.userError(w, err, "Failed to update user")
		return
	}

	h.logger.WithFields(log.Fields{"user_id": id, "role": user.Role, "active": user.IsActive}).Info("Updated user")
	writeJSON(w, http.StatusOK, user)
}

// DeleteUser removes an account.
func (h *AuthHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if isCaller(r, id) {
		http.Error(w, "Cannot delete your own account", http.StatusBadRequest)
		return
	}
	if err := h.userCollection.DeleteUser(r.Context(), id); err != nil {
		h.userError(w, err, "Failed to delete user")
		return
	}
	h.logger.WithField("user_id", id).Info("Deleted user")
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) userError(w http.ResponseWriter, err error, msg string) {
	if errors.Is(err, db.ErrUserNotFound) || errors.Is(err, db.ErrInvalidUserID) {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}
	h.logger.WithError(err).Error(msg)
	http.Error(w, msg, http.StatusInternalServerError)
}

func isCaller(r *http.Request, id string) bool {
	claims, ok := middleware.GetUserFromContext(r.Context())
	return ok && claims.UserID == id
}
