package backend

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/asaskevich/govalidator"
	"github.com/google/uuid"
)

func (h *Handler) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if !govalidator.IsEmail(req.Email) {
		writeError(w, http.StatusBadRequest, "invalid email")
		return
	}
	if !govalidator.StringLength(req.Password, "6", "128") {
		writeError(w, http.StatusBadRequest, "password must be at least 6 characters")
		return
	}

	ctx := r.Context()
	if _, err := h.users.FindByEmail(ctx, req.Email); err == nil {
		writeError(w, http.StatusBadRequest, "User exists")
		return
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		h.logger.ErrorContext(ctx, "could not hash password", "error", err)
		writeError(w, http.StatusInternalServerError, "could not create user")
		return
	}

	user := User{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
	}
	if err := h.users.Save(ctx, user); err != nil {
		h.logger.ErrorContext(ctx, "could not save user", "error", err)
		writeError(w, http.StatusInternalServerError, "could not create user")
		return
	}

	token, err := h.tokens.Generate(user.ID)
	if err != nil {
		h.logger.ErrorContext(ctx, "could not mint token", "error", err)
		writeError(w, http.StatusInternalServerError, "could not create user")
		return
	}

	h.logger.InfoContext(ctx, "user signed up", "user_id", user.ID)
	writeJSON(w, http.StatusCreated, authResponse{
		Token: token,
		User:  identityJSON{ID: user.ID, Name: user.Name, Email: user.Email},
	})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	ctx := r.Context()
	user, err := h.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		h.logger.ErrorContext(ctx, "could not look up user", "error", err)
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}

	if err := verifyPassword(req.Password, user.PasswordHash); err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := h.tokens.Generate(user.ID)
	if err != nil {
		h.logger.ErrorContext(ctx, "could not mint token", "error", err)
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}

	h.logger.InfoContext(ctx, "user logged in", "user_id", user.ID)
	writeJSON(w, http.StatusOK, authResponse{
		Token: token,
		User:  identityJSON{ID: user.ID, Name: user.Name, Email: user.Email},
	})
}
