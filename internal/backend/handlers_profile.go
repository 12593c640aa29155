package backend

import (
	"encoding/json"
	"errors"
	"net/http"

	"scanview/internal/domain"
)

func (h *Handler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, err := h.users.FindByID(ctx, userID(ctx))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "unknown user")
			return
		}
		h.logger.ErrorContext(ctx, "could not load profile", "error", err)
		writeError(w, http.StatusInternalServerError, "could not load profile")
		return
	}

	writeJSON(w, http.StatusOK, domain.Profile{
		Name:           user.Name,
		Email:          user.Email,
		Hospital:       user.Hospital,
		Specialization: user.Specialization,
		Phone:          user.Phone,
		Location:       user.Location,
		About:          user.About,
	})
}

func (h *Handler) handleSaveProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx := r.Context()
	user, err := h.users.FindByID(ctx, userID(ctx))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "unknown user")
			return
		}
		h.logger.ErrorContext(ctx, "could not load profile", "error", err)
		writeError(w, http.StatusInternalServerError, "could not save profile")
		return
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	user.Hospital = req.Hospital
	user.Specialization = req.Specialization
	user.Phone = req.Phone
	user.Location = req.Location
	user.About = req.About

	if err := h.users.Save(ctx, user); err != nil {
		h.logger.ErrorContext(ctx, "could not save profile", "error", err)
		writeError(w, http.StatusInternalServerError, "could not save profile")
		return
	}

	h.logger.InfoContext(ctx, "profile updated", "user_id", user.ID)
	writeJSON(w, http.StatusOK, domain.Profile{
		Name:           user.Name,
		Email:          user.Email,
		Hospital:       user.Hospital,
		Specialization: user.Specialization,
		Phone:          user.Phone,
		Location:       user.Location,
		About:          user.About,
	})
}
