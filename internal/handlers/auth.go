package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/jobtrackhq/jobtrack/internal/metrics"
	"github.com/jobtrackhq/jobtrack/internal/repo"
	"github.com/jobtrackhq/jobtrack/internal/token"
)

var validate = validator.New()

// ==========================
// Auth Handler
// ==========================
type AuthHandler struct {
	UserRepo *repo.UserRepo
	Tokens   *token.Service
}

// publicUser is the outward shape of a user in auth responses.
// The password hash never leaves the process.
type publicUser struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ==========================
// Register
// ==========================
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name     string `json:"name" validate:"required,min=2,max=50"`
		Email    string `json:"email" validate:"required,email,max=254"`
		Password string `json:"password" validate:"required,min=6,max=72"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	if err := validate.Struct(input); err != nil {
		JSONValidationError(w, "validation failed", validationFields(err), http.StatusBadRequest)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		slog.Error("register: hash password", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	user, err := h.UserRepo.Create(r.Context(), input.Name, input.Email, string(hash))
	if err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			JSONError(w, "email already registered", http.StatusConflict)
			return
		}
		slog.Error("register: create user", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	signed, err := h.Tokens.Issue(user.ID)
	if err != nil {
		slog.Error("register: issue token", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"user":  publicUser{ID: user.ID, Name: user.Name, Email: user.Email},
		"token": signed,
	})
}

// ==========================
// Login
// ==========================
// Lookup and password failures produce the same response so callers cannot
// probe which emails are registered.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	if err := validate.Struct(input); err != nil {
		JSONValidationError(w, "validation failed", validationFields(err), http.StatusBadRequest)
		return
	}

	user, err := h.UserRepo.GetByEmail(r.Context(), input.Email)
	if err != nil {
		if !errors.Is(err, repo.ErrNotFound) {
			slog.Error("login: lookup user", "error", err)
			JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
			return
		}
		metrics.IncLogin("failure")
		JSONError(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		metrics.IncLogin("failure")
		JSONError(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	signed, err := h.Tokens.Issue(user.ID)
	if err != nil {
		slog.Error("login: issue token", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	metrics.IncLogin("success")
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"user":  publicUser{ID: user.ID, Name: user.Name, Email: user.Email},
		"token": signed,
	})
}
