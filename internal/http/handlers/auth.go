package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"server/internal/domain"
	"server/internal/middleware"
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Country  string `json:"country"`
	City     string `json:"city"`
	Area     string `json:"area"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string  `json:"token"`
	User  userDTO `json:"user"`
}

type userDTO struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Country string `json:"country"`
	City    string `json:"city"`
	Area    string `json:"area"`
	Role    string `json:"role"`
}

func toUserDTO(u *domain.User) userDTO {
	return userDTO{
		ID:      u.ID,
		Email:   u.Email,
		Name:    u.Name,
		Phone:   u.Phone,
		Country: u.Location.Country,
		City:    u.Location.City,
		Area:    u.Location.Area,
		Role:    string(u.Role),
	}
}

// Register creates an account and returns a bearer token.
func (a *App) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || len(req.Password) < 8 || strings.TrimSpace(req.Name) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "email, name and a password of at least 8 characters are required")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		a.domainError(w, err)
		return
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		PasswordHash: string(hash),
		Name:         strings.TrimSpace(req.Name),
		Phone:        strings.TrimSpace(req.Phone),
		Location:     domain.Location{Country: req.Country, City: req.City, Area: req.Area},
		Role:         domain.UserRoleUser,
	}
	if err := a.Users.Create(r.Context(), user); err != nil {
		a.domainError(w, err)
		return
	}

	token, err := middleware.SignToken(a.JWTSecret, user.ID, user.Role)
	if err != nil {
		a.Logger.Error().Err(err).Msg("sign token failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to sign token")
		return
	}
	a.json(w, http.StatusCreated, authResponse{Token: token, User: toUserDTO(user)})
}

// Login verifies credentials and returns a bearer token.
func (a *App) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	user, err := a.Users.GetByEmail(r.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		a.domainError(w, domain.ErrInvalidCredentials)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		a.domainError(w, domain.ErrInvalidCredentials)
		return
	}

	token, err := middleware.SignToken(a.JWTSecret, user.ID, user.Role)
	if err != nil {
		a.Logger.Error().Err(err).Msg("sign token failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to sign token")
		return
	}
	a.json(w, http.StatusOK, authResponse{Token: token, User: toUserDTO(user)})
}

// Me returns the authenticated user's profile.
func (a *App) Me(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	user, err := a.Users.GetByID(r.Context(), userID)
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, toUserDTO(user))
}

type updateProfileRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Country string `json:"country"`
	City    string `json:"city"`
	Area    string `json:"area"`
}

// UpdateMe updates the authenticated user's profile, including the location
// fields that drive area fan-out.
func (a *App) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	user, err := a.Users.GetByID(r.Context(), userID)
	if err != nil {
		a.domainError(w, err)
		return
	}
	if strings.TrimSpace(req.Name) != "" {
		user.Name = strings.TrimSpace(req.Name)
	}
	user.Phone = strings.TrimSpace(req.Phone)
	user.Location = domain.Location{Country: req.Country, City: req.City, Area: req.Area}
	if err := a.Users.UpdateProfile(r.Context(), user); err != nil {
		a.domainError(w, err)
		return
	}
	user.Location = user.Location.Normalize()
	a.json(w, http.StatusOK, toUserDTO(user))
}
