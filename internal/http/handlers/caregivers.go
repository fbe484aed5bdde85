package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"server/internal/domain"
)

type caregiverCreateRequest struct {
	Bio        string `json:"bio"`
	HourlyRate int64  `json:"hourly_rate"`
	City       string `json:"city"`
}

type caregiverDTO struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	Bio         string    `json:"bio"`
	HourlyRate  int64     `json:"hourly_rate"`
	City        string    `json:"city"`
	Verified    bool      `json:"verified"`
	RatingAvg   float64   `json:"rating_avg"`
	RatingCount int       `json:"rating_count"`
	CreatedAt   time.Time `json:"created_at"`
}

func toCaregiverDTO(c *domain.Caregiver) caregiverDTO {
	return caregiverDTO{
		ID:          c.ID,
		UserID:      c.UserID,
		Name:        c.Name,
		Bio:         c.Bio,
		HourlyRate:  c.HourlyRate,
		City:        c.City,
		Verified:    c.Verified,
		RatingAvg:   c.RatingAvg,
		RatingCount: c.RatingCount,
		CreatedAt:   c.CreatedAt,
	}
}

// CreateCaregiverProfile registers the caller as a caregiver. A user holds
// at most one profile.
func (a *App) CreateCaregiverProfile(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if _, err := a.Caregivers.GetByUserID(r.Context(), userID); err == nil {
		a.domainError(w, domain.ErrDuplicateOperation)
		return
	}

	var req caregiverCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.HourlyRate <= 0 || strings.TrimSpace(req.City) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "hourly rate and city are required")
		return
	}

	cg := &domain.Caregiver{
		ID:         uuid.NewString(),
		UserID:     userID,
		Bio:        req.Bio,
		HourlyRate: req.HourlyRate,
		City:       domain.NormalizeLocationValue(req.City),
	}
	if err := a.Caregivers.Create(r.Context(), cg); err != nil {
		a.domainError(w, err)
		return
	}

	created, err := a.Caregivers.GetByID(r.Context(), cg.ID)
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusCreated, toCaregiverDTO(created))
}

// ListCaregivers returns caregivers, optionally filtered by city.
func (a *App) ListCaregivers(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	city := domain.NormalizeLocationValue(r.URL.Query().Get("city"))
	caregivers, err := a.Caregivers.ListByCity(r.Context(), city, limit, offset)
	if err != nil {
		a.domainError(w, err)
		return
	}
	out := make([]caregiverDTO, 0, len(caregivers))
	for i := range caregivers {
		out = append(out, toCaregiverDTO(&caregivers[i]))
	}
	a.json(w, http.StatusOK, out)
}

// GetCaregiver returns one caregiver profile with its rating aggregate.
func (a *App) GetCaregiver(w http.ResponseWriter, r *http.Request) {
	cg, err := a.Caregivers.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, toCaregiverDTO(cg))
}

// MyCaregiverProfile returns the caller's own caregiver profile.
func (a *App) MyCaregiverProfile(w http.ResponseWriter, r *http.Request) {
	cg, err := a.Caregivers.GetByUserID(r.Context(), a.currentUserID(r))
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, toCaregiverDTO(cg))
}
