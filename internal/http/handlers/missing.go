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

type missingCreateRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	PetName     string    `json:"pet_name"`
	Species     string    `json:"species"`
	Country     string    `json:"country"`
	City        string    `json:"city"`
	Area        string    `json:"area"`
	LastSeenAt  time.Time `json:"last_seen_at"`
	ImageData   string    `json:"image_data"`
	ImageType   string    `json:"image_type"`
}

type missingDTO struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	PetName     string    `json:"pet_name"`
	Species     string    `json:"species"`
	ImageURL    string    `json:"image_url"`
	Country     string    `json:"country"`
	City        string    `json:"city"`
	Area        string    `json:"area"`
	LastSeenAt  time.Time `json:"last_seen_at"`
	IsFound     bool      `json:"is_found"`
	CreatedAt   time.Time `json:"created_at"`
}

func toMissingDTO(p *domain.MissingPost) missingDTO {
	return missingDTO{
		ID:          p.ID,
		OwnerID:     p.OwnerID,
		Title:       p.Title,
		Description: p.Description,
		PetName:     p.PetName,
		Species:     p.Species,
		ImageURL:    p.ImageURL,
		Country:     p.Location.Country,
		City:        p.Location.City,
		Area:        p.Location.Area,
		LastSeenAt:  p.LastSeenAt,
		IsFound:     p.IsFound,
		CreatedAt:   p.CreatedAt,
	}
}

// CreateMissing reports a lost pet.
func (a *App) CreateMissing(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	var req missingCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.City) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "title and city are required")
		return
	}

	imageURL, imageKey, err := a.uploadImage(r, "missing", req.ImageData, req.ImageType)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	lastSeen := req.LastSeenAt
	if lastSeen.IsZero() {
		lastSeen = time.Now()
	}
	post := &domain.MissingPost{
		ID:          uuid.NewString(),
		OwnerID:     userID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		PetName:     req.PetName,
		Species:     req.Species,
		ImageURL:    imageURL,
		ImageKey:    imageKey,
		Location:    domain.Location{Country: req.Country, City: req.City, Area: req.Area},
		LastSeenAt:  lastSeen,
	}
	if err := a.Missing.Create(r.Context(), post); err != nil {
		if imageKey != "" {
			if delErr := a.Media.Delete(r.Context(), imageKey); delErr != nil {
				a.Logger.Warn().Err(delErr).Str("key", imageKey).Msg("orphaned image after failed insert")
			}
		}
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusCreated, toMissingDTO(post))
}

// ListMissing returns missing-pet reports, newest first.
func (a *App) ListMissing(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	posts, err := a.Missing.List(r.Context(), limit, offset)
	if err != nil {
		a.domainError(w, err)
		return
	}
	out := make([]missingDTO, 0, len(posts))
	for i := range posts {
		out = append(out, toMissingDTO(&posts[i]))
	}
	a.json(w, http.StatusOK, out)
}

// GetMissing returns one report.
func (a *App) GetMissing(w http.ResponseWriter, r *http.Request) {
	post, err := a.Missing.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, toMissingDTO(post))
}

type missingUpdateRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	LastSeenAt  *time.Time `json:"last_seen_at"`
	IsFound     *bool      `json:"is_found"`
}

// UpdateMissing edits a report. Owner only. Setting is_found marks the pet
// as recovered.
func (a *App) UpdateMissing(w http.ResponseWriter, r *http.Request) {
	post, err := a.Missing.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.domainError(w, err)
		return
	}
	if post.OwnerID != a.currentUserID(r) {
		a.domainError(w, domain.ErrForbidden)
		return
	}
	var req missingUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if strings.TrimSpace(req.Title) != "" {
		post.Title = strings.TrimSpace(req.Title)
	}
	post.Description = req.Description
	if req.LastSeenAt != nil {
		post.LastSeenAt = *req.LastSeenAt
	}
	if req.IsFound != nil {
		post.IsFound = *req.IsFound
	}
	if err := a.Missing.Update(r.Context(), post); err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, toMissingDTO(post))
}

// DeleteMissing removes a report. Owner only.
func (a *App) DeleteMissing(w http.ResponseWriter, r *http.Request) {
	post, err := a.Missing.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.domainError(w, err)
		return
	}
	if post.OwnerID != a.currentUserID(r) {
		a.domainError(w, domain.ErrForbidden)
		return
	}
	if err := a.Missing.Delete(r.Context(), post.ID); err != nil {
		a.domainError(w, err)
		return
	}
	if post.ImageKey != "" {
		if err := a.Media.Delete(r.Context(), post.ImageKey); err != nil {
			a.Logger.Warn().Err(err).Str("key", post.ImageKey).Msg("image delete after post removal failed")
		}
	}
	w.WriteHeader(http.StatusNoContent)
}
