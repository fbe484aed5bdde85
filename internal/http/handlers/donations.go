package handlers

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"server/internal/domain"
)

type donationCreateRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	PetName     string `json:"pet_name"`
	Species     string `json:"species"`
	Breed       string `json:"breed"`
	AgeMonths   int    `json:"age_months"`
	Country     string `json:"country"`
	City        string `json:"city"`
	Area        string `json:"area"`
	// ImageData is the raw image, base64 encoded. Optional.
	ImageData string `json:"image_data"`
	ImageType string `json:"image_type"`
}

type donationDTO struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"owner_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	PetName      string    `json:"pet_name"`
	Species      string    `json:"species"`
	Breed        string    `json:"breed"`
	AgeMonths    int       `json:"age_months"`
	ImageURL     string    `json:"image_url"`
	Country      string    `json:"country"`
	City         string    `json:"city"`
	Area         string    `json:"area"`
	IsAvailable  bool      `json:"is_available"`
	UpvotesCount int       `json:"upvotes_count"`
	CreatedAt    time.Time `json:"created_at"`
}

func toDonationDTO(p *domain.DonationPost) donationDTO {
	return donationDTO{
		ID:           p.ID,
		OwnerID:      p.OwnerID,
		Title:        p.Title,
		Description:  p.Description,
		PetName:      p.PetName,
		Species:      p.Species,
		Breed:        p.Breed,
		AgeMonths:    p.AgeMonths,
		ImageURL:     p.ImageURL,
		Country:      p.Location.Country,
		City:         p.Location.City,
		Area:         p.Location.Area,
		IsAvailable:  p.IsAvailable,
		UpvotesCount: p.UpvotesCount,
		CreatedAt:    p.CreatedAt,
	}
}

// uploadImage decodes base64 image data and stores it under prefix. Returns
// the public URL and storage key, or empty strings when no data was sent.
func (a *App) uploadImage(r *http.Request, prefix, data, contentType string) (url, key string, err error) {
	if data == "" {
		return "", "", nil
	}
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return "", "", fmt.Errorf("decode image: %w", err)
	}
	ext := "jpg"
	if parts := strings.Split(contentType, "/"); len(parts) == 2 && parts[1] != "" {
		ext = parts[1]
	}
	key = fmt.Sprintf("%s/%s.%s", prefix, uuid.NewString(), ext)
	url, err = a.Media.Upload(r.Context(), key, contentType, raw)
	if err != nil {
		return "", "", fmt.Errorf("upload image: %w", err)
	}
	return url, key, nil
}

// CreateDonation publishes a pet adoption listing. The image is uploaded
// first; a failed insert rolls the upload back with a best-effort delete.
func (a *App) CreateDonation(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	var req donationCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.City) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "title and city are required")
		return
	}

	imageURL, imageKey, err := a.uploadImage(r, "donations", req.ImageData, req.ImageType)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	post := &domain.DonationPost{
		ID:          uuid.NewString(),
		OwnerID:     userID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		PetName:     req.PetName,
		Species:     req.Species,
		Breed:       req.Breed,
		AgeMonths:   req.AgeMonths,
		ImageURL:    imageURL,
		ImageKey:    imageKey,
		Location:    domain.Location{Country: req.Country, City: req.City, Area: req.Area},
		IsAvailable: true,
	}
	if err := a.Donations.Create(r.Context(), post); err != nil {
		if imageKey != "" {
			if delErr := a.Media.Delete(r.Context(), imageKey); delErr != nil {
				a.Logger.Warn().Err(delErr).Str("key", imageKey).Msg("orphaned image after failed insert")
			}
		}
		a.domainError(w, err)
		return
	}

	if err := a.Notifier.DonationPostCreated(r.Context(), post); err != nil {
		a.Logger.Error().Err(err).Str("post_id", post.ID).Msg("area fan-out failed")
	}
	a.json(w, http.StatusCreated, toDonationDTO(post))
}

// ListDonations returns donation posts, newest first.
func (a *App) ListDonations(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	posts, err := a.Donations.List(r.Context(), limit, offset)
	if err != nil {
		a.domainError(w, err)
		return
	}
	out := make([]donationDTO, 0, len(posts))
	for i := range posts {
		out = append(out, toDonationDTO(&posts[i]))
	}
	a.json(w, http.StatusOK, out)
}

// GetDonation returns one donation post.
func (a *App) GetDonation(w http.ResponseWriter, r *http.Request) {
	post, err := a.Donations.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, toDonationDTO(post))
}

type donationUpdateRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	PetName     string `json:"pet_name"`
	Species     string `json:"species"`
	Breed       string `json:"breed"`
	AgeMonths   int    `json:"age_months"`
}

// UpdateDonation edits a post's descriptive fields. Owner only.
func (a *App) UpdateDonation(w http.ResponseWriter, r *http.Request) {
	post, err := a.Donations.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.domainError(w, err)
		return
	}
	if post.OwnerID != a.currentUserID(r) {
		a.domainError(w, domain.ErrForbidden)
		return
	}
	var req donationUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if strings.TrimSpace(req.Title) != "" {
		post.Title = strings.TrimSpace(req.Title)
	}
	post.Description = req.Description
	post.PetName = req.PetName
	post.Species = req.Species
	post.Breed = req.Breed
	if req.AgeMonths > 0 {
		post.AgeMonths = req.AgeMonths
	}
	if err := a.Donations.Update(r.Context(), post); err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, toDonationDTO(post))
}

// DeleteDonation removes a post with its upvotes, comments and forms.
// Owner only. The stored image is deleted after the row cascade commits.
func (a *App) DeleteDonation(w http.ResponseWriter, r *http.Request) {
	post, err := a.Donations.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.domainError(w, err)
		return
	}
	if post.OwnerID != a.currentUserID(r) {
		a.domainError(w, domain.ErrForbidden)
		return
	}
	if err := a.Donations.Delete(r.Context(), post.ID); err != nil {
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

// UpvoteDonation records the caller's upvote. Duplicate upvotes conflict.
func (a *App) UpvoteDonation(w http.ResponseWriter, r *http.Request) {
	if err := a.Donations.Upvote(r.Context(), chi.URLParam(r, "id"), a.currentUserID(r)); err != nil {
		a.domainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RemoveUpvote withdraws the caller's upvote.
func (a *App) RemoveUpvote(w http.ResponseWriter, r *http.Request) {
	if err := a.Donations.RemoveUpvote(r.Context(), chi.URLParam(r, "id"), a.currentUserID(r)); err != nil {
		a.domainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type adoptionFormRequest struct {
	Description string    `json:"description"`
	MeetingAt   time.Time `json:"meeting_at"`
}

type adoptionFormDTO struct {
	ID             string    `json:"id"`
	DonationPostID string    `json:"donation_post_id"`
	ApplicantID    string    `json:"applicant_id"`
	Description    string    `json:"description"`
	MeetingAt      time.Time `json:"meeting_at"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

func toAdoptionFormDTO(f *domain.AdoptionForm) adoptionFormDTO {
	return adoptionFormDTO{
		ID:             f.ID,
		DonationPostID: f.DonationPostID,
		ApplicantID:    f.ApplicantID,
		Description:    f.Description,
		MeetingAt:      f.MeetingAt,
		Status:         string(f.Status),
		CreatedAt:      f.CreatedAt,
	}
}

// SubmitAdoptionForm files an application to adopt. One per user per post;
// owners cannot apply to their own post, unavailable posts reject new forms.
func (a *App) SubmitAdoptionForm(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	post, err := a.Donations.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.domainError(w, err)
		return
	}
	if post.OwnerID == userID {
		a.domainError(w, domain.ErrForbidden)
		return
	}
	if !post.IsAvailable {
		a.domainError(w, domain.ErrPostUnavailable)
		return
	}
	var req adoptionFormRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	form := &domain.AdoptionForm{
		ID:             uuid.NewString(),
		DonationPostID: post.ID,
		ApplicantID:    userID,
		Description:    req.Description,
		MeetingAt:      req.MeetingAt,
		Status:         domain.AdoptionPending,
	}
	if err := a.Donations.SubmitAdoptionForm(r.Context(), form); err != nil {
		a.domainError(w, err)
		return
	}
	if err := a.Notifier.AdoptionFormSubmitted(r.Context(), post); err != nil {
		a.Logger.Error().Err(err).Str("post_id", post.ID).Msg("adoption form notification failed")
	}
	a.json(w, http.StatusCreated, toAdoptionFormDTO(form))
}

// ListAdoptionForms returns every form on the post. Owner only.
func (a *App) ListAdoptionForms(w http.ResponseWriter, r *http.Request) {
	post, err := a.Donations.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.domainError(w, err)
		return
	}
	if post.OwnerID != a.currentUserID(r) {
		a.domainError(w, domain.ErrForbidden)
		return
	}
	forms, err := a.Donations.ListAdoptionForms(r.Context(), post.ID)
	if err != nil {
		a.domainError(w, err)
		return
	}
	out := make([]adoptionFormDTO, 0, len(forms))
	for i := range forms {
		out = append(out, toAdoptionFormDTO(&forms[i]))
	}
	a.json(w, http.StatusOK, out)
}

// AcceptAdoptionForm picks the winning application. Owner only. The repo
// guards against a second accept; the losing applicants are rejected in the
// same transaction.
func (a *App) AcceptAdoptionForm(w http.ResponseWriter, r *http.Request) {
	post, err := a.Donations.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.domainError(w, err)
		return
	}
	if post.OwnerID != a.currentUserID(r) {
		a.domainError(w, domain.ErrForbidden)
		return
	}
	formID := chi.URLParam(r, "formID")
	form, err := a.Donations.GetAdoptionForm(r.Context(), formID)
	if err != nil {
		a.domainError(w, err)
		return
	}
	if form.DonationPostID != post.ID {
		a.domainError(w, domain.ErrNotFound)
		return
	}
	accepted, err := a.Donations.AcceptAdoptionForm(r.Context(), formID)
	if err != nil {
		a.domainError(w, err)
		return
	}
	if err := a.Notifier.AdoptionAccepted(r.Context(), post, accepted); err != nil {
		a.Logger.Error().Err(err).Str("form_id", accepted.ID).Msg("adoption accept notification failed")
	}
	a.json(w, http.StatusOK, toAdoptionFormDTO(accepted))
}
