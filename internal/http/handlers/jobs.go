package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"server/internal/domain"
	"server/internal/validate"
)

type jobCreateRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Tags        []string  `json:"tags"`
	Country     string    `json:"country"`
	City        string    `json:"city"`
	Area        string    `json:"area"`
	PriceLow    int64     `json:"price_low"`
	PriceHigh   int64     `json:"price_high"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
}

type jobDTO struct {
	ID                  string    `json:"id"`
	OwnerID             string    `json:"owner_id"`
	Title               string    `json:"title"`
	Description         string    `json:"description"`
	Tags                []string  `json:"tags"`
	Country             string    `json:"country"`
	City                string    `json:"city"`
	Area                string    `json:"area"`
	PriceLow            int64     `json:"price_low"`
	PriceHigh           int64     `json:"price_high"`
	StartDate           time.Time `json:"start_date"`
	EndDate             time.Time `json:"end_date"`
	Status              string    `json:"status"`
	SelectedCaregiverID *string   `json:"selected_caregiver_id,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
}

func toJobDTO(j *domain.JobPost) jobDTO {
	return jobDTO{
		ID:                  j.ID,
		OwnerID:             j.OwnerID,
		Title:               j.Title,
		Description:         j.Description,
		Tags:                j.Tags,
		Country:             j.Location.Country,
		City:                j.Location.City,
		Area:                j.Location.Area,
		PriceLow:            j.PriceLow,
		PriceHigh:           j.PriceHigh,
		StartDate:           j.StartDate,
		EndDate:             j.EndDate,
		Status:              string(j.Status),
		SelectedCaregiverID: j.SelectedCaregiverID,
		CreatedAt:           j.CreatedAt,
	}
}

// CreateJob posts a caregiving job in the OPEN state.
func (a *App) CreateJob(w http.ResponseWriter, r *http.Request) {
	var req jobCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "title is required")
		return
	}
	if req.PriceLow <= 0 || req.PriceHigh < req.PriceLow {
		a.error(w, http.StatusBadRequest, "bad_request", "price range must be positive with low <= high")
		return
	}
	if !req.EndDate.After(req.StartDate) {
		a.error(w, http.StatusBadRequest, "bad_request", "end date must be after start date")
		return
	}

	job := &domain.JobPost{
		ID:          uuid.NewString(),
		OwnerID:     a.currentUserID(r),
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Tags:        req.Tags,
		Location:    domain.Location{Country: req.Country, City: req.City, Area: req.Area},
		PriceLow:    req.PriceLow,
		PriceHigh:   req.PriceHigh,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Status:      domain.JobOpen,
	}
	if err := a.Jobs.Create(r.Context(), job); err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusCreated, toJobDTO(job))
}

// ListOpenJobs returns OPEN jobs, newest first.
func (a *App) ListOpenJobs(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	jobs, err := a.Jobs.ListOpen(r.Context(), limit, offset)
	if err != nil {
		a.domainError(w, err)
		return
	}
	out := make([]jobDTO, 0, len(jobs))
	for i := range jobs {
		out = append(out, toJobDTO(&jobs[i]))
	}
	a.json(w, http.StatusOK, out)
}

// ListMyJobs returns the caller's own jobs regardless of status.
func (a *App) ListMyJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := a.Jobs.ListByOwner(r.Context(), a.currentUserID(r))
	if err != nil {
		a.domainError(w, err)
		return
	}
	out := make([]jobDTO, 0, len(jobs))
	for i := range jobs {
		out = append(out, toJobDTO(&jobs[i]))
	}
	a.json(w, http.StatusOK, out)
}

// GetJob returns one job post.
func (a *App) GetJob(w http.ResponseWriter, r *http.Request) {
	job, err := a.Jobs.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, toJobDTO(job))
}

// DeleteJob removes an OPEN job with its applications. Owner only.
func (a *App) DeleteJob(w http.ResponseWriter, r *http.Request) {
	job, err := a.Jobs.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.domainError(w, err)
		return
	}
	if job.OwnerID != a.currentUserID(r) {
		a.domainError(w, domain.ErrForbidden)
		return
	}
	if err := a.Jobs.Delete(r.Context(), job.ID); err != nil {
		a.domainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type applyRequest struct {
	Proposal string `json:"proposal"`
	Amount   int64  `json:"amount"`
}

type applicationDTO struct {
	ID          string    `json:"id"`
	JobPostID   string    `json:"job_post_id"`
	CaregiverID string    `json:"caregiver_id"`
	Proposal    string    `json:"proposal"`
	Amount      int64     `json:"amount"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

func toApplicationDTO(app *domain.Application) applicationDTO {
	return applicationDTO{
		ID:          app.ID,
		JobPostID:   app.JobPostID,
		CaregiverID: app.CaregiverID,
		Proposal:    app.Proposal,
		Amount:      app.Amount,
		Status:      string(app.Status),
		CreatedAt:   app.CreatedAt,
	}
}

// ApplyToJob files a caregiver's bid on an OPEN job. The caller needs a
// caregiver profile and the amount must fall inside the job's price range.
func (a *App) ApplyToJob(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	caregiver, err := a.Caregivers.GetByUserID(r.Context(), userID)
	if err != nil {
		a.domainError(w, domain.ErrForbidden)
		return
	}

	job, err := a.Jobs.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.domainError(w, err)
		return
	}
	if job.OwnerID == userID {
		a.domainError(w, domain.ErrForbidden)
		return
	}

	var req applyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.Amount < job.PriceLow || req.Amount > job.PriceHigh {
		a.domainError(w, domain.ErrAmountOutOfRange)
		return
	}

	app := &domain.Application{
		ID:          uuid.NewString(),
		JobPostID:   job.ID,
		CaregiverID: caregiver.ID,
		Proposal:    req.Proposal,
		Amount:      req.Amount,
		Status:      domain.ApplicationPending,
	}
	if err := a.Jobs.Apply(r.Context(), app); err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusCreated, toApplicationDTO(app))
}

// ListJobApplications returns the applications on a job. Owner only.
func (a *App) ListJobApplications(w http.ResponseWriter, r *http.Request) {
	job, err := a.Jobs.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.domainError(w, err)
		return
	}
	if job.OwnerID != a.currentUserID(r) {
		a.domainError(w, domain.ErrForbidden)
		return
	}
	apps, err := a.Jobs.ListApplications(r.Context(), job.ID)
	if err != nil {
		a.domainError(w, err)
		return
	}
	out := make([]applicationDTO, 0, len(apps))
	for i := range apps {
		out = append(out, toApplicationDTO(&apps[i]))
	}
	a.json(w, http.StatusOK, out)
}

type jobActionRequest struct {
	Action        string `json:"action"`
	ApplicationID string `json:"application_id"`
	Review        *struct {
		Rating int    `json:"rating"`
		Body   string `json:"body"`
	} `json:"review"`
}

// JobAction drives the job lifecycle. Owner only. The payload is a tagged
// union validated by schema: select_caregiver, end_job or cancel. The
// requested transition is checked against the state machine before the
// repository applies it.
func (a *App) JobAction(w http.ResponseWriter, r *http.Request) {
	job, err := a.Jobs.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.domainError(w, err)
		return
	}
	if job.OwnerID != a.currentUserID(r) {
		a.domainError(w, domain.ErrForbidden)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "cannot read body")
		return
	}
	if err := validate.JobAction(body); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	var req jobActionRequest
	if err := json.Unmarshal(body, &req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	var target domain.JobStatus
	switch req.Action {
	case "select_caregiver":
		target = domain.JobOngoing
	case "end_job", "cancel":
		target = domain.JobClosed
	default:
		a.error(w, http.StatusBadRequest, "bad_request", "unknown action")
		return
	}
	if !domain.JobTransitionAllowed(job.Status, target) {
		a.domainError(w, domain.ErrInvalidTransition)
		return
	}

	switch req.Action {
	case "select_caregiver":
		application, err := a.Jobs.GetApplication(r.Context(), req.ApplicationID)
		if err != nil {
			a.domainError(w, err)
			return
		}
		if application.JobPostID != job.ID {
			a.domainError(w, domain.ErrNotFound)
			return
		}
		accepted, err := a.Jobs.SelectCaregiver(r.Context(), job.ID, application.ID)
		if err != nil {
			a.domainError(w, err)
			return
		}
		if caregiver, cgErr := a.Caregivers.GetByID(r.Context(), accepted.CaregiverID); cgErr == nil {
			if err := a.Notifier.CaregiverSelected(r.Context(), job, caregiver.UserID); err != nil {
				a.Logger.Error().Err(err).Str("job_id", job.ID).Msg("caregiver selection notification failed")
			}
		} else {
			a.Logger.Error().Err(cgErr).Str("job_id", job.ID).Str("caregiver_id", accepted.CaregiverID).
				Msg("caregiver lookup for selection notification failed")
		}
		a.json(w, http.StatusOK, toApplicationDTO(accepted))

	case "end_job":
		var review *domain.Review
		if req.Review != nil {
			if job.SelectedCaregiverID == nil {
				a.domainError(w, domain.ErrInvalidTransition)
				return
			}
			review = &domain.Review{
				ID:          uuid.NewString(),
				JobPostID:   job.ID,
				CaregiverID: *job.SelectedCaregiverID,
				ReviewerID:  job.OwnerID,
				Rating:      req.Review.Rating,
				Body:        req.Review.Body,
			}
		}
		if err := a.Jobs.EndJob(r.Context(), job.ID, review); err != nil {
			a.domainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	case "cancel":
		if err := a.Jobs.Cancel(r.Context(), job.ID); err != nil {
			a.domainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
