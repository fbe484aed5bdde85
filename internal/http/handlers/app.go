package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"server/internal/domain"
	"server/internal/infra/geoip"
	"server/internal/media"
	"server/internal/middleware"
	"server/internal/notify"
	"server/internal/vetchat"
)

// CartStore is the slice of the cart service the handlers need.
type CartStore interface {
	Add(ctx context.Context, userID, productID string, quantity int) error
	SetQuantity(ctx context.Context, userID, productID string, quantity int) error
	Remove(ctx context.Context, userID, productID string) error
	Items(ctx context.Context, userID string) ([]domain.CartItem, error)
	Clear(ctx context.Context, userID string) error
}

// App bundles the dependencies shared by all route handlers.
type App struct {
	Logger    zerolog.Logger
	JWTSecret string

	Users         domain.UserRepository
	Caregivers    domain.CaregiverRepository
	Donations     domain.DonationRepository
	Missing       domain.MissingRepository
	Comments      domain.CommentRepository
	Jobs          domain.JobRepository
	Products      domain.ProductRepository
	Orders        domain.OrderRepository
	Notifications domain.NotificationRepository

	Media    media.Store
	Cart     CartStore
	Notifier *notify.Notifier
	Vet      vetchat.Responder
	Geo      geoip.Resolver
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, codeStr, msg string) {
	a.json(w, code, map[string]string{"error": codeStr, "message": msg})
}

// domainError maps domain error values onto HTTP statuses.
func (a *App) domainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrInvalidCredentials):
		a.error(w, http.StatusUnauthorized, "unauthorized", err.Error())
	case errors.Is(err, domain.ErrForbidden):
		a.error(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, domain.ErrAlreadyUpvoted),
		errors.Is(err, domain.ErrNotUpvoted),
		errors.Is(err, domain.ErrAlreadyApplied),
		errors.Is(err, domain.ErrEmailTaken),
		errors.Is(err, domain.ErrPostUnavailable),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrDuplicateOperation),
		errors.Is(err, domain.ErrOutOfStock):
		a.error(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, domain.ErrAmountOutOfRange), errors.Is(err, domain.ErrEmptyCart):
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
	default:
		a.Logger.Error().Err(err).Msg("unhandled error")
		a.error(w, http.StatusInternalServerError, "internal", "internal server error")
	}
}

func (a *App) currentUserID(r *http.Request) string {
	return middleware.UserIDFromContext(r.Context())
}

func pagination(r *http.Request) (limit, offset int) {
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
