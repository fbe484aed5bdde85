// Package httpapi mounts the versioned HTTP API.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"server/internal/domain"
	"server/internal/http/handlers"
	"server/internal/middleware"
)

// Options tunes router-level middleware.
type Options struct {
	CORSAllowedOrigins []string
	RateLimitPerMin    int
}

// NewRouter wires every route under /api.
func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.Recoverer,
		middleware.Logger(app.Logger),
		middleware.CORS(opts.CORSAllowedOrigins),
	)
	if opts.RateLimitPerMin > 0 {
		r.Use(middleware.RateLimit(opts.RateLimitPerMin, time.Minute))
	}

	r.Route("/api", func(r chi.Router) {
		// Public
		r.Get("/healthz", app.Health)
		r.Post("/auth/register", app.Register)
		r.Post("/auth/login", app.Login)
		r.Get("/locations/hint", app.LocationHint)

		r.Get("/donations", app.ListDonations)
		r.Get("/donations/{id}", app.GetDonation)
		r.Get("/missing", app.ListMissing)
		r.Get("/missing/{id}", app.GetMissing)
		r.Get("/comments/{kind}/{id}", app.ListComments)

		r.Get("/jobs", app.ListOpenJobs)
		r.Get("/jobs/{id}", app.GetJob)
		r.Get("/caregivers", app.ListCaregivers)
		r.Get("/caregivers/{id}", app.GetCaregiver)

		r.Get("/products", app.ListProducts)
		r.Get("/products/{id}", app.GetProduct)

		// Authenticated
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(app.JWTSecret))

			r.Get("/me", app.Me)
			r.Put("/me", app.UpdateMe)

			r.Post("/donations", app.CreateDonation)
			r.Put("/donations/{id}", app.UpdateDonation)
			r.Delete("/donations/{id}", app.DeleteDonation)
			r.Post("/donations/{id}/upvote", app.UpvoteDonation)
			r.Delete("/donations/{id}/upvote", app.RemoveUpvote)
			r.Post("/donations/{id}/adoption-forms", app.SubmitAdoptionForm)
			r.Get("/donations/{id}/adoption-forms", app.ListAdoptionForms)
			r.Post("/donations/{id}/adoption-forms/{formID}/accept", app.AcceptAdoptionForm)

			r.Post("/missing", app.CreateMissing)
			r.Put("/missing/{id}", app.UpdateMissing)
			r.Delete("/missing/{id}", app.DeleteMissing)

			r.Post("/comments/{kind}/{id}", app.CreateComment)
			r.Delete("/comments/{commentID}", app.DeleteComment)

			r.Post("/jobs", app.CreateJob)
			r.Get("/jobs/mine", app.ListMyJobs)
			r.Delete("/jobs/{id}", app.DeleteJob)
			r.Post("/jobs/{id}/applications", app.ApplyToJob)
			r.Get("/jobs/{id}/applications", app.ListJobApplications)
			r.Post("/jobs/{id}/actions", app.JobAction)

			r.Post("/caregivers", app.CreateCaregiverProfile)
			r.Get("/caregivers/me", app.MyCaregiverProfile)

			r.Get("/cart", app.GetCart)
			r.Post("/cart/items", app.AddToCart)
			r.Put("/cart/items", app.SetCartQuantity)
			r.Delete("/cart/items/{productID}", app.RemoveFromCart)
			r.Post("/checkout", app.Checkout)
			r.Get("/orders", app.ListMyOrders)
			r.Get("/orders/{id}", app.GetOrder)

			r.Get("/notifications", app.ListNotifications)
			r.Post("/notifications/{id}/read", app.MarkNotificationRead)

			r.Post("/vetchat", app.VetChat)
		})

		// Admin
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(app.JWTSecret), middleware.RequireRole(domain.UserRoleAdmin))

			r.Post("/products", app.CreateProduct)
			r.Put("/products/{id}", app.UpdateProduct)
			r.Delete("/products/{id}", app.DeleteProduct)
			r.Put("/orders/{id}/status", app.UpdateOrderStatus)
		})
	})

	return r
}
