package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/SwarupDevkota/ghumna-sub000/internal/api"
	"github.com/SwarupDevkota/ghumna-sub000/internal/audit"
	"github.com/SwarupDevkota/ghumna-sub000/internal/auth"
	"github.com/SwarupDevkota/ghumna-sub000/internal/availability"
	"github.com/SwarupDevkota/ghumna-sub000/internal/booking"
	"github.com/SwarupDevkota/ghumna-sub000/internal/cache"
	"github.com/SwarupDevkota/ghumna-sub000/internal/contact"
	"github.com/SwarupDevkota/ghumna-sub000/internal/event"
	"github.com/SwarupDevkota/ghumna-sub000/internal/hotel"
	"github.com/SwarupDevkota/ghumna-sub000/internal/notify"
	"github.com/SwarupDevkota/ghumna-sub000/internal/payment"
	"github.com/SwarupDevkota/ghumna-sub000/internal/role"
	"github.com/SwarupDevkota/ghumna-sub000/internal/room"
	"github.com/SwarupDevkota/ghumna-sub000/internal/stats"
	"github.com/SwarupDevkota/ghumna-sub000/internal/user"
	"github.com/SwarupDevkota/ghumna-sub000/pkg/config"
)

type Dependencies struct {
	Cfg     config.Config
	DB      *pgxpool.Pool
	Cache   *cache.JSON // nil disables caching
	Mail    notify.Sender
	Gateway payment.Gateway
}

func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(api.RequestID)
	r.Use(api.AccessLog)
	r.Use(middleware.Recoverer)
	r.Use(api.ErrorDetail(!deps.Cfg.IsProd()))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	usersRepo := user.NewRepository(deps.DB)
	hotelsRepo := hotel.NewRepository(deps.DB)
	auditRepo := audit.NewRepository(deps.DB)

	hotelService := &hotel.Service{
		Store:    hotelsRepo,
		CacheTTL: deps.Cfg.Redis.HotelTTL,
		Mail:     deps.Mail,
		History:  auditRepo,
	}
	if deps.Cache != nil {
		hotelService.Cache = deps.Cache
	}
	bookingService := &booking.Service{Store: booking.NewRepository(deps.DB), Hotels: hotelsRepo}
	requestService := &availability.Service{Store: availability.NewRepository(deps.DB), Hotels: hotelsRepo, Mail: deps.Mail}

	authHandlers := auth.Handlers{Session: deps.Cfg.Session, Users: usersRepo}
	userHandlers := user.Handlers{Users: usersRepo}
	hotelHandlers := hotel.Handlers{Hotels: hotelService}
	roomHandlers := room.Handlers{Rooms: room.NewRepository(deps.DB), Hotels: hotelsRepo}
	bookingHandlers := booking.Handlers{Bookings: bookingService}
	requestHandlers := availability.Handlers{Requests: requestService}
	eventHandlers := event.Handlers{Events: &event.Service{Store: event.NewRepository(deps.DB), Mail: deps.Mail}}
	contactHandlers := contact.Handlers{Contacts: contact.NewRepository(deps.DB)}
	statsHandlers := stats.Handlers{Counts: stats.NewRepository(deps.DB), History: auditRepo}
	paymentHandlers := payment.Handlers{Cfg: deps.Cfg.Khalti, Gateway: deps.Gateway, Bookings: bookingService}

	r.Route("/api", func(r chi.Router) {
		// The browser app lives on another origin and sends the session cookie.
		r.Use(api.CORSMiddleware(api.CORSOptions{
			AllowedOrigins:   deps.Cfg.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Content-Type", "X-Request-ID"},
			AllowCredentials: true,
			MaxAgeSeconds:    600,
		}))
		r.Use(api.SessionAuth(deps.Cfg.Session, usersRepo))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", authHandlers.Signup)
			r.Post("/login", authHandlers.Login)
			r.Post("/logout", authHandlers.Logout)
			r.With(api.RequireAuth).Get("/me", authHandlers.Me)
		})

		r.Route("/user", func(r chi.Router) {
			r.With(api.Require(role.ManageUsers)).Get("/", userHandlers.List)
			r.With(api.Require(role.ManageUsers)).Delete("/{id}", userHandlers.Delete)
			r.Group(func(r chi.Router) {
				r.Use(api.RequireAuth)
				r.Get("/{id}", userHandlers.Get)
				r.Put("/{id}", userHandlers.Put)
				r.Get("/{id}/bookings", bookingHandlers.ForUser)
				r.Get("/{id}/requests", requestHandlers.ForUser)
			})
		})

		r.Route("/hotels", func(r chi.Router) {
			r.Get("/approved", hotelHandlers.Approved)
			r.Get("/{id}", hotelHandlers.Get)
			r.Get("/{id}/rooms", roomHandlers.ListByHotel)
			r.Group(func(r chi.Router) {
				r.Use(api.RequireAuth)
				r.Post("/", hotelHandlers.Submit)
				r.Get("/mine", hotelHandlers.Mine)
				r.Put("/{id}", hotelHandlers.Put)
				r.Post("/{id}/media", hotelHandlers.AddMedia)
				r.Get("/{id}/bookings", bookingHandlers.ForHotel)
				r.Get("/{id}/requests", requestHandlers.ForHotel)
			})
			r.Group(func(r chi.Router) {
				r.Use(api.Require(role.ReviewHotels))
				r.Get("/", hotelHandlers.List)
				r.Post("/{id}/approve", hotelHandlers.Approve)
				r.Post("/{id}/reject", hotelHandlers.Reject)
				r.Post("/{id}/revert", hotelHandlers.Revert)
				r.Get("/{id}/history", hotelHandlers.History)
				r.Delete("/{id}", hotelHandlers.Delete)
			})
		})

		r.Route("/rooms", func(r chi.Router) {
			r.Get("/{id}", roomHandlers.Get)
			r.Group(func(r chi.Router) {
				r.Use(api.RequireAuth)
				r.Post("/", roomHandlers.Create)
				r.Put("/{id}", roomHandlers.Put)
				r.Delete("/{id}", roomHandlers.Delete)
			})
		})

		r.Route("/booking", func(r chi.Router) {
			r.Post("/quote", bookingHandlers.Quote)
			r.With(api.Require(role.Book)).Post("/", bookingHandlers.Create)
			r.With(api.RequireAuth).Get("/{id}", bookingHandlers.Get)
			r.Group(func(r chi.Router) {
				r.Use(api.Require(role.ViewAllBookings))
				r.Get("/", bookingHandlers.List)
				r.Get("/export", bookingHandlers.Export)
			})

			r.Route("/requests", func(r chi.Router) {
				r.Use(api.RequireAuth)
				r.Post("/", requestHandlers.Create)
				r.Get("/hotel/{id}", requestHandlers.ForHotel)
				r.Post("/{id}/approve", requestHandlers.Approve)
				r.Post("/{id}/reject", requestHandlers.Reject)
			})
		})

		r.Route("/event", func(r chi.Router) {
			r.Get("/approved", eventHandlers.Approved)
			r.With(api.RequireAuth).Post("/", eventHandlers.Submit)
			r.Group(func(r chi.Router) {
				r.Use(api.Require(role.ModerateEvents))
				r.Get("/", eventHandlers.List)
				r.Post("/{id}/approve", eventHandlers.Approve)
				r.Post("/{id}/decline", eventHandlers.Decline)
				r.Delete("/{id}", eventHandlers.Delete)
			})
		})

		r.Route("/contact", func(r chi.Router) {
			r.Post("/", contactHandlers.Create)
			r.With(api.Require(role.ManageContacts)).Get("/", contactHandlers.List)
			r.With(api.Require(role.ManageContacts)).Delete("/{id}", contactHandlers.Delete)
		})

		r.With(api.Require(role.ViewStats)).Get("/stats", statsHandlers.Get)

		r.Route("/payment", func(r chi.Router) {
			r.Use(api.RequireAuth)
			r.Post("/initiate", paymentHandlers.Initiate)
			r.Post("/verify", paymentHandlers.Verify)
		})
	})

	return r
}
