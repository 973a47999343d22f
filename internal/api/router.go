package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/ejdotp/digiWallet/internal/api/handlers"
	"github.com/ejdotp/digiWallet/internal/config"
	"github.com/ejdotp/digiWallet/internal/metrics"
	"github.com/ejdotp/digiWallet/internal/middleware"
	"github.com/ejdotp/digiWallet/internal/services"
)

func NewRouter(cfg config.Config, us *services.UserService, ls *services.LedgerService, cs *services.CatalogService, am *middleware.AuthMiddleware) http.Handler {
	h := handlers.New(us, ls, cs)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recover, middleware.RateLimit(cfg.RateRPS), middleware.HTTPMetrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Handle("/metrics", metrics.Handler())

	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
	r.Get("/product", h.ListProducts)

	r.Group(func(r chi.Router) {
		r.Use(am.Auth)
		r.Post("/fund", h.Fund)
		r.Post("/pay", h.Pay)
		r.Get("/bal", h.Balance)
		r.Get("/stmt", h.Statement)
		r.Post("/product", h.AddProduct)
		r.Post("/buy", h.Buy)
	})

	return r
}
