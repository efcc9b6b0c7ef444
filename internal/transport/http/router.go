package http

import (
	"net/http"

	"github.com/campus-market-api/internal/application/auth"
	"github.com/campus-market-api/internal/application/item"
	"github.com/campus-market-api/internal/application/otp"
	"github.com/campus-market-api/internal/application/upload"
	"github.com/campus-market-api/internal/application/user"
	"github.com/campus-market-api/internal/config"
	"github.com/campus-market-api/internal/transport/http/cookie"
	"github.com/campus-market-api/internal/transport/http/handler"
	appmiddleware "github.com/campus-market-api/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		// Session cookies require credentialed CORS.
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authMw := appmiddleware.Auth(deps.JWTProvider)

	// 5 requests/second, burst of 10, applied to sensitive public endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	cookies := cookie.Policy{
		Secure:        cfg.IsProduction(),
		AccessExpiry:  deps.JWTProvider.AccessExpiry(),
		RefreshExpiry: deps.JWTProvider.RefreshExpiry(),
	}

	otpSvc := otp.NewService(otp.ServiceDeps{
		OTPRepo:  deps.OTPRepo,
		UserRepo: deps.UserRepo,
		Mailer:   deps.Mailer,
		Expiry:   cfg.OTPExpiry,
		Logger:   deps.Logger,
	})
	authSvc := auth.NewService(auth.ServiceDeps{
		UserRepo: deps.UserRepo,
		Tokens:   deps.JWTProvider,
		OTPSvc:   otpSvc,
		Logger:   deps.Logger,
	})
	userSvc := user.NewService(user.ServiceDeps{UserRepo: deps.UserRepo})
	itemSvc := item.NewService(item.ServiceDeps{
		ItemRepo: deps.ItemRepo,
		UserRepo: deps.UserRepo,
		Logger:   deps.Logger,
	})
	uploadSvc := upload.NewService(deps.S3Store)

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(authSvc, otpSvc, userSvc, cookies)
	itemH := handler.NewItemHandler(itemSvc)
	uploadH := handler.NewUploadHandler(uploadSvc)

	r.Get("/health", healthH.Check)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			// ── Public routes (no auth) ──────────────────────────────────
			r.With(sensitiveRL.Limit).Post("/register", authH.Register)
			r.With(sensitiveRL.Limit).Post("/login", authH.Login)
			r.With(sensitiveRL.Limit).Post("/send-otp", authH.SendOTP)
			r.With(sensitiveRL.Limit).Post("/verify-otp", authH.VerifyOTP)
			r.Post("/refresh-token", authH.Refresh)

			// ── Authenticated routes ─────────────────────────────────────
			r.Group(func(r chi.Router) {
				r.Use(authMw)
				r.Post("/logout", authH.Logout)
				r.Get("/me", authH.Me)
				r.Patch("/profile", authH.UpdateProfile)
				r.Patch("/change-password", authH.ChangePassword)
			})
		})

		r.Route("/items", func(r chi.Router) {
			r.Get("/", itemH.List)
			r.Get("/seller/{id}", itemH.BySeller)

			r.Group(func(r chi.Router) {
				r.Use(authMw)
				r.Post("/", itemH.Create)
				r.Get("/user/my-items", itemH.Mine)
			})

			// {id} routes come after the fixed segments above.
			r.Get("/{id}", itemH.Get)
			r.Group(func(r chi.Router) {
				r.Use(authMw)
				r.Patch("/{id}", itemH.Update)
				r.Patch("/{id}/sold", itemH.MarkSold)
				r.Delete("/{id}", itemH.Delete)
			})
		})

		r.Route("/upload", func(r chi.Router) {
			r.Use(authMw)
			r.Post("/images", uploadH.Images)
			r.Delete("/images", uploadH.DeleteImage)
		})
	})

	return r
}
