package router

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	acchandler "account-service/internal/handler/acc"
	authhandler "account-service/internal/handler/auth"
	"account-service/internal/middleware"
)

func SetupRoutes(
	r chi.Router,
	accH *acchandler.AccountHandler,
	authH *authhandler.AuthHandler,
	auth *middleware.AuthMiddleware,
) chi.Router {
	// ---- Global Middleware ----
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Route("/api", func(r chi.Router) {

		// ---------------- Account mutations ----------------
		r.Post("/account-bio-update", accH.HandleBioUpdate)
		r.Post("/account-details-update", accH.HandleDetailsUpdate)
		r.Post("/account-name-update", accH.HandleNameUpdate)
		r.Post("/profile-picture-upload", accH.HandlePictureUpload)
		r.Post("/profile-picture-delete", accH.HandlePictureDelete)

		// ---------------- Auth ----------------
		r.Route("/auth", func(r chi.Router) {
			r.Post("/otp/send", authH.HandleSendOTP)
			r.Post("/otp/verify", authH.HandleVerifyOTP)

			r.Group(func(pr chi.Router) {
				pr.Use(auth.Require())
				pr.Post("/account", authH.HandleCreateAccount)
				pr.Get("/me", authH.HandleMe)
				pr.Post("/logout", authH.HandleLogout)
			})
		})
	})

	return r
}
