// Package admin provides the console pages: login, navigation generated
// from the user's routes, the built-in views and SSE notifications.
package admin

import (
	"github.com/go-chi/chi/v5"
)

// SetupRoutes configures routes for the admin feature.
func SetupRoutes(router chi.Router, deps Deps) error {
	handlers := NewHandlers(deps)

	router.Get("/login", handlers.LoginPage)
	router.Post("/login", handlers.Login)
	router.Post("/logout", handlers.Logout)
	router.Get("/401", handlers.Unauthorized)

	router.Group(func(r chi.Router) {
		r.Use(handlers.RequireLogin)
		r.Get("/", handlers.Home)
		r.Get("/routes.json", handlers.RoutesJSON)
		r.Get("/view/*", handlers.View)
		r.Get("/notifications", handlers.Notifications)
	})

	return nil
}
