// internal/inspirations/routes.go
package inspirations

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/oluseyi-dev/inspira-backend/internal/identity"
)

func RegisterRoutes(router *mux.Router, handler *Handler, mw *identity.Middleware) {
	api := router.PathPrefix("/api/v1").Subrouter()

	// Public reads resolve identity when a token is present
	api.Handle("/inspirations", mw.Optional(http.HandlerFunc(handler.List))).Methods("GET")
	api.Handle("/inspirations/{id}", mw.Optional(http.HandlerFunc(handler.Get))).Methods("GET")
	api.Handle("/inspirations/{id}/shares", mw.Optional(http.HandlerFunc(handler.ListShares))).Methods("GET")

	// Mutations require authentication
	api.Handle("/inspirations", mw.Require(http.HandlerFunc(handler.Create))).Methods("POST")
	api.Handle("/inspirations/{id}", mw.Require(http.HandlerFunc(handler.Delete))).Methods("DELETE")
	api.Handle("/inspirations/{id}/like", mw.Require(http.HandlerFunc(handler.ToggleLike))).Methods("POST")
	api.Handle("/inspirations/{id}/share", mw.Require(http.HandlerFunc(handler.Reshare))).Methods("POST")
}
