// internal/comments/routes.go
package comments

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/oluseyi-dev/inspira-backend/internal/identity"
)

func RegisterRoutes(router *mux.Router, handler *Handler, mw *identity.Middleware) {
	api := router.PathPrefix("/api/v1").Subrouter()

	api.Handle("/inspiration-comments/{inspirationId:[0-9]+}", mw.Optional(http.HandlerFunc(handler.List))).Methods("GET")
	api.Handle("/inspiration-comments/{commentId:[0-9]+}/replies", mw.Optional(http.HandlerFunc(handler.ListReplies))).Methods("GET")

	api.Handle("/inspiration-comments", mw.Require(http.HandlerFunc(handler.Create))).Methods("POST")
	api.Handle("/inspiration-comments/{id:[0-9]+}", mw.Require(http.HandlerFunc(handler.Edit))).Methods("PUT")
	api.Handle("/inspiration-comments/{id:[0-9]+}", mw.Require(http.HandlerFunc(handler.Delete))).Methods("DELETE")
	api.Handle("/inspiration-comments/{id:[0-9]+}/like", mw.Require(http.HandlerFunc(handler.ToggleLike))).Methods("POST")
}
