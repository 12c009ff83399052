package api

import (
	"net/http"
)

func MethodNotAllowedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteError(r.Context(), w, http.StatusMethodNotAllowed, "This method is not allowed", nil)
	}
}

func NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteError(r.Context(), w, http.StatusNotFound, "This endpoint does not exist", nil)
	}
}
