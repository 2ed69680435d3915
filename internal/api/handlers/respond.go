package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"
	apiContext "taskhub/internal/api/context"
	"taskhub/internal/platform/auth"
	"taskhub/internal/platform/models"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func param(r *http.Request, name string) string {
	ps, ok := r.Context().Value(apiContext.Params).(httprouter.Params)
	if !ok {
		return ""
	}
	return ps.ByName(name)
}

func currentClaims(r *http.Request) *auth.Claims {
	claims, _ := r.Context().Value(apiContext.Claims).(*auth.Claims)
	return claims
}

func currentUser(r *http.Request) *models.User {
	user, _ := r.Context().Value(apiContext.User).(*models.User)
	return user
}

func currentOrg(r *http.Request) *models.Organization {
	org, _ := r.Context().Value(apiContext.Org).(*models.Organization)
	return org
}
