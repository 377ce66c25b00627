package http

import (
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/ess-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/ess-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/ess-backend-go/internal/handler/http/response"
)

// requireActor writes 401 and returns false when the request carries no actor.
func requireActor(w http.ResponseWriter, r *http.Request) (user.Actor, bool) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return user.Actor{}, false
	}
	return actor, true
}

// getIntQueryParam gets an int query parameter with a default value
func getIntQueryParam(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}
	intVal, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return intVal
}

// getBoolQueryParam gets a bool query parameter with a default value
func getBoolQueryParam(r *http.Request, key string, defaultVal bool) bool {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}
	return val == "true" || val == "1"
}

func getOptionalQueryParam(r *http.Request, key string) *string {
	val := r.URL.Query().Get(key)
	if val == "" {
		return nil
	}
	return &val
}
