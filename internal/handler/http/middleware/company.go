package middleware

import (
	"context"
	"net/http"

	"github.com/cmlabs-hris/ess-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/ess-backend-go/internal/handler/http/response"
	"github.com/go-chi/jwtauth/v5"
)

type actorKey struct{}

// RequireCompany turns the access token claims into a user.Actor and
// rejects tokens that are not bound to a company.
func RequireCompany(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.HandleError(w, user.ErrInvalidToken)
			return
		}

		actor, ok := actorFromClaims(claims)
		if !ok {
			response.HandleError(w, user.ErrInvalidToken)
			return
		}
		if actor.CompanyID == "" {
			response.HandleError(w, user.ErrCompanyIDRequired)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
	})
}

func actorFromClaims(claims map[string]interface{}) (user.Actor, bool) {
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return user.Actor{}, false
	}
	role, ok := claims["role"].(string)
	if !ok {
		return user.Actor{}, false
	}

	actor := user.Actor{UserID: userID, Role: user.Role(role)}
	// employee_id is null for admins without an employee record
	if employeeID, ok := claims["employee_id"].(string); ok {
		actor.EmployeeID = employeeID
	}
	if companyID, ok := claims["company_id"].(string); ok {
		actor.CompanyID = companyID
	}
	return actor, true
}

// WithActor stores actor on ctx.
func WithActor(ctx context.Context, actor user.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the actor placed by RequireCompany.
func ActorFromContext(ctx context.Context) (user.Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(user.Actor)
	return actor, ok
}
