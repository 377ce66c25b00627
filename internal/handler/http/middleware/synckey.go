package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/cmlabs-hris/ess-backend-go/internal/domain/erpsync"
	"github.com/cmlabs-hris/ess-backend-go/internal/handler/http/response"
)

type peerKey struct{}

// SyncKeyRequired authenticates peers calling the inbound sync API with
// "Authorization: token <key>:<secret>".
func SyncKeyRequired(receiver erpsync.Receiver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key, secret, ok := parseTokenAuth(r.Header.Get("Authorization"))
			if !ok {
				response.HandleError(w, erpsync.ErrInvalidAPIKey)
				return
			}

			peer, err := receiver.Authenticate(r.Context(), key, secret)
			if err != nil {
				response.HandleError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), peerKey{}, peer)))
		})
	}
}

// PeerFromContext returns the peer authenticated by SyncKeyRequired.
func PeerFromContext(ctx context.Context) (erpsync.Peer, bool) {
	peer, ok := ctx.Value(peerKey{}).(erpsync.Peer)
	return peer, ok
}

func parseTokenAuth(header string) (key, secret string, ok bool) {
	scheme, credentials, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "token") {
		return "", "", false
	}
	key, secret, found = strings.Cut(strings.TrimSpace(credentials), ":")
	if !found || key == "" || secret == "" {
		return "", "", false
	}
	return key, secret, true
}
