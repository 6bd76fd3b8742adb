package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/koreline/koreline-hub/internal/domain/profile"
)

// ══════════════════════════════════════════════════════════════════════════════
// TOKEN AUTHENTICATION
// Requests carry "Authorization: Token <key>" where the key is an opaque
// token issued at registration or login. The gate resolves it to a profile
// and stores the profile in the request context; everything downstream
// trusts that profile as the actor.
// ══════════════════════════════════════════════════════════════════════════════

const authScheme = "Token"

const contextKeyProfile contextKey = "profile"

// authed wraps a handler with the token authentication gate.
func (s *Server) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing or malformed Authorization header")
			return
		}

		profileID, err := s.deps.Tokens.GetProfileID(r.Context(), token)
		if err != nil {
			writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Token not recognized")
			return
		}

		p, err := s.deps.Profiles.GetByID(r.Context(), profileID)
		if err != nil {
			// A token pointing at a deleted profile is as good as no token.
			writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Token not recognized")
			return
		}

		ctx := context.WithValue(r.Context(), contextKeyProfile, p)
		next(w, r.WithContext(ctx))
	}
}

// bearerToken extracts the opaque token from the Authorization header.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], authScheme) {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}
	return token, true
}

// currentProfile returns the authenticated profile from the context.
// Handlers behind the gate may assume it is present.
func currentProfile(ctx context.Context) *profile.Profile {
	p, _ := ctx.Value(contextKeyProfile).(*profile.Profile)
	return p
}
