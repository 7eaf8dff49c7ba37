package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const adminSubjectKey contextKey = "admin_subject"

type adminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// RequireAuth validates the Bearer token on admin endpoints. Tokens are
// HS256, signed with ADMIN_JWT_SECRET, and must carry role "admin". The
// authenticated subject becomes the actor recorded on cancellation
// decisions.
func (h *Handlers) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := h.loggerFromContext(r.Context())

		token := bearerToken(r)
		if token == "" {
			h.respondError(w, r, http.StatusUnauthorized, "missing bearer token")
			return
		}

		claims := &adminClaims{}
		parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(h.config.AdminJWTSecret), nil
		}, jwt.WithValidMethods([]string{"HS256"}))
		if err != nil || !parsed.Valid {
			logger.Warn("rejected admin token", "error", err)
			h.respondError(w, r, http.StatusUnauthorized, "invalid token")
			return
		}

		if claims.Role != "admin" {
			logger.Warn("token without admin role", "role", claims.Role, "subject", claims.Subject)
			h.respondError(w, r, http.StatusForbidden, "admin role required")
			return
		}

		ctx := context.WithValue(r.Context(), adminSubjectKey, claims.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// adminSubjectFromContext returns the subject of the authenticated admin
// token, or "admin" when the request reached the handler without one.
func adminSubjectFromContext(ctx context.Context) string {
	if subject, ok := ctx.Value(adminSubjectKey).(string); ok && subject != "" {
		return subject
	}
	return "admin"
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
