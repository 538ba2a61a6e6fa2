package http

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"sharesphere-backend/internal/errors"
	"sharesphere-backend/internal/logger"
	"sharesphere-backend/internal/repository"
	"sharesphere-backend/internal/security"
)

type contextKey string

const claimsKey contextKey = "claims"

// claimsFrom returns the authenticated claims stored by authMiddleware.
func claimsFrom(ctx context.Context) *security.UserClaims {
	claims, _ := ctx.Value(claimsKey).(*security.UserClaims)
	return claims
}

func userIDFrom(ctx context.Context) string {
	if claims := claimsFrom(ctx); claims != nil {
		return claims.UserID
	}
	return ""
}

// authMiddleware validates the bearer token and stores its claims on the
// request context. Websocket clients cannot set headers, so a token query
// parameter is accepted as a fallback.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := ""
		if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
			token = strings.TrimPrefix(h, "Bearer ")
		} else if q := r.URL.Query().Get("token"); q != "" {
			token = q
		}
		if token == "" {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: errorBody{Code: "UNAUTHENTICATED", Message: "missing credentials"}})
			return
		}

		claims, err := s.tokens.ValidateToken(token)
		if err != nil || claims.Type != security.TokenTypeAccess {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: errorBody{Code: "UNAUTHENTICATED", Message: "invalid or expired token"}})
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// banGateMiddleware turns banned accounts read only: they may browse and
// inspect their own records but every mutating request is refused.
func banGateMiddleware(userRepo repository.UserRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}

			// Paying off a pending penalty is the one write a banned account
			// keeps: it is how the debt gets settled.
			if r.Method == http.MethodPost &&
				strings.HasPrefix(r.URL.Path, "/api/tokens/penalties/") &&
				strings.HasSuffix(r.URL.Path, "/pay") {
				next.ServeHTTP(w, r)
				return
			}

			userID := userIDFrom(r.Context())
			user, err := userRepo.GetByID(r.Context(), userID)
			if err != nil {
				writeError(w, r, err)
				return
			}
			if user.IsBanned {
				writeError(w, r, errors.Authorization("account is restricted to read-only access"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// adminMiddleware restricts a route to accounts carrying the admin claim.
func adminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := claimsFrom(r.Context())
		if claims == nil || !claims.IsAdmin {
			writeError(w, r, errors.Authorization("administrator access required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware emits one line per request.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("Request handled",
			"method", r.Method, "path", r.URL.Path, "status", rec.status, "duration_ms", time.Since(start).Milliseconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status  int
	written bool
}

func (r *statusRecorder) WriteHeader(status int) {
	if !r.written {
		r.status = status
		r.written = true
	}
	r.ResponseWriter.WriteHeader(status)
}

// Hijack keeps websocket upgrades working behind the logging wrapper.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	return h.Hijack()
}
