package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/MaatFonseca/api-token-sale/pkg/logger"
)

// AdminClaims are the JWT claims carried by administrator tokens.
type AdminClaims struct {
	Name string `json:"name,omitempty"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

const adminRole = "admin"

// AdminAuth guards the administrator endpoints with HS256 bearer tokens
// signed by the shared secret.
type AdminAuth struct {
	secret []byte
	log    *logger.Logger
}

// NewAdminAuth creates the middleware for the given signing secret.
func NewAdminAuth(secret string, log *logger.Logger) *AdminAuth {
	if log == nil {
		log = logger.NewDefault("adminauth")
	}
	return &AdminAuth{secret: []byte(secret), log: log}
}

// Handler returns the authentication middleware handler.
func (a *AdminAuth) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(a.secret) == 0 {
			jsonError(w, "admin access disabled", http.StatusForbidden)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			jsonError(w, "missing authorization", http.StatusUnauthorized)
			return
		}

		if err := a.validate(strings.TrimPrefix(authHeader, "Bearer ")); err != nil {
			a.log.WithError(err).Warn("admin token rejected")
			jsonError(w, "invalid token", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (a *AdminAuth) validate(tokenString string) error {
	token, err := jwt.ParseWithClaims(tokenString, &AdminClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return a.secret, nil
	})
	if err != nil {
		return err
	}

	claims, ok := token.Claims.(*AdminClaims)
	if !ok || !token.Valid {
		return fmt.Errorf("invalid token")
	}
	if claims.Role != adminRole {
		return fmt.Errorf("role %q is not an administrator", claims.Role)
	}
	return nil
}

// SignAdminToken mints an administrator token for the given subject, valid for
// the given duration. Used by the admin-token command and by tests.
func SignAdminToken(secret, subject string, ttl time.Duration) (string, error) {
	claims := AdminClaims{
		Name: subject,
		Role: adminRole,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
