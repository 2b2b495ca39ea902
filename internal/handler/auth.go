package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"printd/internal/model"
	"printd/internal/service"
)

// UserLookup resolves operator credentials against the external
// platform's directory.
type UserLookup interface {
	LookupUser(ctx context.Context, phone, password string) (*model.Identity, error)
}

// LoginHandler verifies the operator against the platform and issues a
// bearer token for the protected routes.
func LoginHandler(platform UserLookup, secret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		phone := r.URL.Query().Get("phone")
		password := r.URL.Query().Get("password")
		if phone == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing 'phone' in query parameters"})
			return
		}
		if password == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing 'password' in query parameters"})
			return
		}

		identity, err := platform.LookupUser(r.Context(), phone, password)
		if err != nil {
			if errors.Is(err, service.ErrUserNotFound) {
				writeJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})
				return
			}
			slog.Error("user lookup failed", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"name": identity.Name,
			"exp":  jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
		})

		tokenString, err := token.SignedString([]byte(secret))
		if err != nil {
			http.Error(w, "token generation failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Authorization", "Bearer "+tokenString)
		writeJSON(w, http.StatusOK, map[string]string{"name": identity.Name})
	}
}
