package middleware

import (
	"context"
	"encoding/json"
	"net/http"
)

const userKey key = 1

// RequireUser extracts the requester identity set by the upstream session
// layer. Everything behind it can assume a non-empty user id in the context.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-User-ID")
		if id == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"error": map[string]string{
					"code":    "UNAUTHORIZED",
					"message": "Missing user identity",
				},
			})
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), id)))
	})
}

func GetUserID(ctx context.Context) string {
	if id, ok := ctx.Value(userKey).(string); ok {
		return id
	}
	return ""
}

func WithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userKey, id)
}
