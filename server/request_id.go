package server

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

const (
	HeaderRequestID = "X-Request-Id"

	ContextKeyRequestID ContextKey = "request_id"
)

// RequestIDMiddleware keeps an incoming request id or assigns a new one, and echoes it back.
func (s *Server) RequestIDMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, requestID)
		ctx := context.WithValue(r.Context(), ContextKeyRequestID, requestID)
		next(w, r.WithContext(ctx))
	}
}

func requestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(ContextKeyRequestID).(string)
	return id
}
