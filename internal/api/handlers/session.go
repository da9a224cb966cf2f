package handlers

import (
	"context"

	"github.com/google/uuid"

	"ledger-service/internal/models"
)

// Session identifies the authenticated caller of a request.
type Session struct {
	UserID   uuid.UUID
	Username string
	Role     models.Role
}

type sessionKey struct{}

func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

func SessionFrom(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(Session)
	return s, ok
}
