package sessions

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Validator implements auth.TokenValidator: it checks a cookie's token
// against the session records on each request, so logout and TTL expiry
// take effect immediately.
type Validator struct {
	store  *Store
	logger *zap.Logger
}

// NewValidator creates a TokenValidator backed by the given store.
func NewValidator(store *Store, logger *zap.Logger) *Validator {
	return &Validator{store: store, logger: logger}
}

// ValidToken reports whether the token has a live session record. An
// empty token or a lookup failure counts as invalid.
func (v *Validator) ValidToken(ctx context.Context, token string) bool {
	if token == "" {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if _, err := v.store.GetByToken(ctx, token); err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			v.logger.Error("session lookup failed", zap.Error(err))
		}
		return false
	}
	return true
}
