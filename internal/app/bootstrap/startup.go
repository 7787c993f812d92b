package bootstrap

import (
	"context"
	"errors"

	userstore "github.com/driveyard/driveyard/internal/app/store/users"
	"github.com/driveyard/driveyard/internal/app/system/authutil"
	"github.com/driveyard/driveyard/internal/app/system/indexes"
	"go.uber.org/zap"
)

// EnsureSchema creates the database indexes. Runs after ConnectDB and
// before the HTTP handler is built.
func EnsureSchema(ctx context.Context, deps DBDeps, logger *zap.Logger) error {
	logger.Info("ensuring database indexes")
	if err := indexes.EnsureAll(ctx, deps.MongoDatabase); err != nil {
		logger.Error("failed to ensure indexes", zap.Error(err))
		return err
	}
	logger.Info("database schema ensured successfully")
	return nil
}

// Startup runs one-time application initialization: seeding the
// configured initial user if it does not exist yet.
func Startup(ctx context.Context, cfg *Config, deps DBDeps, logger *zap.Logger) error {
	if cfg.Seed.Email == "" {
		return nil
	}
	return ensureSeedUser(ctx, cfg, deps, logger)
}

// ensureSeedUser creates the configured initial user. An existing user
// with the same email is left untouched.
func ensureSeedUser(ctx context.Context, cfg *Config, deps DBDeps, logger *zap.Logger) error {
	store := userstore.New(deps.MongoDatabase)

	if err := authutil.ValidatePassword(cfg.Seed.Password); err != nil {
		return err
	}
	hash, err := authutil.HashPassword(cfg.Seed.Password)
	if err != nil {
		return err
	}

	name := cfg.Seed.Name
	if name == "" {
		name = "Admin"
	}

	u, err := store.Create(ctx, userstore.CreateInput{
		Email:        cfg.Seed.Email,
		FullName:     name,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, userstore.ErrDuplicateEmail) {
			logger.Debug("seed user already exists", zap.String("email", cfg.Seed.Email))
			return nil
		}
		return err
	}

	logger.Info("created seed user",
		zap.String("email", cfg.Seed.Email),
		zap.String("user_id", u.ID.Hex()))
	return nil
}
