package bootstrap

import (
	"net/http"
	"time"

	accountfeature "github.com/driveyard/driveyard/internal/app/features/account"
	filesfeature "github.com/driveyard/driveyard/internal/app/features/files"
	foldersfeature "github.com/driveyard/driveyard/internal/app/features/folders"
	healthfeature "github.com/driveyard/driveyard/internal/app/features/health"
	filestore "github.com/driveyard/driveyard/internal/app/store/file"
	folderstore "github.com/driveyard/driveyard/internal/app/store/folder"
	sessionstore "github.com/driveyard/driveyard/internal/app/store/sessions"
	userstore "github.com/driveyard/driveyard/internal/app/store/users"
	"github.com/driveyard/driveyard/internal/app/system/apicors"
	"github.com/driveyard/driveyard/internal/app/system/auth"
	"github.com/driveyard/driveyard/internal/app/system/retry"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler.
//
// Route map:
//   - /api/auth/*   - login/logout (no auth required)
//   - /api/user     - current user profile (session required)
//   - /api/files/*  - file API (session required)
//   - /api/folders/* - folder API (session required)
//   - /healthz/*    - health probes (no auth)
func BuildHandler(cfg *Config, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	secure := cfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(cfg.Session.Key, cfg.Session.Name, cfg.Session.Domain, cfg.Session.MaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	db := deps.MongoDatabase
	files := filestore.New(db)
	folders := folderstore.New(db)
	usersSt := userstore.New(db)
	sessionsSt := sessionstore.New(db)

	// Fresh user data is fetched on each request so deleted accounts
	// lose access immediately, and the cookie's token is cross-checked
	// against the session records so logout revokes the cookie.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(db, logger))
	sessionMgr.SetTokenValidator(sessionstore.NewValidator(sessionsSt, logger))

	fileHandler := filesfeature.NewHandler(files, folders, usersSt, deps.Blobs, logger, filesfeature.Config{
		MaxUploadFiles: cfg.Upload.MaxFiles,
		MaxFileSize:    cfg.Upload.MaxFileSize,
		DefaultQuota:   cfg.Storage.DefaultQuota,
		PresignExpiry:  cfg.Storage.PresignExpiry,
		Retry: retry.Policy{
			MaxAttempts: cfg.Upload.RetryAttempts,
			BaseDelay:   cfg.Upload.RetryDelay,
		},
	})
	folderHandler := foldersfeature.NewHandler(folders, files, deps.Blobs, logger, foldersfeature.ParsePolicy(cfg.FolderDeletePolicy))
	accountHandler := accountfeature.NewHandler(usersSt, sessionsSt, files, sessionMgr, logger, cfg.Storage.DefaultQuota, cfg.Session.MaxAge)
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(120 * time.Second))

	if len(cfg.CORSOrigins) > 0 {
		r.Use(apicors.MiddlewareWithOrigins(cfg.CORSOrigins...))
	}

	r.Mount("/healthz", healthfeature.Routes(healthHandler))

	r.Route("/api", func(api chi.Router) {
		api.Use(sessionMgr.LoadSessionUser)

		api.Mount("/auth", accountfeature.AuthRoutes(accountHandler))

		api.Group(func(protected chi.Router) {
			protected.Use(sessionMgr.RequireAuth)
			protected.Get("/user", accountHandler.UserHandler)
			protected.Mount("/files", filesfeature.Routes(fileHandler))
			protected.Mount("/folders", foldersfeature.Routes(folderHandler))
		})
	})

	return r, nil
}
