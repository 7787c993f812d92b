// Package account provides login, logout, and the current-user profile
// with storage usage.
//
// Endpoints:
//   - POST /api/auth/login  - Authenticate and establish a session
//   - POST /api/auth/logout - End the current session
//   - GET  /api/user        - Current user profile and storage usage
package account

import (
	"errors"
	"net/http"
	"time"

	"github.com/driveyard/driveyard/internal/app/store/file"
	"github.com/driveyard/driveyard/internal/app/store/sessions"
	userstore "github.com/driveyard/driveyard/internal/app/store/users"
	"github.com/driveyard/driveyard/internal/app/system/apperr"
	"github.com/driveyard/driveyard/internal/app/system/auth"
	"github.com/driveyard/driveyard/internal/app/system/authutil"
	"github.com/driveyard/driveyard/internal/app/system/jsonutil"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler handles account API requests.
type Handler struct {
	users        *userstore.Store
	sessions     *sessions.Store
	files        *file.Store
	sessionMgr   *auth.SessionManager
	logger       *zap.Logger
	defaultQuota int64
	sessionTTL   time.Duration
}

// NewHandler creates a new account handler. sessionTTL bounds the
// server-side session record and should match the cookie max age.
func NewHandler(users *userstore.Store, sessions *sessions.Store, files *file.Store, sessionMgr *auth.SessionManager, logger *zap.Logger, defaultQuota int64, sessionTTL time.Duration) *Handler {
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	return &Handler{
		users:        users,
		sessions:     sessions,
		files:        files,
		sessionMgr:   sessionMgr,
		logger:       logger,
		defaultQuota: defaultQuota,
		sessionTTL:   sessionTTL,
	}
}

// AuthRoutes returns the login/logout router for mounting at /api/auth.
func AuthRoutes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Post("/login", h.LoginHandler)
	r.Post("/logout", h.LogoutHandler)
	return r
}

// LoginHandler handles POST /api/auth/login.
//
// Request body: {"email": "...", "password": "..."}. Wrong email and
// wrong password get the same answer so accounts are not enumerable.
func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := jsonutil.Decode(r, &req); err != nil {
		jsonutil.WriteError(w, apperr.Validation("invalid JSON payload"))
		return
	}
	if req.Email == "" || req.Password == "" {
		jsonutil.WriteError(w, apperr.Validation("email and password are required"))
		return
	}

	user, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			h.logger.Error("failed to load user", zap.Error(err))
		}
		jsonutil.Unauthorized(w, "invalid email or password")
		return
	}
	if !authutil.CheckPassword(req.Password, user.PasswordHash) {
		jsonutil.Unauthorized(w, "invalid email or password")
		return
	}

	token, err := auth.GenerateSessionToken()
	if err != nil {
		h.logger.Error("failed to generate session token", zap.Error(err))
		jsonutil.WriteError(w, apperr.Internal("login failed"))
		return
	}

	if _, err := h.sessions.Create(r.Context(), sessions.CreateInput{
		Token:     token,
		UserID:    user.ID,
		IPAddress: r.RemoteAddr,
		UserAgent: r.UserAgent(),
		TTL:       h.sessionTTL,
	}); err != nil {
		h.logger.Error("failed to record session", zap.Error(err))
		jsonutil.WriteError(w, apperr.Internal("login failed"))
		return
	}

	if err := h.sessionMgr.CreateSession(w, r, user.ID, token); err != nil {
		h.logger.Error("failed to create session cookie", zap.Error(err))
		jsonutil.WriteError(w, apperr.Internal("login failed"))
		return
	}

	h.logger.Info("user logged in", zap.String("user_id", user.ID.Hex()))

	jsonutil.OK(w, map[string]any{
		"id":       user.ID.Hex(),
		"email":    user.Email,
		"fullName": user.FullName,
	})
}

// LogoutHandler handles POST /api/auth/logout. Logging out when not
// logged in is a no-op success.
func (h *Handler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if token := h.sessionMgr.GetSessionToken(r); token != "" {
		if err := h.sessions.DeleteByToken(r.Context(), token); err != nil {
			h.logger.Warn("failed to delete session record", zap.Error(err))
		}
	}
	h.sessionMgr.DestroySession(w, r)
	jsonutil.NoContent(w)
}

// UserHandler handles GET /api/user. Requires an authenticated session.
func (h *Handler) UserHandler(w http.ResponseWriter, r *http.Request) {
	su, ok := auth.CurrentUser(r)
	if !ok {
		jsonutil.Unauthorized(w, "authentication required")
		return
	}

	user, err := h.users.GetByID(r.Context(), su.UserID())
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			jsonutil.WriteError(w, apperr.NotFound("user"))
			return
		}
		h.logger.Error("failed to load user", zap.Error(err))
		jsonutil.WriteError(w, apperr.Internal("failed to load profile"))
		return
	}

	used, err := h.files.StorageUsed(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("failed to compute storage usage", zap.Error(err))
		jsonutil.WriteError(w, apperr.Internal("failed to load profile"))
		return
	}

	total := user.StorageLimit
	if total <= 0 {
		total = h.defaultQuota
	}
	var pct float64
	if total > 0 {
		pct = float64(used) / float64(total) * 100
	}

	jsonutil.OK(w, map[string]any{
		"id":                user.ID.Hex(),
		"email":             user.Email,
		"fullName":          user.FullName,
		"storageUsed":       used,
		"storageTotal":      total,
		"storagePercentage": pct,
	})
}
