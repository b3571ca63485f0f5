package auth

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/redmonkez12/devconnector/internal/httputil"
	"github.com/redmonkez12/devconnector/internal/logging"
	"github.com/redmonkez12/devconnector/internal/user"
)

// RateLimiter throttles unauthenticated requests per client IP
type RateLimiter interface {
	AllowIPWithPurpose(ctx context.Context, ip, purpose string) (bool, error)
}

// Handler contains HTTP handlers for authentication endpoints
type Handler struct {
	service     *Service
	rateLimiter RateLimiter
	logger      *logging.Logger
}

func NewHandler(service *Service, rateLimiter RateLimiter, logger *logging.Logger) *Handler {
	return &Handler{
		service:     service,
		rateLimiter: rateLimiter,
		logger:      logger,
	}
}

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Name     string `json:"name" validate:"required" msg:"Name is required"`
	Email    string `json:"email" validate:"required,email" msg:"Please include a valid email"`
	Password string `json:"password" validate:"min=6" msg:"Please enter a password with 6 or more characters"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email" msg:"Please include a valid email"`
	Password string `json:"password" validate:"required" msg:"Password is required"`
}

// TokenResponse carries a freshly issued bearer token
type TokenResponse struct {
	Token string `json:"token"`
}

// Register handles user registration
// @Summary      Register a new user
// @Description  Create a user account and return a bearer token
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body RegisterRequest true "Registration details"
// @Success      200 {object} TokenResponse
// @Failure      400 {object} httputil.ErrorResponse "Validation error or user already exists"
// @Failure      429 {object} httputil.ErrorResponse "Too many requests"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /api/users [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	if !h.allow(r, logger, "register") {
		httputil.RespondErrorWithCode(w, "too many requests, please try again later", httputil.CodeTooManyRequests, http.StatusTooManyRequests)
		return
	}

	var req RegisterRequest
	if err := httputil.Bind(w, r, &req); err != nil {
		logger.Warn("invalid registration request", "error", err.Error())
		return
	}

	logger = logger.WithFields(map[string]any{"email": normalizeEmail(req.Email)})

	token, err := h.service.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrDuplicateEmail):
			logger.Warn("registration failed: email already exists")
			httputil.RespondErrorWithCode(w, "User already exists", httputil.CodeUserAlreadyExists, http.StatusBadRequest)
		case errors.Is(err, ErrNameRequired):
			httputil.RespondValidationError(w, httputil.NewValidationError("name", "Name is required"))
		case errors.Is(err, ErrEmailRequired):
			httputil.RespondValidationError(w, httputil.NewValidationError("email", "Please include a valid email"))
		case errors.Is(err, ErrPasswordTooShort):
			httputil.RespondValidationError(w, httputil.NewValidationError("password", "Please enter a password with 6 or more characters"))
		default:
			logger.Error("registration failed: internal error", "error", err.Error())
			httputil.RespondInternalError(w, "Server error")
		}
		return
	}

	logger.Info("user registered successfully")

	httputil.RespondJSON(w, TokenResponse{Token: token}, http.StatusOK)
}

// Login handles user login
// @Summary      Authenticate user
// @Description  Exchange email and password for a bearer token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login credentials"
// @Success      200 {object} TokenResponse
// @Failure      400 {object} httputil.ErrorResponse "Validation error or invalid credentials"
// @Failure      429 {object} httputil.ErrorResponse "Too many requests"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /api/auth [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	if !h.allow(r, logger, "login") {
		httputil.RespondErrorWithCode(w, "too many requests, please try again later", httputil.CodeTooManyRequests, http.StatusTooManyRequests)
		return
	}

	var req LoginRequest
	if err := httputil.Bind(w, r, &req); err != nil {
		logger.Warn("invalid login request", "error", err.Error())
		return
	}

	logger = logger.WithFields(map[string]any{"email": normalizeEmail(req.Email)})

	token, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			logger.Warn("login failed: invalid credentials")
			httputil.RespondErrorWithCode(w, "Invalid email or password", httputil.CodeInvalidCredentials, http.StatusBadRequest)
			return
		}
		logger.Error("login failed: internal error", "error", err.Error())
		httputil.RespondInternalError(w, "Server error")
		return
	}

	logger.Info("user logged in successfully")

	httputil.RespondJSON(w, TokenResponse{Token: token}, http.StatusOK)
}

// Me returns the authenticated user
// @Summary      Current user
// @Description  Return the user the bearer token was issued to, without the password
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} user.User
// @Failure      401 {object} httputil.ErrorResponse "Missing or invalid token"
// @Failure      404 {object} httputil.ErrorResponse "User no longer exists"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /api/auth [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "no token, authorization denied", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	u, err := h.service.GetCurrentUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			logger.Warn("current user no longer exists", "user_id", userID)
			httputil.RespondErrorWithCode(w, "User not found", httputil.CodeUserNotFound, http.StatusNotFound)
			return
		}
		logger.Error("failed to load current user", "user_id", userID, "error", err.Error())
		httputil.RespondInternalError(w, "Server error")
		return
	}

	httputil.RespondJSON(w, u, http.StatusOK)
}

// allow consults the rate limiter; limiter failures let the request through
func (h *Handler) allow(r *http.Request, logger *logging.Logger, purpose string) bool {
	ip := getClientIP(r)

	ok, err := h.rateLimiter.AllowIPWithPurpose(r.Context(), ip, purpose)
	if err != nil {
		logger.Error("failed to check IP rate limit", "error", err.Error())
		return true
	}
	if !ok {
		logger.Warn("IP rate limit exceeded", "ip", ip, "purpose", purpose)
	}
	return ok
}

// getClientIP keys clients on the connection peer. Forwarding headers are
// only honored upstream, by the router's trusted-proxy RealIP middleware.
func getClientIP(r *http.Request) string {
	// RemoteAddr format is "IP:port"
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
