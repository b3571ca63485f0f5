package profile

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/redmonkez12/devconnector/internal/auth"
	"github.com/redmonkez12/devconnector/internal/httputil"
	"github.com/redmonkez12/devconnector/internal/logging"
)

// Handler contains HTTP handlers for profile endpoints
type Handler struct {
	service *Service
	logger  *logging.Logger
}

func NewHandler(service *Service, logger *logging.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// UpsertRequest is the create-or-update profile body
type UpsertRequest struct {
	Status         string  `json:"status" validate:"required" msg:"Status is required"`
	Skills         string  `json:"skills" validate:"required" msg:"Skills are required"`
	Company        *string `json:"company,omitempty"`
	Website        *string `json:"website,omitempty"`
	Location       *string `json:"location,omitempty"`
	Bio            *string `json:"bio,omitempty"`
	GithubUsername *string `json:"githubusername,omitempty"`
	Youtube        *string `json:"youtube,omitempty"`
	Twitter        *string `json:"twitter,omitempty"`
	Facebook       *string `json:"facebook,omitempty"`
	Linkedin       *string `json:"linkedin,omitempty"`
	Instagram      *string `json:"instagram,omitempty"`
}

func (req UpsertRequest) patch() Patch {
	return Patch{
		Company:        req.Company,
		Website:        req.Website,
		Location:       req.Location,
		Bio:            req.Bio,
		Status:         &req.Status,
		GithubUsername: req.GithubUsername,
		Skills:         &req.Skills,
		Youtube:        req.Youtube,
		Twitter:        req.Twitter,
		Facebook:       req.Facebook,
		Linkedin:       req.Linkedin,
		Instagram:      req.Instagram,
	}
}

// ExperienceRequest is the body of PUT /api/profile/experience
type ExperienceRequest struct {
	Title       string `json:"title" validate:"required" msg:"Title is required"`
	Company     string `json:"company" validate:"required" msg:"Company is required"`
	Location    string `json:"location,omitempty"`
	From        string `json:"from" validate:"required" msg:"From date is required"`
	To          string `json:"to,omitempty"`
	Current     bool   `json:"current"`
	Description string `json:"description,omitempty"`
}

func (req ExperienceRequest) experience() (Experience, *httputil.ValidationError) {
	from, to, verr := parseRange(req.From, req.To)
	if verr != nil {
		return Experience{}, verr
	}
	return Experience{
		Title:       req.Title,
		Company:     req.Company,
		Location:    req.Location,
		From:        from,
		To:          to,
		Current:     req.Current,
		Description: req.Description,
	}, nil
}

// EducationRequest is the body of PUT /api/profile/education
type EducationRequest struct {
	School       string `json:"school" validate:"required" msg:"School is required"`
	Degree       string `json:"degree" validate:"required" msg:"Degree is required"`
	FieldOfStudy string `json:"fieldofstudy" validate:"required" msg:"Field of study is required"`
	From         string `json:"from" validate:"required" msg:"From date is required"`
	To           string `json:"to,omitempty"`
	Current      bool   `json:"current"`
	Description  string `json:"description,omitempty"`
}

func (req EducationRequest) education() (Education, *httputil.ValidationError) {
	from, to, verr := parseRange(req.From, req.To)
	if verr != nil {
		return Education{}, verr
	}
	return Education{
		School:       req.School,
		Degree:       req.Degree,
		FieldOfStudy: req.FieldOfStudy,
		From:         from,
		To:           to,
		Current:      req.Current,
		Description:  req.Description,
	}, nil
}

const dateFormatMsg = "must be a date (YYYY-MM-DD) or RFC 3339 timestamp"

func parseRange(rawFrom, rawTo string) (time.Time, *time.Time, *httputil.ValidationError) {
	from, err := ParseDate(rawFrom)
	if err != nil {
		return time.Time{}, nil, httputil.NewValidationError("from", "From "+dateFormatMsg)
	}

	if rawTo == "" {
		return from, nil, nil
	}
	to, err := ParseDate(rawTo)
	if err != nil {
		return time.Time{}, nil, httputil.NewValidationError("to", "To "+dateFormatMsg)
	}
	return from, &to, nil
}

const userRemovedMsg = "User removed"

// Me returns the profile of the authenticated user
// @Summary      Current user's profile
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} Profile
// @Failure      400 {object} httputil.ErrorResponse "There is no profile for this user"
// @Failure      401 {object} httputil.ErrorResponse "Missing or invalid token"
// @Router       /api/profile/me [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	p, err := h.service.GetOwn(r.Context(), userID)
	if err != nil {
		h.respondError(w, r, err, "failed to get own profile")
		return
	}

	httputil.RespondJSON(w, p, http.StatusOK)
}

// Upsert creates or updates the profile of the authenticated user
// @Summary      Create or update profile
// @Description  Present non-empty fields overwrite; skills is a comma-separated list
// @Tags         profile
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body UpsertRequest true "Profile fields"
// @Success      200 {object} Profile
// @Failure      400 {object} httputil.ErrorResponse "Validation error"
// @Failure      401 {object} httputil.ErrorResponse "Missing or invalid token"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /api/profile [post]
func (h *Handler) Upsert(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	var req UpsertRequest
	if err := httputil.Bind(w, r, &req); err != nil {
		logger.Warn("invalid profile request", "error", err.Error())
		return
	}

	p, err := h.service.Upsert(r.Context(), userID, req.patch())
	if err != nil {
		h.respondError(w, r, err, "failed to save profile")
		return
	}

	httputil.RespondJSON(w, p, http.StatusOK)
}

// List returns all profiles
// @Summary      List profiles
// @Tags         profile
// @Produce      json
// @Success      200 {array} Profile
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /api/profile [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.service.List(r.Context())
	if err != nil {
		h.respondError(w, r, err, "failed to list profiles")
		return
	}

	httputil.RespondJSON(w, profiles, http.StatusOK)
}

// GetByUserID returns the profile of the user in the path
// @Summary      Profile by user id
// @Tags         profile
// @Produce      json
// @Param        user_id path string true "User ID"
// @Success      200 {object} Profile
// @Failure      400 {object} httputil.ErrorResponse "Profile not found"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /api/profile/user/{user_id} [get]
func (h *Handler) GetByUserID(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.GetByUserID(r.Context(), chi.URLParam(r, "user_id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondErrorWithCode(w, "Profile not found", httputil.CodeProfileNotFound, http.StatusBadRequest)
			return
		}
		h.respondError(w, r, err, "failed to get profile")
		return
	}

	httputil.RespondJSON(w, p, http.StatusOK)
}

// Delete removes the profile and the account of the authenticated user
// @Summary      Delete profile and user
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} httputil.MessageResponse
// @Failure      401 {object} httputil.ErrorResponse "Missing or invalid token"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /api/profile [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteOwnProfileAndUser(r.Context(), userID); err != nil {
		h.respondError(w, r, err, "failed to delete profile")
		return
	}

	httputil.RespondJSON(w, httputil.MessageResponse{Msg: userRemovedMsg}, http.StatusOK)
}

// AddExperience adds an experience entry
// @Summary      Add experience
// @Tags         profile
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body ExperienceRequest true "Experience entry"
// @Success      200 {object} Profile
// @Failure      400 {object} httputil.ErrorResponse "Validation error or no profile"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /api/profile/experience [put]
func (h *Handler) AddExperience(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	var req ExperienceRequest
	if err := httputil.Bind(w, r, &req); err != nil {
		logger.Warn("invalid experience request", "error", err.Error())
		return
	}

	e, verr := req.experience()
	if verr != nil {
		httputil.RespondValidationError(w, verr)
		return
	}

	p, err := h.service.AddExperience(r.Context(), userID, e)
	if err != nil {
		h.respondError(w, r, err, "failed to add experience")
		return
	}

	httputil.RespondJSON(w, p, http.StatusOK)
}

// RemoveExperience deletes an experience entry
// @Summary      Remove experience
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Param        exp_id path string true "Experience ID"
// @Success      200 {object} Profile
// @Failure      400 {object} httputil.ErrorResponse "Malformed id or no profile"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /api/profile/experience/{exp_id} [delete]
func (h *Handler) RemoveExperience(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	expID, ok := entryID(w, r, "exp_id")
	if !ok {
		return
	}

	p, err := h.service.RemoveExperience(r.Context(), userID, expID)
	if err != nil {
		h.respondError(w, r, err, "failed to remove experience")
		return
	}

	httputil.RespondJSON(w, p, http.StatusOK)
}

// AddEducation adds an education entry
// @Summary      Add education
// @Tags         profile
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body EducationRequest true "Education entry"
// @Success      200 {object} Profile
// @Failure      400 {object} httputil.ErrorResponse "Validation error or no profile"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /api/profile/education [put]
func (h *Handler) AddEducation(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	var req EducationRequest
	if err := httputil.Bind(w, r, &req); err != nil {
		logger.Warn("invalid education request", "error", err.Error())
		return
	}

	e, verr := req.education()
	if verr != nil {
		httputil.RespondValidationError(w, verr)
		return
	}

	p, err := h.service.AddEducation(r.Context(), userID, e)
	if err != nil {
		h.respondError(w, r, err, "failed to add education")
		return
	}

	httputil.RespondJSON(w, p, http.StatusOK)
}

// RemoveEducation deletes an education entry
// @Summary      Remove education
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Param        edu_id path string true "Education ID"
// @Success      200 {object} Profile
// @Failure      400 {object} httputil.ErrorResponse "Malformed id or no profile"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /api/profile/education/{edu_id} [delete]
func (h *Handler) RemoveEducation(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	eduID, ok := entryID(w, r, "edu_id")
	if !ok {
		return
	}

	p, err := h.service.RemoveEducation(r.Context(), userID, eduID)
	if err != nil {
		h.respondError(w, r, err, "failed to remove education")
		return
	}

	httputil.RespondJSON(w, p, http.StatusOK)
}

func (h *Handler) requireUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "no token, authorization denied", httputil.CodeMissingAuth, http.StatusUnauthorized)
	}
	return userID, ok
}

func entryID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		httputil.RespondErrorWithCode(w, "invalid entry id", httputil.CodeInvalidEntryID, http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

// respondError maps service errors onto responses. Unknown errors are
// logged and hidden behind a generic 500.
func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	logger := logging.GetLoggerFromContext(r.Context())

	var entryErr *InvalidEntryError

	switch {
	case errors.Is(err, ErrNotFound):
		httputil.RespondErrorWithCode(w, "There is no profile for this user", httputil.CodeNoProfile, http.StatusBadRequest)
	case errors.As(err, &entryErr):
		verr := &httputil.ValidationError{Fields: make([]httputil.FieldError, 0, len(entryErr.Fields))}
		for _, f := range entryErr.Fields {
			verr.Fields = append(verr.Fields, httputil.FieldError{Field: f.Field, Msg: f.Msg})
		}
		httputil.RespondValidationError(w, verr)
	case errors.Is(err, ErrInvalidEntry):
		httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeValidationFailed, http.StatusBadRequest)
	default:
		logger.Error(msg, "error", err.Error())
		httputil.RespondInternalError(w, "Server error")
	}
}
