package profile

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/redmonkez12/devconnector/internal/logging"
)

var (
	ErrNotFound = errors.New("profile not found")
	// ErrInvalidEntry reports a profile or list entry missing a required field
	ErrInvalidEntry = errors.New("invalid profile entry")
)

// FieldError names one input field that failed a check
type FieldError struct {
	Field string
	Msg   string
}

// InvalidEntryError lists every failing field. It matches ErrInvalidEntry.
type InvalidEntryError struct {
	Fields []FieldError
}

func (e *InvalidEntryError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Field+": "+f.Msg)
	}
	return ErrInvalidEntry.Error() + ": " + strings.Join(msgs, "; ")
}

func (e *InvalidEntryError) Unwrap() error { return ErrInvalidEntry }

// fieldChecks collects failures and yields nil when there are none
type fieldChecks []FieldError

func (c *fieldChecks) require(ok bool, field, msg string) {
	if !ok {
		*c = append(*c, FieldError{Field: field, Msg: msg})
	}
}

func (c fieldChecks) err() error {
	if len(c) == 0 {
		return nil
	}
	return &InvalidEntryError{Fields: c}
}

// Store is the persistence the profile flows need
type Store interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Profile, error)
	List(ctx context.Context) ([]Profile, error)
	Save(ctx context.Context, p *Profile) error
	UpdateEntries(ctx context.Context, p *Profile) error
	DeleteWithOwner(ctx context.Context, userID uuid.UUID) error
}

// Service handles profile business logic
type Service struct {
	store  Store
	logger *logging.Logger
	now    func() time.Time
}

func NewService(store Store, logger *logging.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Upsert creates the profile of userID or patches the existing one
func (s *Service) Upsert(ctx context.Context, userID uuid.UUID, patch Patch) (*Profile, error) {
	p, err := s.store.GetByUserID(ctx, userID)
	switch {
	case errors.Is(err, ErrNotFound):
		now := s.now()
		p = &Profile{
			ID:         uuid.New(),
			User:       Owner{ID: userID},
			Skills:     []string{},
			Experience: []Experience{},
			Education:  []Education{},
			CreatedAt:  now,
		}
	case err != nil:
		return nil, err
	}

	patch.Apply(p)

	var checks fieldChecks
	checks.require(p.Status != "", "status", "Status is required")
	checks.require(len(p.Skills) > 0, "skills", "Skills are required")
	if err := checks.err(); err != nil {
		return nil, err
	}

	p.UpdatedAt = s.now()

	if err := s.store.Save(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Debug("profile saved", "user_id", userID, "profile_id", p.ID)

	// Re-read so the owner is joined in
	return s.store.GetByUserID(ctx, userID)
}

// GetOwn returns the profile of the authenticated user
func (s *Service) GetOwn(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	return s.store.GetByUserID(ctx, userID)
}

// List returns all profiles, newest first
func (s *Service) List(ctx context.Context) ([]Profile, error) {
	return s.store.List(ctx)
}

// GetByUserID looks up a profile by a user id taken from a URL.
// A malformed id is reported as ErrNotFound.
func (s *Service) GetByUserID(ctx context.Context, rawUserID string) (*Profile, error) {
	userID, err := uuid.Parse(strings.TrimSpace(rawUserID))
	if err != nil {
		return nil, ErrNotFound
	}
	return s.store.GetByUserID(ctx, userID)
}

// DeleteOwnProfileAndUser removes the profile and the account of userID.
// Posts authored by the user are left in place.
func (s *Service) DeleteOwnProfileAndUser(ctx context.Context, userID uuid.UUID) error {
	if err := s.store.DeleteWithOwner(ctx, userID); err != nil {
		return err
	}

	s.logger.Info("user and profile deleted", "user_id", userID)
	return nil
}

// AddExperience prepends e to the experience list of userID's profile
func (s *Service) AddExperience(ctx context.Context, userID uuid.UUID, e Experience) (*Profile, error) {
	e.Title = strings.TrimSpace(e.Title)
	e.Company = strings.TrimSpace(e.Company)
	var checks fieldChecks
	checks.require(e.Title != "", "title", "Title is required")
	checks.require(e.Company != "", "company", "Company is required")
	checks.require(!e.From.IsZero(), "from", "From date is required")
	if err := checks.err(); err != nil {
		return nil, err
	}

	p, err := s.store.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	e.ID = uuid.New()
	p.Experience = append([]Experience{e}, p.Experience...)

	return s.updateEntries(ctx, p)
}

// RemoveExperience drops the experience entry expID. Removing an id the
// profile does not hold returns the profile unchanged.
func (s *Service) RemoveExperience(ctx context.Context, userID, expID uuid.UUID) (*Profile, error) {
	p, err := s.store.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	kept := make([]Experience, 0, len(p.Experience))
	for _, e := range p.Experience {
		if e.ID != expID {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(p.Experience) {
		return p, nil
	}
	p.Experience = kept

	return s.updateEntries(ctx, p)
}

// AddEducation prepends e to the education list of userID's profile
func (s *Service) AddEducation(ctx context.Context, userID uuid.UUID, e Education) (*Profile, error) {
	e.School = strings.TrimSpace(e.School)
	e.Degree = strings.TrimSpace(e.Degree)
	e.FieldOfStudy = strings.TrimSpace(e.FieldOfStudy)
	var checks fieldChecks
	checks.require(e.School != "", "school", "School is required")
	checks.require(e.Degree != "", "degree", "Degree is required")
	checks.require(e.FieldOfStudy != "", "fieldofstudy", "Field of study is required")
	checks.require(!e.From.IsZero(), "from", "From date is required")
	if err := checks.err(); err != nil {
		return nil, err
	}

	p, err := s.store.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	e.ID = uuid.New()
	p.Education = append([]Education{e}, p.Education...)

	return s.updateEntries(ctx, p)
}

// RemoveEducation drops the education entry eduID, a no-op when absent
func (s *Service) RemoveEducation(ctx context.Context, userID, eduID uuid.UUID) (*Profile, error) {
	p, err := s.store.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	kept := make([]Education, 0, len(p.Education))
	for _, e := range p.Education {
		if e.ID != eduID {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(p.Education) {
		return p, nil
	}
	p.Education = kept

	return s.updateEntries(ctx, p)
}

func (s *Service) updateEntries(ctx context.Context, p *Profile) (*Profile, error) {
	p.UpdatedAt = s.now()

	if err := s.store.UpdateEntries(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}
