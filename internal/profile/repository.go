package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/redmonkez12/devconnector/internal/database"
	"github.com/redmonkez12/devconnector/internal/user"
)

// Repository handles profile persistence
type Repository struct {
	db bun.IDB
}

func NewRepository(db bun.IDB) *Repository {
	return &Repository{db: db}
}

// ownerColumns limits the joined user to what a profile exposes
func ownerColumns(q *bun.SelectQuery) *bun.SelectQuery {
	return q.Column("id", "name", "avatar")
}

// GetByUserID retrieves the profile owned by userID with its owner joined
func (r *Repository) GetByUserID(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	row := new(database.Profile)
	err := r.db.NewSelect().
		Model(row).
		Relation("User", ownerColumns).
		Where("p.user_id = ?", userID).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return mapDBProfileToModel(row), nil
}

// List returns every profile, newest first
func (r *Repository) List(ctx context.Context) ([]Profile, error) {
	var rows []database.Profile
	err := r.db.NewSelect().
		Model(&rows).
		Relation("User", ownerColumns).
		Order("p.created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}

	profiles := make([]Profile, 0, len(rows))
	for i := range rows {
		profiles = append(profiles, *mapDBProfileToModel(&rows[i]))
	}
	return profiles, nil
}

// Save inserts p, or overwrites the scalar fields of the profile already
// owned by p's user.
func (r *Repository) Save(ctx context.Context, p *Profile) error {
	row := mapModelToDBProfile(p)

	_, err := r.db.NewInsert().
		Model(row).
		On("CONFLICT (user_id) DO UPDATE").
		Set("company = EXCLUDED.company").
		Set("website = EXCLUDED.website").
		Set("location = EXCLUDED.location").
		Set("bio = EXCLUDED.bio").
		Set("status = EXCLUDED.status").
		Set("githubusername = EXCLUDED.githubusername").
		Set("skills = EXCLUDED.skills").
		Set("social = EXCLUDED.social").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}

	return nil
}

// UpdateEntries writes the experience and education lists of p
func (r *Repository) UpdateEntries(ctx context.Context, p *Profile) error {
	row := mapModelToDBProfile(p)

	res, err := r.db.NewUpdate().
		Model(row).
		Column("experience", "education", "updated_at").
		Where("user_id = ?", p.User.ID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update profile entries: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update profile entries: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	return nil
}

// DeleteWithOwner removes the profile and the user account of userID
// in a single transaction.
func (r *Repository) DeleteWithOwner(ctx context.Context, userID uuid.UUID) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewDelete().
			Model((*database.Profile)(nil)).
			Where("user_id = ?", userID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to delete profile: %w", err)
		}

		return user.NewRepository(tx).Delete(ctx, userID)
	})
}

func mapDBProfileToModel(row *database.Profile) *Profile {
	p := &Profile{
		ID:             row.ID,
		User:           Owner{ID: row.UserID},
		Company:        row.Company,
		Website:        row.Website,
		Location:       row.Location,
		Bio:            row.Bio,
		Status:         row.Status,
		GithubUsername: row.GithubUsername,
		Skills:         append([]string{}, row.Skills...),
		Social:         Social(row.Social),
		Experience:     make([]Experience, 0, len(row.Experience)),
		Education:      make([]Education, 0, len(row.Education)),
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}

	if row.User != nil {
		p.User.Name = row.User.Name
		p.User.Avatar = row.User.Avatar
	}

	for _, e := range row.Experience {
		p.Experience = append(p.Experience, Experience(e))
	}
	for _, e := range row.Education {
		p.Education = append(p.Education, Education(e))
	}

	return p
}

func mapModelToDBProfile(p *Profile) *database.Profile {
	row := &database.Profile{
		ID:             p.ID,
		UserID:         p.User.ID,
		Company:        p.Company,
		Website:        p.Website,
		Location:       p.Location,
		Bio:            p.Bio,
		Status:         p.Status,
		GithubUsername: p.GithubUsername,
		Skills:         append([]string{}, p.Skills...),
		Social:         database.SocialLinks(p.Social),
		Experience:     make([]database.ExperienceEntry, 0, len(p.Experience)),
		Education:      make([]database.EducationEntry, 0, len(p.Education)),
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}

	for _, e := range p.Experience {
		row.Experience = append(row.Experience, database.ExperienceEntry(e))
	}
	for _, e := range p.Education {
		row.Education = append(row.Education, database.EducationEntry(e))
	}

	return row
}
