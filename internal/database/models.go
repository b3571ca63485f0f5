package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the users table row
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           uuid.UUID `bun:"id,pk,type:uuid"`
	Name         string    `bun:"name,notnull"`
	Email        string    `bun:"email,notnull"`
	PasswordHash string    `bun:"password_hash,notnull"`
	Avatar       string    `bun:"avatar"`
	CreatedAt    time.Time `bun:"created_at,notnull"`
}

// Profile is the profiles table row.
// Social, experience and education are stored as JSONB documents.
type Profile struct {
	bun.BaseModel `bun:"table:profiles,alias:p"`

	ID             uuid.UUID         `bun:"id,pk,type:uuid"`
	UserID         uuid.UUID         `bun:"user_id,notnull,type:uuid"`
	User           *User             `bun:"rel:belongs-to,join:user_id=id"`
	Company        string            `bun:"company"`
	Website        string            `bun:"website"`
	Location       string            `bun:"location"`
	Bio            string            `bun:"bio"`
	Status         string            `bun:"status,notnull"`
	GithubUsername string            `bun:"githubusername"`
	Skills         []string          `bun:"skills,array"`
	Social         SocialLinks       `bun:"social,type:jsonb"`
	Experience     []ExperienceEntry `bun:"experience,type:jsonb"`
	Education      []EducationEntry  `bun:"education,type:jsonb"`
	CreatedAt      time.Time         `bun:"created_at,notnull"`
	UpdatedAt      time.Time         `bun:"updated_at,notnull"`
}

// SocialLinks is the JSONB shape of profiles.social
type SocialLinks struct {
	Youtube   string `json:"youtube,omitempty"`
	Twitter   string `json:"twitter,omitempty"`
	Facebook  string `json:"facebook,omitempty"`
	Linkedin  string `json:"linkedin,omitempty"`
	Instagram string `json:"instagram,omitempty"`
}

// ExperienceEntry is one element of profiles.experience
type ExperienceEntry struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Company     string     `json:"company"`
	Location    string     `json:"location,omitempty"`
	From        time.Time  `json:"from"`
	To          *time.Time `json:"to,omitempty"`
	Current     bool       `json:"current"`
	Description string     `json:"description,omitempty"`
}

// EducationEntry is one element of profiles.education
type EducationEntry struct {
	ID           uuid.UUID  `json:"id"`
	School       string     `json:"school"`
	Degree       string     `json:"degree"`
	FieldOfStudy string     `json:"fieldofstudy"`
	From         time.Time  `json:"from"`
	To           *time.Time `json:"to,omitempty"`
	Current      bool       `json:"current"`
	Description  string     `json:"description,omitempty"`
}
