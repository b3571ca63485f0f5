package profile

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Owner is the subset of the owning user shown alongside a profile
type Owner struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Avatar string    `json:"avatar"`
}

type Profile struct {
	ID             uuid.UUID    `json:"id"`
	User           Owner        `json:"user"`
	Company        string       `json:"company,omitempty"`
	Website        string       `json:"website,omitempty"`
	Location       string       `json:"location,omitempty"`
	Bio            string       `json:"bio,omitempty"`
	Status         string       `json:"status"`
	GithubUsername string       `json:"githubusername,omitempty"`
	Skills         []string     `json:"skills"`
	Social         Social       `json:"social"`
	Experience     []Experience `json:"experience"`
	Education      []Education  `json:"education"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

type Social struct {
	Youtube   string `json:"youtube,omitempty"`
	Twitter   string `json:"twitter,omitempty"`
	Facebook  string `json:"facebook,omitempty"`
	Linkedin  string `json:"linkedin,omitempty"`
	Instagram string `json:"instagram,omitempty"`
}

// Experience is one job on a profile, newest first
type Experience struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Company     string     `json:"company"`
	Location    string     `json:"location,omitempty"`
	From        time.Time  `json:"from"`
	To          *time.Time `json:"to,omitempty"`
	Current     bool       `json:"current"`
	Description string     `json:"description,omitempty"`
}

// Education is one school on a profile, newest first
type Education struct {
	ID           uuid.UUID  `json:"id"`
	School       string     `json:"school"`
	Degree       string     `json:"degree"`
	FieldOfStudy string     `json:"fieldofstudy"`
	From         time.Time  `json:"from"`
	To           *time.Time `json:"to,omitempty"`
	Current      bool       `json:"current"`
	Description  string     `json:"description,omitempty"`
}

// Patch is a partial profile update. Nil and empty fields leave the
// stored value alone.
type Patch struct {
	Company        *string
	Website        *string
	Location       *string
	Bio            *string
	Status         *string
	GithubUsername *string
	// Skills is the raw comma-separated list
	Skills *string

	Youtube   *string
	Twitter   *string
	Facebook  *string
	Linkedin  *string
	Instagram *string
}

// Apply copies every present, non-empty field of the patch onto p
func (pt Patch) Apply(p *Profile) {
	set(&p.Company, pt.Company)
	set(&p.Website, pt.Website)
	set(&p.Location, pt.Location)
	set(&p.Bio, pt.Bio)
	set(&p.Status, pt.Status)
	set(&p.GithubUsername, pt.GithubUsername)

	if pt.Skills != nil {
		if skills := ParseSkills(*pt.Skills); len(skills) > 0 {
			p.Skills = skills
		}
	}

	set(&p.Social.Youtube, pt.Youtube)
	set(&p.Social.Twitter, pt.Twitter)
	set(&p.Social.Facebook, pt.Facebook)
	set(&p.Social.Linkedin, pt.Linkedin)
	set(&p.Social.Instagram, pt.Instagram)
}

func set(dst *string, v *string) {
	if v == nil {
		return
	}
	if s := strings.TrimSpace(*v); s != "" {
		*dst = s
	}
}

// ParseSkills splits a comma-separated list, trimming each element and
// dropping empty ones.
func ParseSkills(raw string) []string {
	parts := strings.Split(raw, ",")
	skills := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			skills = append(skills, s)
		}
	}
	return skills
}

// ParseDate accepts a calendar date (2006-01-02) or an RFC 3339 timestamp
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return t.UTC(), nil
}
