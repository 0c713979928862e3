// Package profile stores the self-service employee profile.
package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNotFound     = errors.New("profile: not found")
	ErrMissingOwner = errors.New("profile: owner identity missing")
	ErrUploadsOff   = errors.New("profile: avatar uploads not configured")
	ErrUploadFailed = errors.New("profile: avatar upload failed")
	ErrEmptyUpload  = errors.New("profile: empty avatar file")
	ErrUploadTooBig = errors.New("profile: avatar file too large")
)

// MaxAvatarBytes caps an avatar upload.
const MaxAvatarBytes = 5 << 20

// Certification is one entry of a profile's certification list.
type Certification struct {
	Name   string `json:"name" bson:"name"`
	Date   string `json:"date,omitempty" bson:"date,omitempty"`
	Issuer string `json:"issuer,omitempty" bson:"issuer,omitempty"`
}

// Profile is one owner's profile document.
type Profile struct {
	Owner          string          `json:"owner" bson:"owner"`
	Mobile         string          `json:"mobile,omitempty" bson:"mobile,omitempty"`
	Department     string          `json:"department,omitempty" bson:"department,omitempty"`
	Manager        string          `json:"manager,omitempty" bson:"manager,omitempty"`
	Location       string          `json:"location,omitempty" bson:"location,omitempty"`
	About          string          `json:"about,omitempty" bson:"about,omitempty"`
	Skills         []string        `json:"skills" bson:"skills"`
	Certifications []Certification `json:"certifications" bson:"certifications"`
	ResumeLink     string          `json:"resumeLink,omitempty" bson:"resumeLink,omitempty"`
	JobInterests   string          `json:"jobInterests,omitempty" bson:"jobInterests,omitempty"`
	AvatarURL      string          `json:"avatarUrl,omitempty" bson:"avatarUrl,omitempty"`
	UpdatedAt      time.Time       `json:"updatedAt" bson:"updatedAt"`
}

func (p *Profile) normalize() {
	if p.Skills == nil {
		p.Skills = []string{}
	}
	if p.Certifications == nil {
		p.Certifications = []Certification{}
	}
}

// Skills decodes from a JSON array or a comma separated string.
type Skills []string

func (s *Skills) UnmarshalJSON(b []byte) error {
	var list []string
	if err := json.Unmarshal(b, &list); err == nil {
		if list == nil {
			*s = nil
			return nil
		}
		*s = cleanSkills(list)
		return nil
	}
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return errors.New("skills must be a string or an array of strings")
	}
	if strings.TrimSpace(str) == "" {
		*s = nil
		return nil
	}
	*s = cleanSkills(strings.Split(str, ","))
	return nil
}

func cleanSkills(in []string) Skills {
	out := make(Skills, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Patch is a partial update. Empty strings and nil lists leave the stored
// value alone; a present but empty list clears it.
type Patch struct {
	Mobile         string          `json:"mobile"`
	Department     string          `json:"department"`
	Manager        string          `json:"manager"`
	Location       string          `json:"location"`
	About          string          `json:"about"`
	Skills         Skills          `json:"skills"`
	Certifications []Certification `json:"certifications"`
	ResumeLink     string          `json:"resumeLink"`
	JobInterests   string          `json:"jobInterests"`
	AvatarURL      string          `json:"-"`
}

// Fields returns the document fields p sets, keyed by their stored name.
func (p Patch) Fields() map[string]any {
	out := make(map[string]any)
	str := map[string]string{
		"mobile":       p.Mobile,
		"department":   p.Department,
		"manager":      p.Manager,
		"location":     p.Location,
		"about":        p.About,
		"resumeLink":   p.ResumeLink,
		"jobInterests": p.JobInterests,
		"avatarUrl":    p.AvatarURL,
	}
	for k, v := range str {
		if v = strings.TrimSpace(v); v != "" {
			out[k] = v
		}
	}
	if p.Skills != nil {
		out["skills"] = []string(p.Skills)
	}
	if p.Certifications != nil {
		out["certifications"] = p.Certifications
	}
	return out
}

// Apply merges p into prof in place.
func (p Patch) Apply(prof *Profile) {
	set := func(dst *string, v string) {
		if v = strings.TrimSpace(v); v != "" {
			*dst = v
		}
	}
	set(&prof.Mobile, p.Mobile)
	set(&prof.Department, p.Department)
	set(&prof.Manager, p.Manager)
	set(&prof.Location, p.Location)
	set(&prof.About, p.About)
	set(&prof.ResumeLink, p.ResumeLink)
	set(&prof.JobInterests, p.JobInterests)
	set(&prof.AvatarURL, p.AvatarURL)
	if p.Skills != nil {
		prof.Skills = append([]string(nil), p.Skills...)
	}
	if p.Certifications != nil {
		prof.Certifications = append([]Certification(nil), p.Certifications...)
	}
}

// Store persists one profile per owner. Merge upserts atomically.
type Store interface {
	Get(ctx context.Context, owner string) (Profile, error)
	Merge(ctx context.Context, owner string, p Patch, now time.Time) (Profile, error)
	EnsureIndexes(ctx context.Context) error
}

// Uploader stores avatar images and returns their public URL.
type Uploader interface {
	UploadAvatar(ctx context.Context, owner string, data []byte, filename string) (string, error)
}

// Service reads and patches profiles.
type Service struct {
	store    Store
	uploader Uploader
	now      func() time.Time
}

// NewService creates a service. uploader may be nil, which disables
// avatar uploads.
func NewService(store Store, uploader Uploader) *Service {
	return &Service{store: store, uploader: uploader, now: time.Now}
}

// Me returns owner's profile.
func (s *Service) Me(ctx context.Context, owner string) (Profile, error) {
	if owner == "" {
		return Profile{}, ErrMissingOwner
	}
	p, err := s.store.Get(ctx, owner)
	if errors.Is(err, ErrNotFound) {
		return Profile{}, ErrNotFound
	}
	if err != nil {
		return Profile{}, fmt.Errorf("profile: get: %w", err)
	}
	p.normalize()
	return p, nil
}

// Update creates or patches owner's profile and returns the result.
func (s *Service) Update(ctx context.Context, owner string, p Patch) (Profile, error) {
	if owner == "" {
		return Profile{}, ErrMissingOwner
	}
	p.AvatarURL = ""
	return s.merge(ctx, owner, p)
}

// SetAvatar uploads data and records the resulting URL on the profile.
func (s *Service) SetAvatar(ctx context.Context, owner string, data []byte, filename string) (Profile, error) {
	if owner == "" {
		return Profile{}, ErrMissingOwner
	}
	if s.uploader == nil {
		return Profile{}, ErrUploadsOff
	}
	if len(data) == 0 {
		return Profile{}, ErrEmptyUpload
	}
	if len(data) > MaxAvatarBytes {
		return Profile{}, ErrUploadTooBig
	}
	url, err := s.uploader.UploadAvatar(ctx, owner, data, filename)
	if err != nil {
		return Profile{}, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	return s.merge(ctx, owner, Patch{AvatarURL: url})
}

func (s *Service) merge(ctx context.Context, owner string, p Patch) (Profile, error) {
	prof, err := s.store.Merge(ctx, owner, p, s.now().UTC().Truncate(time.Millisecond))
	if err != nil {
		return Profile{}, fmt.Errorf("profile: merge: %w", err)
	}
	prof.normalize()
	return prof, nil
}
