// Package directory reads the user directory and skills catalogue and edits
// the signed-in user's own skills.
package directory

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"skillswap/internal/constants"
	"skillswap/internal/mediaurl"
	"skillswap/internal/models"
	"skillswap/internal/transport"
	"skillswap/internal/validation"
)

type Directory struct {
	api *transport.Client
	ttl time.Duration
	now func() time.Time

	mu            sync.RWMutex
	skills        []models.Skill
	skillsExpires time.Time
	loads         singleflight.Group
}

func New(api *transport.Client, skillsTTL time.Duration) *Directory {
	if skillsTTL <= 0 {
		skillsTTL = constants.DefaultSkillsCacheTTL
	}
	return &Directory{api: api, ttl: skillsTTL, now: time.Now}
}

// Skills returns the skills catalogue, cached for the configured TTL.
func (d *Directory) Skills(ctx context.Context) ([]models.Skill, error) {
	now := d.now()

	d.mu.RLock()
	skills, expires := d.skills, d.skillsExpires
	d.mu.RUnlock()
	if skills != nil && now.Before(expires) {
		return append([]models.Skill(nil), skills...), nil
	}

	v, err, _ := d.loads.Do("skills", func() (any, error) {
		var out []models.Skill
		err := d.api.Do(ctx, transport.Request{Method: http.MethodGet, Path: "/skills"}, &out)
		if err != nil {
			return nil, err
		}
		if out == nil {
			out = []models.Skill{}
		}
		d.mu.Lock()
		d.skills, d.skillsExpires = out, now.Add(d.ttl)
		d.mu.Unlock()
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return append([]models.Skill(nil), v.([]models.Skill)...), nil
}

// InvalidateSkills forces the next Skills call to hit the backend.
func (d *Directory) InvalidateSkills() {
	d.mu.Lock()
	d.skills = nil
	d.mu.Unlock()
}

// SkillByName finds a catalogue entry by case-insensitive name.
func (d *Directory) SkillByName(ctx context.Context, name string) (*models.Skill, bool, error) {
	skills, err := d.Skills(ctx)
	if err != nil {
		return nil, false, err
	}
	for i := range skills {
		if strings.EqualFold(skills[i].Name, strings.TrimSpace(name)) {
			return &skills[i], true, nil
		}
	}
	return nil, false, nil
}

type SearchQuery struct {
	Search       string `json:"search" validate:"omitempty,max=100"`
	Skill        string `json:"skill" validate:"omitempty,max=100"`
	Availability string `json:"availability" validate:"omitempty,availability"`
	Page         int    `json:"page" validate:"gte=0"`
}

func (q SearchQuery) values() url.Values {
	v := url.Values{}
	if s := strings.TrimSpace(q.Search); s != "" {
		v.Set("search", s)
	}
	if s := strings.TrimSpace(q.Skill); s != "" {
		v.Set("skill", s)
	}
	if q.Availability != "" {
		v.Set("availability", q.Availability)
	}
	if q.Page > 1 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	return v
}

// SearchUsers lists public profiles matching q, one page at a time.
func (d *Directory) SearchUsers(ctx context.Context, q SearchQuery) (*models.Page[models.UserProfile], error) {
	if err := validation.Form(q); err != nil {
		return nil, err
	}

	var page models.Page[models.UserProfile]
	if err := d.api.Get(ctx, "/users", q.values(), &page); err != nil {
		return nil, err
	}
	for i := range page.Results {
		d.resolveMedia(&page.Results[i])
	}
	return &page, nil
}

func (d *Directory) User(ctx context.Context, id int64) (*models.UserProfile, error) {
	var user models.UserProfile
	if err := d.api.Get(ctx, fmt.Sprintf("/users/%d", id), nil, &user); err != nil {
		return nil, err
	}
	d.resolveMedia(&user)
	return &user, nil
}

func (d *Directory) UserSkills(ctx context.Context, userID int64) ([]models.UserSkill, error) {
	var out []models.UserSkill
	if err := d.api.Get(ctx, fmt.Sprintf("/users/%d/skills", userID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type addSkillForm struct {
	SkillID int64            `json:"skill_id" validate:"gt=0"`
	Type    models.SkillType `json:"type" validate:"oneof=offer want"`
}

// AddSkill records that the signed-in user offers or wants skillID.
func (d *Directory) AddSkill(ctx context.Context, skillID int64, typ models.SkillType) (*models.UserSkill, error) {
	form := addSkillForm{SkillID: skillID, Type: typ}
	if err := validation.Form(form); err != nil {
		return nil, err
	}

	var out models.UserSkill
	if err := d.api.Post(ctx, "/users/skills", form, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (d *Directory) RemoveSkill(ctx context.Context, userSkillID int64) error {
	return d.api.Delete(ctx, fmt.Sprintf("/users/skills/%d", userSkillID))
}

func (d *Directory) resolveMedia(u *models.UserProfile) {
	u.ProfileImage = mediaurl.Resolve(d.api.BaseURL(), u.ProfileImage)
}
