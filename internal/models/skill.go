package models

import "time"

type Skill struct {
	ID          int64     `json:"id" validate:"required,gt=0"`
	Name        string    `json:"name" validate:"required"`
	Category    string    `json:"category,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type SkillType string

const (
	SkillOffered SkillType = "offer"
	SkillWanted  SkillType = "want"
)

// UserSkill links a user to a skill they offer or want to learn.
type UserSkill struct {
	ID        int64     `json:"id" validate:"required,gt=0"`
	UserID    int64     `json:"user_id"`
	SkillID   int64     `json:"skill_id" validate:"required,gt=0"`
	Type      SkillType `json:"type" validate:"required,oneof=offer want"`
	Skill     *Skill    `json:"skill,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
