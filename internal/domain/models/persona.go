package models

import (
	"strings"
	"time"
)

type ExpertiseLevel string

const (
	ExpertiseNovice       ExpertiseLevel = "novice"
	ExpertiseIntermediate ExpertiseLevel = "intermediate"
	ExpertiseExpert       ExpertiseLevel = "expert"
)

type LanguageRegister string

const (
	RegisterSimple   LanguageRegister = "simple"
	RegisterNeutral  LanguageRegister = "neutral"
	RegisterElevated LanguageRegister = "elevated"
)

type Tone string

const (
	TonePedagogical Tone = "pedagogical"
	ToneHumorous    Tone = "humorous"
	ToneSerious     Tone = "serious"
)

// PersonaLanguages lists the language codes a persona may write in.
var PersonaLanguages = []string{"fr", "en", "es", "de", "it"}

// Persona is a reusable writer profile applied to generation prompts.
type Persona struct {
	ID                 string           `json:"id" db:"id"`
	UserID             string           `json:"user_id" db:"user_id"`
	FirstName          string           `json:"first_name" db:"first_name"`
	LastName           string           `json:"last_name" db:"last_name"`
	Age                int              `json:"age" db:"age"`
	Profession         string           `json:"profession" db:"profession"`
	ExpertiseLevel     ExpertiseLevel   `json:"expertise_level" db:"expertise_level"`
	Goals              []string         `json:"goals" db:"goals"`
	Challenges         []string         `json:"challenges" db:"challenges"`
	Interests          []string         `json:"interests" db:"interests"`
	LanguageRegister   LanguageRegister `json:"language_register" db:"language_register"`
	Tone               Tone             `json:"tone" db:"tone"`
	InformationSources []string         `json:"information_sources" db:"information_sources"`
	Language           string           `json:"language" db:"language"`
	SiteID             *string          `json:"site_id,omitempty" db:"site_id"`
	CreatedAt          time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at" db:"updated_at"`
}

// DisplayName is the name used for project and article snapshots.
func (p *Persona) DisplayName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// Ref returns the snapshot embedded in projects and articles.
func (p *Persona) Ref() *PersonaRef {
	return &PersonaRef{ID: p.ID, Name: p.DisplayName()}
}

// PersonaRef is the denormalized persona snapshot embedded in projects and articles.
type PersonaRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
