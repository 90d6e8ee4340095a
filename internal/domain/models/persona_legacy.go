package models

import (
	"encoding/json"
	"slices"
	"strconv"
	"strings"
)

// LegacyPersona is the French-keyed persona document produced by older clients
// and by the persona generation prompt.
type LegacyPersona struct {
	Prenom                        string          `json:"prenom"`
	Nom                           string          `json:"nom"`
	Age                           json.RawMessage `json:"age"`
	Profession                    string          `json:"profession"`
	NiveauExpertise               string          `json:"niveau_expertise"`
	Objectifs                     []string        `json:"objectifs"`
	Defis                         []string        `json:"defis"`
	SujetsInteret                 []string        `json:"sujets_interet"`
	StyleLangagePrefere           string          `json:"style_langage_prefere"`
	TonalitePreferee              string          `json:"tonalite_preferee"`
	SourcesInformationHabituelles []string        `json:"sources_information_habituelles"`
	Langue                        string          `json:"langue"`
	SiteID                        *string         `json:"siteId,omitempty"`
}

var legacyExpertise = map[string]ExpertiseLevel{
	"novice":        ExpertiseNovice,
	"intermédiaire": ExpertiseIntermediate,
	"intermediaire": ExpertiseIntermediate,
	"expert":        ExpertiseExpert,
}

var legacyRegister = map[string]LanguageRegister{
	"simple":  RegisterSimple,
	"neutre":  RegisterNeutral,
	"soutenu": RegisterElevated,
}

var legacyTone = map[string]Tone{
	"pédagogique":  TonePedagogical,
	"pedagogique":  TonePedagogical,
	"humoristique": ToneHumorous,
	"sérieux":      ToneSerious,
	"serieux":      ToneSerious,
}

// PersonaFromLegacy converts a legacy document to the canonical schema.
// Missing or out-of-range values fall back to the historical defaults.
func PersonaFromLegacy(l LegacyPersona) Persona {
	p := Persona{
		FirstName:          orDefault(l.Prenom, "John"),
		LastName:           orDefault(l.Nom, "Doe"),
		Age:                parseLegacyAge(l.Age),
		Profession:         orDefault(l.Profession, "Non spécifié"),
		ExpertiseLevel:     ExpertiseNovice,
		Goals:              nonNil(l.Objectifs),
		Challenges:         nonNil(l.Defis),
		Interests:          nonNil(l.SujetsInteret),
		LanguageRegister:   RegisterSimple,
		Tone:               TonePedagogical,
		InformationSources: nonNil(l.SourcesInformationHabituelles),
		Language:           "fr",
		SiteID:             l.SiteID,
	}

	if v, ok := legacyExpertise[strings.ToLower(strings.TrimSpace(l.NiveauExpertise))]; ok {
		p.ExpertiseLevel = v
	}
	if v, ok := legacyRegister[strings.ToLower(strings.TrimSpace(l.StyleLangagePrefere))]; ok {
		p.LanguageRegister = v
	}
	if v, ok := legacyTone[strings.ToLower(strings.TrimSpace(l.TonalitePreferee))]; ok {
		p.Tone = v
	}
	if slices.Contains(PersonaLanguages, l.Langue) {
		p.Language = l.Langue
	}

	return p
}

// parseLegacyAge accepts numbers and numeric strings ("34", "34 ans").
func parseLegacyAge(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 30
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil && n > 0 {
		return int(n)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		digits := strings.TrimSpace(s)
		end := 0
		for end < len(digits) && digits[end] >= '0' && digits[end] <= '9' {
			end++
		}
		if v, err := strconv.Atoi(digits[:end]); err == nil && v > 0 {
			return v
		}
	}
	return 30
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return strings.TrimSpace(v)
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
