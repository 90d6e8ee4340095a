// Package prompt builds the French generation prompts for each content type
// and semantic analysis mode. Every function here is pure.
package prompt

import (
	"fmt"
	"strings"

	"contentpilot/internal/domain/models"
)

// PersonaBrief is the part of a persona a content prompt uses.
type PersonaBrief struct {
	Profession string
	Goals      []string
	Challenges []string
	Interests  []string
}

// SiteBrief is the part of a site a content prompt uses.
type SiteBrief struct {
	Name           string
	URL            string
	SiteType       string
	TargetAudience []string
}

// Data is everything a prompt depends on.
type Data struct {
	Title                string
	Topic                string
	ContentType          models.ContentType
	SemanticAnalysisType models.SemanticAnalysisType
	Persona              *PersonaBrief
	Site                 *SiteBrief
}

// TransitionSentence joins the semantic block and the content block.
const TransitionSentence = "Une fois cette analyse effectuée, utilise les informations suivantes pour générer le contenu :"

// NewPersonaBrief extracts the prompt fields of a persona; nil stays nil.
func NewPersonaBrief(p *models.Persona) *PersonaBrief {
	if p == nil {
		return nil
	}
	return &PersonaBrief{
		Profession: p.Profession,
		Goals:      p.Goals,
		Challenges: p.Challenges,
		Interests:  p.Interests,
	}
}

// NewSiteBrief extracts the prompt fields of a site; nil stays nil.
func NewSiteBrief(s *models.Site) *SiteBrief {
	if s == nil {
		return nil
	}
	return &SiteBrief{
		Name:           s.Name,
		URL:            s.URL,
		SiteType:       string(s.Category),
		TargetAudience: s.TargetAudience,
	}
}

// ContentPrompt dispatches on the content type.
func ContentPrompt(d Data) (string, error) {
	switch d.ContentType {
	case models.ContentTypeBlog:
		return BlogPrompt(d), nil
	case models.ContentTypeComparison:
		return ComparisonPrompt(d), nil
	case models.ContentTypeRecipe:
		return RecipePrompt(d), nil
	case models.ContentTypeProduct:
		return ProductPrompt(d), nil
	default:
		return "", fmt.Errorf("Type de contenu non supporté: %s", d.ContentType)
	}
}

// SemanticPrompt returns the analysis block, or "" for "none".
func SemanticPrompt(d Data) (string, error) {
	switch d.SemanticAnalysisType {
	case models.SemanticAnalysisAI:
		return AIAnalysisPrompt(d), nil
	case models.SemanticAnalysisScrape:
		return ScrapeAnalysisPrompt(d), nil
	case models.SemanticAnalysisNone:
		return "", nil
	default:
		return "", fmt.Errorf("Type d'analyse sémantique non supporté: %s", d.SemanticAnalysisType)
	}
}

// GeneratePrompt is the full prompt: semantic block, transition sentence and
// content block, or the content block alone when there is no analysis.
func GeneratePrompt(d Data) (string, error) {
	content, err := ContentPrompt(d)
	if err != nil {
		return "", err
	}
	semantic, err := SemanticPrompt(d)
	if err != nil {
		return "", err
	}
	if semantic == "" {
		return content, nil
	}
	return Combine(semantic, content), nil
}

// Combine joins an analysis block and a content block with the transition sentence.
func Combine(semantic, content string) string {
	return semantic + "\n\n" + TransitionSentence + "\n\n" + content
}

func joinList(items []string) string {
	return strings.Join(items, ", ")
}
