package prompt

import (
	"fmt"
	"strings"

	"contentpilot/internal/domain/models"
)

// ContentTypeInfo describes a content type for selection screens.
type ContentTypeInfo struct {
	Type        models.ContentType `json:"type"`
	Label       string             `json:"label"`
	Description string             `json:"description"`
}

var contentTypes = []ContentTypeInfo{
	{Type: models.ContentTypeBlog, Label: "Article de blog", Description: "Un article de blog informatif et engageant"},
	{Type: models.ContentTypeComparison, Label: "Article comparatif", Description: "Une comparaison détaillée entre différents produits ou services"},
	{Type: models.ContentTypeRecipe, Label: "Recette", Description: "Une recette détaillée avec ingrédients et instructions"},
	{Type: models.ContentTypeProduct, Label: "Article produit", Description: "Un article présentant un produit spécifique"},
}

// ContentTypes returns the supported content types in display order.
func ContentTypes() []ContentTypeInfo {
	out := make([]ContentTypeInfo, len(contentTypes))
	copy(out, contentTypes)
	return out
}

// PersonaGenerationPrompt asks for a JSON persona with French keys.
func PersonaGenerationPrompt(description string) string {
	return fmt.Sprintf(`Crée un persona détaillé pour un projet de marketing de contenu basé sur cette description: "%s". 
    Le persona doit inclure les informations suivantes:
    - Prénom
    - Nom
    - Âge
    - Profession
    - Niveau d'expertise (DOIT être exactement l'une de ces valeurs: novice, intermédiaire ou expert)
    - Objectifs (liste)
    - Défis (liste)
    - Sujets d'intérêt (liste)
    - Style de langage préféré (DOIT être exactement l'une de ces valeurs: simple, neutre ou soutenu)
    - Tonalité préférée (DOIT être exactement l'une de ces valeurs: pédagogique, humoristique ou sérieux)
    - Sources d'information habituelles (liste)
    - Langue principale (DOIT être exactement l'une de ces valeurs: fr, en, es, de, ou it)
    
    IMPORTANT: Les champs niveau_expertise, style_langage_prefere, tonalite_preferee et langue DOIVENT correspondre EXACTEMENT aux valeurs spécifiées.
    
    Réponds uniquement avec un objet JSON valide.`, description)
}

var registerLabels = map[models.LanguageRegister]string{
	models.RegisterSimple:   "simple",
	models.RegisterNeutral:  "neutre",
	models.RegisterElevated: "soutenu",
}

var toneLabels = map[models.Tone]string{
	models.TonePedagogical: "pédagogique",
	models.ToneHumorous:    "humoristique",
	models.ToneSerious:     "sérieux",
}

// HumanizePrompt rewrites a generated article so it reads like a person wrote it.
// The persona, when present, sets register and tone.
func HumanizePrompt(content string, persona *models.Persona) string {
	var b strings.Builder
	b.WriteString("# PROMPT D'HUMANISATION\n\n")
	b.WriteString("Réécris l'article ci-dessous pour qu'il paraisse écrit par un humain :\n")
	b.WriteString("- Varie la longueur des phrases et le rythme\n")
	b.WriteString("- Remplace les formulations génériques par des exemples concrets\n")
	b.WriteString("- Supprime les répétitions et les transitions artificielles\n")
	b.WriteString("- Conserve la structure Markdown, les titres et toutes les informations\n")

	if persona != nil {
		fmt.Fprintf(&b, "\nÉcris comme **%s**, %s", persona.DisplayName(), persona.Profession)
		if persona.Age > 0 {
			fmt.Fprintf(&b, " de %d ans", persona.Age)
		}
		b.WriteString(".\n")
		if label, ok := registerLabels[persona.LanguageRegister]; ok {
			fmt.Fprintf(&b, "- Style de langage : **%s**\n", label)
		}
		if label, ok := toneLabels[persona.Tone]; ok {
			fmt.Fprintf(&b, "- Tonalité : **%s**\n", label)
		}
		if persona.Language != "" {
			fmt.Fprintf(&b, "- Langue : **%s**\n", persona.Language)
		}
	}

	b.WriteString("\nRéponds uniquement avec l'article réécrit en Markdown.\n\n")
	b.WriteString("## ARTICLE\n\n")
	b.WriteString(content)
	return b.String()
}
