package prompt

import (
	"fmt"
	"strings"
)

const aiAnalysisTemplate = `Je vais t'aider à analyser le sujet "%s" de manière approfondie.

1. Analyse du contexte et de la pertinence :
- Identifie les aspects clés et les sous-thèmes importants
- Évalue la pertinence actuelle du sujet
- Détermine le public cible principal

2. Analyse des tendances et évolutions :
- Examine les tendances récentes liées au sujet
- Identifie les évolutions futures potentielles
- Repère les controverses ou débats actuels

3. Recommandations pour le contenu :
- Suggère les points clés à aborder
- Propose un angle d'approche original
- Identifie les sources d'autorité à citer

4. Optimisation SEO :
- Identifie les mots-clés principaux et secondaires
- Suggère des questions fréquentes des utilisateurs
- Propose une structure optimisée pour le référencement

Basé sur cette analyse, génère maintenant le contenu demandé en suivant ces insights.`

const scrapeAnalysisTemplate = `Je vais t'aider à analyser et synthétiser les meilleurs contenus existants sur le sujet "%s".

1. Analyse comparative des contenus :
- Compare les 5 meilleurs articles sur le sujet
- Identifie les points communs et différences
- Repère les angles uniques et innovants

2. Analyse des lacunes :
- Identifie les aspects peu ou mal couverts
- Repère les questions sans réponses
- Note les opportunités de contenu original

3. Analyse de la qualité :
- Évalue la profondeur du traitement
- Identifie les sources citées
- Analyse le style et le ton utilisés

4. Recommandations :
- Suggère une approche différenciante
- Propose des améliorations par rapport à l'existant
- Identifie les éléments à éviter

Basé sur cette analyse des contenus existants, génère maintenant un contenu unique et amélioré qui se démarque de la concurrence.`

// AIAnalysisPrompt asks the model for a topic analysis.
func AIAnalysisPrompt(d Data) string {
	return fmt.Sprintf(aiAnalysisTemplate, d.Topic)
}

// ScrapeAnalysisPrompt asks the model to analyse existing content on the topic.
func ScrapeAnalysisPrompt(d Data) string {
	return fmt.Sprintf(scrapeAnalysisTemplate, d.Topic)
}

// PageOutline is the heading structure of one crawled page.
type PageOutline struct {
	URL      string
	Title    string
	Headings []string
}

// ExistingContentBlock lists crawled pages so a scrape analysis works from
// real material. It returns "" when there is nothing to show.
func ExistingContentBlock(pages []PageOutline) string {
	if len(pages) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n\nContenus existants à analyser :\n")
	for _, p := range pages {
		title := p.Title
		if title == "" {
			title = p.URL
		}
		fmt.Fprintf(&b, "\n### %s\n%s\n", title, p.URL)
		for _, h := range p.Headings {
			fmt.Fprintf(&b, "- %s\n", h)
		}
	}
	return b.String()
}
