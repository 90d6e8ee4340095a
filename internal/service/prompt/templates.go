package prompt

import (
	"fmt"
	"strings"
)

// BlogPrompt is the blog article template. It is the only one that mentions the site.
func BlogPrompt(d Data) string {
	var b strings.Builder
	b.WriteString("# PROMPT DE RÉDACTION AUTHENTIQUE AVEC RICHESSE SÉMANTIQUE\n\n")
	b.WriteString("## INFORMATIONS DE BASE\n")
	fmt.Fprintf(&b, "- Mot clé : **%s**\n", d.Title)
	b.WriteString("- Type de contenu : **Article de blog**\n")
	fmt.Fprintf(&b, "- Type d'analyse sémantique : **%s**\n\n", d.SemanticAnalysisType)

	b.WriteString("## PRÉPARATION DU CONTENU\n\n")
	b.WriteString("### 1. ANALYSE SÉMANTIQUE À UTILISER\n")
	b.WriteString("Extrais de l'analyse sémantique précédente :\n")
	b.WriteString("- 5-7 synonymes et variations du mot-clé principal\n")
	b.WriteString("- 3-4 expressions courantes du domaine\n")
	b.WriteString("- 4-5 termes techniques essentiels\n")
	b.WriteString("- 3-4 questions fréquentes des utilisateurs\n")
	b.WriteString("- 2-3 cas d'usage concrets\n")
	b.WriteString("- 4-5 termes du jargon professionnel\n")
	b.WriteString("- 2-3 expressions idiomatiques du secteur\n")
	b.WriteString("- 3-4 concepts connexes importants\n\n")

	if p := d.Persona; p != nil {
		b.WriteString("### 2. PERSONNAGE ET CONTEXTE\n")
		fmt.Fprintf(&b, "Tu es un expert en **%s** qui :\n", p.Profession)
		b.WriteString("- Utilise naturellement le vocabulaire du secteur\n")
		fmt.Fprintf(&b, "- A de l'expérience avec les **%s**\n", joinList(p.Goals))
		fmt.Fprintf(&b, "- Connaît les **%s**\n", joinList(p.Challenges))
		fmt.Fprintf(&b, "- Maîtrise les sujets d'intérêt suivants: **%s**\n\n", joinList(p.Interests))
	}

	if s := d.Site; s != nil {
		fmt.Fprintf(&b, "L'article sera publié sur le site web **%s** (**%s**). ", s.Name, s.URL)
		fmt.Fprintf(&b, "Le type de site est **%s** et l'audience cible est: **%s**.\n\n", s.SiteType, joinList(s.TargetAudience))
	}

	b.WriteString("## STRUCTURE DE RÉDACTION\n\n")
	b.WriteString("### Introduction\n")
	b.WriteString("Commence par :\n")
	b.WriteString("- Une accroche avec une [EXPRESSION COURANTE] du secteur\n")
	b.WriteString("- Une situation personnelle utilisant du [JARGON PROFESSIONNEL]\n")
	b.WriteString("- Un questionnement tiré des [QUESTIONS FRÉQUENTES]\n\n")

	b.WriteString("### Corps du Texte\n\n")
	b.WriteString("Pour chaque partie principale :\n\n")
	b.WriteString("1. Début de section\n")
	b.WriteString("- Introduis avec une [EXPRESSION IDIOMATIQUE] du secteur\n")
	b.WriteString("- Pose une [QUESTION FRÉQUENTE] de manière conversationnelle\n")
	b.WriteString("- Utilise un [TERME TECHNIQUE] dans une anecdote\n\n")

	b.WriteString("2. Développement\n")
	b.WriteString("Alterne entre :\n")
	b.WriteString("- Explications techniques avec [VOCABULAIRE SPÉCIFIQUE]\n")
	b.WriteString("- Exemples personnels utilisant les [TERMES ASSOCIÉS]\n")
	b.WriteString("- Solutions pratiques mentionnant les [OUTILS ET ÉQUIPEMENTS]\n")
	b.WriteString("- Réflexions incluant les [CONCEPTS CONNEXES]\n\n")

	b.WriteString("### Conclusion\n")
	b.WriteString("- Résume les points clés\n")
	b.WriteString("- Fournis une perspective personnelle\n")
	b.WriteString("- Termine avec un appel à l'action ou une réflexion\n\n")

	b.WriteString("## STYLE ET TON\n")
	b.WriteString("- Ton conversationnel mais professionnel\n")
	b.WriteString("- Utilisation naturelle du jargon technique\n")
	b.WriteString("- Exemples concrets et anecdotes personnelles\n")
	b.WriteString("- Questions rhétoriques pour engager le lecteur\n\n")

	return b.String()
}

// ComparisonPrompt is the comparison article template.
func ComparisonPrompt(d Data) string {
	var b strings.Builder
	b.WriteString("# PROMPT DE RÉDACTION POUR ARTICLE COMPARATIF\n\n")
	b.WriteString("## INFORMATIONS DE BASE\n")
	fmt.Fprintf(&b, "- Sujet : **%s**\n", d.Title)
	b.WriteString("- Type de contenu : **Comparatif**\n")
	fmt.Fprintf(&b, "- Type d'analyse sémantique : **%s**\n\n", d.SemanticAnalysisType)

	b.WriteString("## STRUCTURE DU COMPARATIF\n\n")
	b.WriteString("### 1. Introduction\n")
	b.WriteString("- Présentation du contexte\n")
	b.WriteString("- Importance de la comparaison\n")
	b.WriteString("- Critères de comparaison\n\n")

	b.WriteString("### 2. Méthodologie\n")
	b.WriteString("- Critères de sélection\n")
	b.WriteString("- Méthode d'évaluation\n")
	b.WriteString("- Points de comparaison\n\n")

	b.WriteString("### 3. Tableau Comparatif\n")
	b.WriteString("Créer un tableau détaillé avec :\n")
	b.WriteString("- Caractéristiques principales\n")
	b.WriteString("- Prix\n")
	b.WriteString("- Avantages\n")
	b.WriteString("- Inconvénients\n")
	b.WriteString("- Note globale\n\n")

	b.WriteString("### 4. Analyse Détaillée\n")
	b.WriteString("Pour chaque élément comparé :\n")
	b.WriteString("- Description détaillée\n")
	b.WriteString("- Points forts\n")
	b.WriteString("- Points faibles\n")
	b.WriteString("- Cas d'usage idéaux\n\n")

	if p := d.Persona; p != nil {
		b.WriteString("## PERSPECTIVE D'EXPERT\n")
		fmt.Fprintf(&b, "En tant qu'expert en **%s**, concentre-toi sur :\n", p.Profession)
		b.WriteString("- Les aspects techniques importants\n")
		b.WriteString("- Les besoins spécifiques du secteur\n")
		b.WriteString("- Les critères de choix professionnels\n\n")
	}

	b.WriteString("## RECOMMANDATIONS\n")
	b.WriteString("- Meilleur choix global\n")
	b.WriteString("- Meilleur rapport qualité/prix\n")
	b.WriteString("- Choix premium\n")
	b.WriteString("- Recommandation pour débutants\n\n")

	b.WriteString("## CONCLUSION\n")
	b.WriteString("- Résumé des points clés\n")
	b.WriteString("- Conseils de choix selon les besoins\n")
	b.WriteString("- Tendances futures\n\n")

	return b.String()
}

// RecipePrompt is the recipe template.
func RecipePrompt(d Data) string {
	var b strings.Builder
	b.WriteString("# PROMPT DE RÉDACTION POUR RECETTE\n\n")
	b.WriteString("## INFORMATIONS DE BASE\n")
	fmt.Fprintf(&b, "- Recette : **%s**\n", d.Title)
	b.WriteString("- Type de contenu : **Recette**\n")
	fmt.Fprintf(&b, "- Type d'analyse sémantique : **%s**\n\n", d.SemanticAnalysisType)

	b.WriteString("## STRUCTURE DE LA RECETTE\n\n")
	b.WriteString("### 1. Introduction\n")
	b.WriteString("- Histoire de la recette\n")
	b.WriteString("- Origine et traditions\n")
	b.WriteString("- Occasions de préparation\n\n")

	b.WriteString("### 2. Informations Techniques\n")
	b.WriteString("- Temps de préparation\n")
	b.WriteString("- Temps de cuisson\n")
	b.WriteString("- Niveau de difficulté\n")
	b.WriteString("- Nombre de personnes\n")
	b.WriteString("- Coût estimé\n\n")

	b.WriteString("### 3. Ingrédients\n")
	b.WriteString("Liste détaillée avec :\n")
	b.WriteString("- Quantités précises\n")
	b.WriteString("- Alternatives possibles\n")
	b.WriteString("- Notes sur la qualité/choix\n\n")

	b.WriteString("### 4. Étapes de Préparation\n")
	b.WriteString("Pour chaque étape :\n")
	b.WriteString("- Instructions détaillées\n")
	b.WriteString("- Temps par étape\n")
	b.WriteString("- Conseils techniques\n")
	b.WriteString("- Points de vigilance\n\n")

	b.WriteString("### 5. Conseils et Astuces\n")
	b.WriteString("- Techniques spécifiques\n")
	b.WriteString("- Erreurs à éviter\n")
	b.WriteString("- Variantes possibles\n")
	b.WriteString("- Conservation\n\n")

	if p := d.Persona; p != nil {
		b.WriteString("## EXPERTISE CULINAIRE\n")
		fmt.Fprintf(&b, "En tant que **%s**, ajoute :\n", p.Profession)
		b.WriteString("- Techniques professionnelles\n")
		b.WriteString("- Secrets de chef\n")
		b.WriteString("- Conseils d'expert\n\n")
	}

	b.WriteString("## PRÉSENTATION\n")
	b.WriteString("- Dressage\n")
	b.WriteString("- Accompagnements suggérés\n")
	b.WriteString("- Accords mets/vins\n\n")

	b.WriteString("## VALEURS NUTRITIONNELLES\n")
	b.WriteString("- Calories\n")
	b.WriteString("- Macronutriments\n")
	b.WriteString("- Régimes spéciaux\n")
	b.WriteString("- Allergènes\n\n")

	return b.String()
}

// ProductPrompt is the product sheet template.
func ProductPrompt(d Data) string {
	var b strings.Builder
	b.WriteString("# PROMPT DE RÉDACTION POUR FICHE PRODUIT\n\n")
	b.WriteString("## INFORMATIONS DE BASE\n")
	fmt.Fprintf(&b, "- Produit : **%s**\n", d.Title)
	b.WriteString("- Type de contenu : **Fiche produit**\n")
	fmt.Fprintf(&b, "- Type d'analyse sémantique : **%s**\n\n", d.SemanticAnalysisType)

	b.WriteString("## STRUCTURE DE LA FICHE PRODUIT\n\n")
	b.WriteString("### 1. Présentation Générale\n")
	b.WriteString("- Description courte et impactante\n")
	b.WriteString("- Marque/Fabricant\n")
	b.WriteString("- Positionnement sur le marché\n")
	b.WriteString("- Public cible\n\n")

	b.WriteString("### 2. Caractéristiques Techniques\n")
	b.WriteString("- Spécifications détaillées\n")
	b.WriteString("- Dimensions et poids\n")
	b.WriteString("- Matériaux utilisés\n")
	b.WriteString("- Technologies employées\n\n")

	b.WriteString("### 3. Avantages et Bénéfices\n")
	b.WriteString("Pour chaque caractéristique clé :\n")
	b.WriteString("- Description technique\n")
	b.WriteString("- Avantage concret\n")
	b.WriteString("- Bénéfice pour l'utilisateur\n")
	b.WriteString("- Exemples d'utilisation\n\n")

	// The expert block sits between sections 3 and 4.
	if p := d.Persona; p != nil {
		b.WriteString("## ANALYSE D'EXPERT\n")
		fmt.Fprintf(&b, "En tant que **%s**, détaille :\n", p.Profession)
		b.WriteString("- Points forts techniques\n")
		b.WriteString("- Applications professionnelles\n")
		b.WriteString("- Comparaison avec la concurrence\n\n")
	}

	b.WriteString("### 4. Informations Pratiques\n")
	b.WriteString("- Prix conseillé\n")
	b.WriteString("- Disponibilité\n")
	b.WriteString("- Garantie\n")
	b.WriteString("- Service après-vente\n\n")

	b.WriteString("### 5. Guide d'Utilisation\n")
	b.WriteString("- Installation/Mise en service\n")
	b.WriteString("- Utilisation quotidienne\n")
	b.WriteString("- Entretien et maintenance\n")
	b.WriteString("- Résolution des problèmes courants\n\n")

	b.WriteString("## OPTIMISATION SEO\n")
	b.WriteString("- Mots-clés principaux\n")
	b.WriteString("- Variations sémantiques\n")
	b.WriteString("- Questions fréquentes\n")
	b.WriteString("- Termes techniques essentiels\n\n")

	return b.String()
}
