package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contentpilot/internal/domain/models"
)

func baseData() Data {
	return Data{
		Title:                "Pain au levain maison",
		Topic:                "la fermentation naturelle",
		ContentType:          models.ContentTypeBlog,
		SemanticAnalysisType: models.SemanticAnalysisNone,
	}
}

func TestContentPrompt_Headers(t *testing.T) {
	tests := []struct {
		contentType models.ContentType
		header      string
		titleLine   string
	}{
		{models.ContentTypeBlog, "# PROMPT DE RÉDACTION AUTHENTIQUE AVEC RICHESSE SÉMANTIQUE\n\n", "- Mot clé : **Pain au levain maison**\n"},
		{models.ContentTypeComparison, "# PROMPT DE RÉDACTION POUR ARTICLE COMPARATIF\n\n", "- Sujet : **Pain au levain maison**\n"},
		{models.ContentTypeRecipe, "# PROMPT DE RÉDACTION POUR RECETTE\n\n", "- Recette : **Pain au levain maison**\n"},
		{models.ContentTypeProduct, "# PROMPT DE RÉDACTION POUR FICHE PRODUIT\n\n", "- Produit : **Pain au levain maison**\n"},
	}

	for _, tt := range tests {
		t.Run(string(tt.contentType), func(t *testing.T) {
			d := baseData()
			d.ContentType = tt.contentType

			got, err := ContentPrompt(d)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(got, tt.header))
			assert.Contains(t, got, tt.titleLine)
			assert.Contains(t, got, "- Type d'analyse sémantique : **none**\n\n")
			assert.True(t, strings.HasSuffix(got, "\n\n"))
		})
	}
}

func TestContentPrompt_UnknownType(t *testing.T) {
	d := baseData()
	d.ContentType = "poem"

	_, err := ContentPrompt(d)
	assert.EqualError(t, err, "Type de contenu non supporté: poem")
}

func TestSemanticPrompt(t *testing.T) {
	d := baseData()

	got, err := SemanticPrompt(d)
	require.NoError(t, err)
	assert.Empty(t, got)

	d.SemanticAnalysisType = models.SemanticAnalysisAI
	got, err = SemanticPrompt(d)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got, `Je vais t'aider à analyser le sujet "la fermentation naturelle" de manière approfondie.`))

	d.SemanticAnalysisType = models.SemanticAnalysisScrape
	got, err = SemanticPrompt(d)
	require.NoError(t, err)
	assert.Contains(t, got, `les meilleurs contenus existants sur le sujet "la fermentation naturelle".`)

	d.SemanticAnalysisType = "vector"
	_, err = SemanticPrompt(d)
	assert.EqualError(t, err, "Type d'analyse sémantique non supporté: vector")
}

func TestGeneratePrompt_WithoutAnalysisIsContentOnly(t *testing.T) {
	d := baseData()
	content, err := ContentPrompt(d)
	require.NoError(t, err)

	got, err := GeneratePrompt(d)
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestGeneratePrompt_WithAnalysis(t *testing.T) {
	d := baseData()
	d.SemanticAnalysisType = models.SemanticAnalysisAI

	got, err := GeneratePrompt(d)
	require.NoError(t, err)

	semantic := AIAnalysisPrompt(d)
	content := BlogPrompt(d)
	assert.Equal(t, semantic+"\n\n"+TransitionSentence+"\n\n"+content, got)

	again, err := GeneratePrompt(d)
	require.NoError(t, err)
	assert.Equal(t, got, again, "prompt generation is deterministic")
}

func TestGeneratePrompt_AllCombinations(t *testing.T) {
	contentTypes := []models.ContentType{
		models.ContentTypeBlog,
		models.ContentTypeComparison,
		models.ContentTypeRecipe,
		models.ContentTypeProduct,
	}
	analyses := []models.SemanticAnalysisType{
		models.SemanticAnalysisNone,
		models.SemanticAnalysisAI,
		models.SemanticAnalysisScrape,
	}

	for _, contentType := range contentTypes {
		for _, analysis := range analyses {
			t.Run(string(contentType)+"/"+string(analysis), func(t *testing.T) {
				d := baseData()
				d.ContentType = contentType
				d.SemanticAnalysisType = analysis
				d.Persona = &PersonaBrief{Profession: "Boulanger", Goals: []string{"réussir sa croûte"}}
				d.Site = &SiteBrief{Name: "Fournil", URL: "https://fournil.example", SiteType: "cuisine"}

				got, err := GeneratePrompt(d)
				require.NoError(t, err)
				again, err := GeneratePrompt(d)
				require.NoError(t, err)
				assert.Equal(t, got, again)
				assert.Contains(t, got, d.Title)

				content, err := ContentPrompt(d)
				require.NoError(t, err)
				semantic, err := SemanticPrompt(d)
				require.NoError(t, err)

				if analysis == models.SemanticAnalysisNone {
					assert.Empty(t, semantic)
					assert.Equal(t, content, got)
					assert.NotContains(t, got, TransitionSentence)
					return
				}

				require.NotEmpty(t, semantic)
				assert.True(t, strings.HasPrefix(got, semantic), "analysis block comes first")
				assert.True(t, strings.HasSuffix(got, content), "content block comes last")
				transition := strings.Index(got, TransitionSentence)
				require.NotEqual(t, -1, transition)
				assert.GreaterOrEqual(t, transition, len(semantic))
				assert.LessOrEqual(t, transition+len(TransitionSentence), len(got)-len(content))
			})
		}
	}
}

func TestBlogPrompt_PersonaAndSite(t *testing.T) {
	d := baseData()
	d.Persona = &PersonaBrief{
		Profession: "boulanger",
		Goals:      []string{"transmettre", "fidéliser"},
		Challenges: []string{"le temps"},
		Interests:  []string{"farines anciennes"},
	}
	d.Site = &SiteBrief{Name: "Mie & Croûte", URL: "https://mie.example", SiteType: "blog", TargetAudience: []string{"amateurs", "pros"}}

	got := BlogPrompt(d)
	assert.Contains(t, got, "### 2. PERSONNAGE ET CONTEXTE\nTu es un expert en **boulanger** qui :\n")
	assert.Contains(t, got, "- A de l'expérience avec les **transmettre, fidéliser**\n")
	assert.Contains(t, got, "L'article sera publié sur le site web **Mie & Croûte** (**https://mie.example**). Le type de site est **blog** et l'audience cible est: **amateurs, pros**.\n\n")

	// Persona block comes before the site line.
	assert.Less(t, strings.Index(got, "PERSONNAGE ET CONTEXTE"), strings.Index(got, "L'article sera publié"))
}

func TestOtherTemplates_IgnoreSite(t *testing.T) {
	d := baseData()
	d.Site = &SiteBrief{Name: "Mie & Croûte", URL: "https://mie.example"}
	d.Persona = &PersonaBrief{Profession: "chef"}

	assert.NotContains(t, ComparisonPrompt(d), "Mie & Croûte")
	assert.Contains(t, ComparisonPrompt(d), "## PERSPECTIVE D'EXPERT\nEn tant qu'expert en **chef**, concentre-toi sur :\n")
	assert.Contains(t, RecipePrompt(d), "## EXPERTISE CULINAIRE\nEn tant que **chef**, ajoute :\n")

	product := ProductPrompt(d)
	assert.Contains(t, product, "## ANALYSE D'EXPERT\nEn tant que **chef**, détaille :\n")
	assert.Less(t, strings.Index(product, "### 3. Avantages"), strings.Index(product, "## ANALYSE D'EXPERT"))
	assert.Less(t, strings.Index(product, "## ANALYSE D'EXPERT"), strings.Index(product, "### 4. Informations Pratiques"))
}

func TestExistingContentBlock(t *testing.T) {
	assert.Empty(t, ExistingContentBlock(nil))

	got := ExistingContentBlock([]PageOutline{
		{URL: "https://a.example/levain", Title: "Le levain", Headings: []string{"Rafraîchi", "Pointage"}},
		{URL: "https://a.example/no-title"},
	})
	assert.Contains(t, got, "### Le levain\nhttps://a.example/levain\n- Rafraîchi\n- Pointage\n")
	assert.Contains(t, got, "### https://a.example/no-title\n")
}

func TestPersonaGenerationPrompt(t *testing.T) {
	got := PersonaGenerationPrompt("une développeuse web")
	assert.True(t, strings.HasPrefix(got, `Crée un persona détaillé pour un projet de marketing de contenu basé sur cette description: "une développeuse web".`))
	assert.True(t, strings.HasSuffix(got, "Réponds uniquement avec un objet JSON valide."))
}

func TestHumanizePrompt(t *testing.T) {
	persona := &models.Persona{
		FirstName: "Marie", LastName: "Curie", Age: 40, Profession: "chimiste",
		LanguageRegister: models.RegisterElevated, Tone: models.ToneSerious, Language: "fr",
	}
	got := HumanizePrompt("# Titre\n\nCorps", persona)
	assert.Contains(t, got, "**Marie Curie**, chimiste de 40 ans.")
	assert.Contains(t, got, "- Style de langage : **soutenu**\n")
	assert.Contains(t, got, "- Tonalité : **sérieux**\n")
	assert.True(t, strings.HasSuffix(got, "# Titre\n\nCorps"))

	assert.NotContains(t, HumanizePrompt("x", nil), "Écris comme")
}

func TestContentTypes(t *testing.T) {
	types := ContentTypes()
	require.Len(t, types, 4)
	assert.Equal(t, "Article de blog", types[0].Label)

	types[0].Label = "mutated"
	assert.Equal(t, "Article de blog", ContentTypes()[0].Label)
}
