package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"contentpilot/internal/config"
	"contentpilot/internal/domain/models"
	"contentpilot/internal/domain/services"
	"contentpilot/internal/events"
	"contentpilot/internal/repository/postgres"
	"contentpilot/internal/service/content"
)

func main() {
	ownerID := flag.String("owner", "", "Owner id (identity provider uid) that receives the demo data")
	runMigrations := flag.Bool("migrate", true, "Apply pending migrations before seeding")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// SAFETY: demo data never goes to production
	if cfg.Environment == "prod" {
		log.Fatal("BLOCKED: seeding is not allowed in the production environment")
	}
	if *ownerID == "" {
		log.Fatal("-owner is required")
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	if *runMigrations {
		if _, err := postgres.Migrate(cfg.DatabaseURL, "up", 0); err != nil {
			log.Fatalf("Failed to migrate: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL, postgres.PoolSettings{MaxConns: 2, MinConns: 1})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	repoConfig := &postgres.RepositoryConfig{Pool: pool, Logger: logger}
	siteRepo := postgres.NewSiteRepository(repoConfig)
	personaRepo := postgres.NewPersonaRepository(repoConfig)
	projectRepo := postgres.NewProjectRepository(repoConfig)
	articleRepo := postgres.NewArticleRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool, logger)

	// Services run the same validation and counters as the API
	sites := content.NewSiteService(siteRepo, projectRepo, txManager, nil, logger)
	personas := content.NewPersonaService(personaRepo, siteRepo, projectRepo, articleRepo, txManager, nil, cfg.PersonaModel, logger)
	projects := content.NewProjectService(projectRepo, siteRepo, personaRepo, logger)
	articles := content.NewArticleService(articleRepo, projectRepo, siteRepo, personaRepo, txManager, events.NewLogPublisher(logger), logger)

	if err := seed(ctx, *ownerID, sites, personas, projects, articles); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
	log.Println("Seeding complete")
}

func seed(
	ctx context.Context,
	ownerID string,
	sites services.SiteService,
	personas services.PersonaService,
	projects services.ProjectService,
	articles services.ArticleService,
) error {
	sitemap := "https://cuisine-de-saison.example/sitemap.xml"
	site, err := sites.CreateSite(ctx, ownerID, &services.CreateSiteRequest{
		Name:           "Cuisine de saison",
		URL:            "https://cuisine-de-saison.example",
		SitemapURL:     &sitemap,
		Type:           models.SiteTypeCustom,
		Category:       models.SiteCategoryBlog,
		TargetAudience: []string{"cuisiniers amateurs", "familles"},
	})
	if err != nil {
		return err
	}
	log.Printf("Created site %s (%s)", site.Name, site.ID)

	persona, err := personas.CreatePersona(ctx, ownerID, &services.PersonaRequest{
		FirstName:          "Claire",
		LastName:           "Martin",
		Age:                38,
		Profession:         "Infirmière",
		ExpertiseLevel:     models.ExpertiseNovice,
		Goals:              []string{"cuisiner rapidement en semaine"},
		Challenges:         []string{"peu de temps", "budget serré"},
		Interests:          []string{"légumes de saison", "batch cooking"},
		LanguageRegister:   models.RegisterSimple,
		Tone:               models.TonePedagogical,
		InformationSources: []string{"blogs", "Instagram"},
		Language:           "fr",
		SiteID:             &site.ID,
	})
	if err != nil {
		return err
	}
	log.Printf("Created persona %s (%s)", persona.DisplayName(), persona.ID)

	project, err := projects.CreateProject(ctx, ownerID, &services.CreateProjectRequest{
		Name:      "Printemps",
		SiteID:    site.ID,
		PersonaID: &persona.ID,
	})
	if err != nil {
		return err
	}
	log.Printf("Created project %s (%s)", project.Name, project.ID)

	drafts := []services.CreateArticleRequest{
		{
			Title:                "Asperges vertes rôties au parmesan",
			ContentType:          models.ContentTypeRecipe,
			SemanticAnalysisType: models.SemanticAnalysisNone,
			Humanize:             true,
		},
		{
			Title:                "Que cuisiner en avril ?",
			Topic:                "légumes de saison avril",
			ContentType:          models.ContentTypeBlog,
			SemanticAnalysisType: models.SemanticAnalysisAI,
		},
	}
	for i := range drafts {
		article, err := articles.CreateArticle(ctx, ownerID, project.ID, &drafts[i])
		if err != nil {
			return err
		}
		log.Printf("Created article %q (%s)", article.Title, article.ID)
	}
	return nil
}
