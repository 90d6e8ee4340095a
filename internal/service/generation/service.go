// Package generation runs the article generation pipeline: semantic analysis,
// content, then an optional humanize pass. It owns the "generation" status.
package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	mstream "github.com/haowjy/meridian-stream-go"

	"contentpilot/internal/domain"
	"contentpilot/internal/domain/models"
	"contentpilot/internal/domain/repositories"
	"contentpilot/internal/domain/services"
	"contentpilot/internal/service/content"
	"contentpilot/internal/service/markup"
	"contentpilot/internal/service/prompt"
)

// Progress event types sent on the run's stream.
const (
	EventStageStarted        = "stage_started"
	EventStageCompleted      = "stage_completed"
	EventGenerationCompleted = "generation_completed"
	EventGenerationFailed    = "generation_failed"
)

// InterruptedMessage is recorded on articles left in generation by a previous process.
const InterruptedMessage = "generation interrupted"

const (
	analysisTemperature = 0.7
	contentTemperature  = 0.7
	humanizeTemperature = 0.9
)

// Config selects models and bounds each stage.
type Config struct {
	DefaultModel  string
	HumanizeModel string
	StageTimeout  time.Duration
}

// OutlineSource supplies existing page outlines for scrape analyses.
type OutlineSource interface {
	Outline(ctx context.Context, site *models.Site, topic string) ([]prompt.PageOutline, error)
}

// Service implements services.GenerationService.
type Service struct {
	articleRepo repositories.ArticleRepository
	contexts    content.ContextLoader
	generators  services.GeneratorResolver
	publisher   services.ArticlePublisher
	outlines    OutlineSource
	converter   *markup.Converter
	events      services.EventPublisher
	registry    *mstream.Registry
	cfg         Config
	logger      *slog.Logger

	runs sync.Map // article ID -> *run
}

// run is one live pipeline execution.
type run struct {
	streamID string
	cancel   func()
	done     chan struct{}
}

var _ services.GenerationService = (*Service)(nil)

// NewService creates the generation service. publisher may be nil to disable auto-publish.
func NewService(
	articleRepo repositories.ArticleRepository,
	projectRepo repositories.ProjectRepository,
	siteRepo repositories.SiteRepository,
	personaRepo repositories.PersonaRepository,
	generators services.GeneratorResolver,
	publisher services.ArticlePublisher,
	outlines OutlineSource,
	events services.EventPublisher,
	registry *mstream.Registry,
	cfg Config,
	logger *slog.Logger,
) *Service {
	if cfg.StageTimeout <= 0 {
		cfg.StageTimeout = 3 * time.Minute
	}
	if cfg.HumanizeModel == "" {
		cfg.HumanizeModel = cfg.DefaultModel
	}
	return &Service{
		articleRepo: articleRepo,
		contexts:    content.ContextLoader{Projects: projectRepo, Sites: siteRepo, Personas: personaRepo},
		generators:  generators,
		publisher:   publisher,
		outlines:    outlines,
		converter:   markup.NewConverter(),
		events:      events,
		registry:    registry,
		cfg:         cfg,
		logger:      logger,
	}
}

// StartGeneration moves the article to "generation" and runs the pipeline on a
// registered stream, detached from the caller's context.
func (s *Service) StartGeneration(ctx context.Context, ownerID, articleID string) (*models.Article, error) {
	r := &run{
		streamID: articleID + "/" + uuid.NewString(),
		done:     make(chan struct{}),
	}
	stream := mstream.NewStream(r.streamID, func(streamCtx context.Context, send func(mstream.Event)) error {
		defer s.finish(articleID, r)
		_, err := s.execute(streamCtx, ownerID, articleID, streamProgress(send))
		return err
	})
	r.cancel = func() { stream.Cancel() }

	article, err := s.begin(ctx, ownerID, articleID, r)
	if err != nil {
		return nil, err
	}

	// Register before starting so a cancel request can never miss the stream
	s.registry.Register(stream)
	go stream.Start()

	s.logger.Info("generation started",
		"article_id", articleID,
		"stream_id", r.streamID,
		"user_id", ownerID,
	)
	return article, nil
}

// Run executes the pipeline synchronously on ctx.
func (s *Service) Run(ctx context.Context, ownerID, articleID string, progress services.ProgressFunc) (*models.Article, error) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	r := &run{streamID: articleID, cancel: cancel, done: make(chan struct{})}
	if _, err := s.begin(ctx, ownerID, articleID, r); err != nil {
		return nil, err
	}
	defer s.finish(articleID, r)

	return s.execute(runCtx, ownerID, articleID, progress)
}

// CancelGeneration stops a live run. The article returns to draft with the
// stages completed so far.
func (s *Service) CancelGeneration(ctx context.Context, ownerID, articleID string) error {
	if strings.TrimSpace(ownerID) == "" {
		return fmt.Errorf("%w: missing owner", domain.ErrUnauthorized)
	}
	if _, err := s.articleRepo.GetByID(ctx, articleID, ownerID); err != nil {
		return err
	}

	value, ok := s.runs.Load(articleID)
	if !ok {
		return fmt.Errorf("%w: no generation running for article %s", domain.ErrNotFound, articleID)
	}
	r := value.(*run)

	if stream := s.registry.Get(r.streamID); stream != nil {
		stream.Cancel()
	} else if r.cancel != nil {
		r.cancel()
	}

	s.logger.Info("generation cancel requested", "article_id", articleID, "user_id", ownerID)
	return nil
}

// RecoverStale returns articles left in "generation" by a previous process to draft.
func (s *Service) RecoverStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	n, err := s.articleRepo.ResetStaleGenerations(ctx, time.Now().UTC().Add(-olderThan), InterruptedMessage)
	if err != nil {
		return 0, fmt.Errorf("reset stale generations: %w", err)
	}
	if n > 0 {
		s.logger.Warn("recovered interrupted generations", "count", n)
	}
	return n, nil
}

// Wait blocks until the article's live run ends or ctx is done.
func (s *Service) Wait(ctx context.Context, articleID string) error {
	value, ok := s.runs.Load(articleID)
	if !ok {
		return nil
	}
	select {
	case <-value.(*run).done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// begin claims the article for r and marks it as generating.
func (s *Service) begin(ctx context.Context, ownerID, articleID string, r *run) (*models.Article, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, fmt.Errorf("%w: missing owner", domain.ErrUnauthorized)
	}

	article, err := s.articleRepo.GetByID(ctx, articleID, ownerID)
	if err != nil {
		return nil, err
	}
	switch article.Status {
	case models.ArticleStatusGeneration:
		return nil, &domain.ConflictError{Message: "article is already being generated", ResourceType: "article", ResourceID: article.ID}
	case models.ArticleStatusPublished:
		return nil, &domain.ConflictError{Message: "published articles cannot be regenerated", ResourceType: "article", ResourceID: article.ID}
	}

	if _, loaded := s.runs.LoadOrStore(articleID, r); loaded {
		return nil, &domain.ConflictError{Message: "article is already being generated", ResourceType: "article", ResourceID: article.ID}
	}

	article.Status = models.ArticleStatusGeneration
	article.GenerationError = nil
	article.GenerationStage = nil
	article.UpdatedAt = time.Now().UTC()
	if err := s.articleRepo.Update(ctx, article); err != nil {
		s.runs.Delete(articleID)
		return nil, err
	}
	return article, nil
}

func (s *Service) finish(articleID string, r *run) {
	s.runs.CompareAndDelete(articleID, r)
	close(r.done)
}

// execute runs every stage, checkpointing after each one. Any failure returns
// the article to draft with generation_error set and partial results kept.
func (s *Service) execute(ctx context.Context, ownerID, articleID string, progress services.ProgressFunc) (*models.Article, error) {
	if progress == nil {
		progress = func(string, map[string]any) {}
	}

	article, err := s.articleRepo.GetByID(ctx, articleID, ownerID)
	if err != nil {
		return nil, s.fail(ctx, nil, "", err, progress)
	}
	actx, err := s.contexts.Load(ctx, ownerID, article)
	if err != nil {
		return nil, s.fail(ctx, article, "", err, progress)
	}
	data := actx.PromptData()

	generator, model, err := s.generators.Resolve(ctx, ownerID, s.cfg.DefaultModel)
	if err != nil {
		return nil, s.fail(ctx, article, "", err, progress)
	}

	// semantic
	var semanticPrompt string
	if article.SemanticAnalysisType != models.SemanticAnalysisNone {
		if err := s.stage(ctx, article, models.StageSemantic, progress); err != nil {
			return nil, s.fail(ctx, article, models.StageSemantic, err, progress)
		}

		semanticPrompt, err = prompt.SemanticPrompt(data)
		if err != nil {
			return nil, s.fail(ctx, article, models.StageSemantic, err, progress)
		}
		if article.SemanticAnalysisType == models.SemanticAnalysisScrape && s.outlines != nil {
			pages, err := s.outlines.Outline(ctx, actx.Site, article.Topic)
			if err != nil {
				s.logger.Warn("existing content unavailable, analysing without it",
					"article_id", article.ID,
					"site_id", actx.Site.ID,
					"error", err,
				)
			}
			semanticPrompt += prompt.ExistingContentBlock(pages)
		}

		analysis, err := s.generate(ctx, generator, model, analysisTemperature, services.Message{Role: "user", Content: semanticPrompt})
		if err != nil {
			return nil, s.fail(ctx, article, models.StageSemantic, err, progress)
		}
		article.SemanticAnalysis = analysis
		if err := s.checkpoint(ctx, article, models.StageSemantic, progress); err != nil {
			return nil, s.fail(ctx, article, models.StageSemantic, err, progress)
		}
	}

	// content
	if err := s.stage(ctx, article, models.StageContent, progress); err != nil {
		return nil, s.fail(ctx, article, models.StageContent, err, progress)
	}
	contentPrompt, err := prompt.ContentPrompt(data)
	if err != nil {
		return nil, s.fail(ctx, article, models.StageContent, err, progress)
	}
	messages := []services.Message{{Role: "user", Content: contentPrompt}}
	if semanticPrompt != "" {
		messages = []services.Message{
			{Role: "user", Content: semanticPrompt},
			{Role: "assistant", Content: article.SemanticAnalysis},
			{Role: "user", Content: prompt.TransitionSentence + "\n\n" + contentPrompt},
		}
	}
	body, err := s.generate(ctx, generator, model, contentTemperature, messages...)
	if err != nil {
		return nil, s.fail(ctx, article, models.StageContent, err, progress)
	}
	if err := s.setContent(article, body); err != nil {
		return nil, s.fail(ctx, article, models.StageContent, err, progress)
	}
	if err := s.checkpoint(ctx, article, models.StageContent, progress); err != nil {
		return nil, s.fail(ctx, article, models.StageContent, err, progress)
	}

	// humanize
	if article.Humanize {
		if err := s.stage(ctx, article, models.StageHumanize, progress); err != nil {
			return nil, s.fail(ctx, article, models.StageHumanize, err, progress)
		}
		humanizer, humanizeModel, err := s.generators.Resolve(ctx, ownerID, s.cfg.HumanizeModel)
		if err != nil {
			return nil, s.fail(ctx, article, models.StageHumanize, err, progress)
		}
		rewritten, err := s.generate(ctx, humanizer, humanizeModel, humanizeTemperature,
			services.Message{Role: "user", Content: prompt.HumanizePrompt(article.Content, actx.Persona)})
		if err != nil {
			return nil, s.fail(ctx, article, models.StageHumanize, err, progress)
		}
		if err := s.setContent(article, rewritten); err != nil {
			return nil, s.fail(ctx, article, models.StageHumanize, err, progress)
		}
		if err := s.checkpoint(ctx, article, models.StageHumanize, progress); err != nil {
			return nil, s.fail(ctx, article, models.StageHumanize, err, progress)
		}
	}

	if err := s.articleRepo.EndGeneration(ctx, article.ID, ownerID, nil); err != nil {
		return nil, s.fail(ctx, article, "", err, progress)
	}
	// other requests may have changed the row during the run
	article, err = s.articleRepo.GetByID(ctx, articleID, ownerID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("generation completed",
		"article_id", article.ID,
		"word_count", article.WordCount,
		"user_id", ownerID,
	)
	progress(EventGenerationCompleted, map[string]any{"article_id": article.ID, "word_count": article.WordCount})
	s.publish(ctx, article, "")

	if actx.Site.AutoPublish && actx.Site.Type == models.SiteTypeWordPress && s.publisher != nil {
		published, err := s.publisher.PublishArticle(ctx, ownerID, article.ID, nil)
		if err != nil {
			s.logger.Error("auto-publish failed",
				"article_id", article.ID,
				"site_id", actx.Site.ID,
				"error", err,
			)
			return article, nil
		}
		return published, nil
	}

	return article, nil
}

func (s *Service) generate(ctx context.Context, generator services.TextGenerator, model string, temperature float64, messages ...services.Message) (string, error) {
	stageCtx, cancel := context.WithTimeout(ctx, s.cfg.StageTimeout)
	defer cancel()

	resp, err := generator.Generate(stageCtx, &services.GenerateRequest{
		Model:       model,
		Messages:    messages,
		Temperature: &temperature,
	})
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", fmt.Errorf("%w: %s returned an empty response", domain.ErrUpstream, generator.Name())
	}

	s.logger.Debug("llm response",
		"provider", generator.Name(),
		"model", resp.Model,
		"input_tokens", resp.InputTokens,
		"output_tokens", resp.OutputTokens,
		"stop_reason", resp.StopReason,
	)
	return text, nil
}

func (s *Service) setContent(article *models.Article, raw string) error {
	body, err := s.converter.Normalize(raw)
	if err != nil {
		return err
	}
	article.Content = body
	article.WordCount = markup.CountWords(body)
	return nil
}

// stage records the stage being entered.
func (s *Service) stage(ctx context.Context, article *models.Article, name string, progress services.ProgressFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	stage := name
	article.GenerationStage = &stage
	if err := s.save(ctx, article); err != nil {
		return err
	}
	progress(EventStageStarted, map[string]any{"stage": name})
	return nil
}

// checkpoint stores the generated columns after a completed stage.
func (s *Service) checkpoint(ctx context.Context, article *models.Article, name string, progress services.ProgressFunc) error {
	if err := s.save(ctx, article); err != nil {
		return err
	}
	progress(EventStageCompleted, map[string]any{"stage": name, "word_count": article.WordCount})
	return nil
}

// save writes the run's own columns only; the rest of the row may be edited
// concurrently (a deleted persona clears its reference, for example).
func (s *Service) save(ctx context.Context, article *models.Article) error {
	article.UpdatedAt = time.Now().UTC()
	return s.articleRepo.SaveGenerationCheckpoint(ctx, article.ID, article.UserID, models.GenerationCheckpoint{
		Stage:            article.GenerationStage,
		SemanticAnalysis: article.SemanticAnalysis,
		Content:          article.Content,
		WordCount:        article.WordCount,
	})
}

// fail returns the article to draft and records why. It uses a context that
// survives cancellation of the run.
func (s *Service) fail(ctx context.Context, article *models.Article, stage string, cause error, progress services.ProgressFunc) error {
	message := failureMessage(stage, cause)
	s.logger.Error("generation failed",
		"stage", stage,
		"error", cause,
	)
	progress(EventGenerationFailed, map[string]any{"stage": stage, "error": message})

	if article == nil {
		return cause
	}

	storeCtx := context.WithoutCancel(ctx)
	article.Status = models.ArticleStatusDraft
	article.GenerationStage = nil
	article.GenerationError = &message
	article.UpdatedAt = time.Now().UTC()
	if err := s.articleRepo.EndGeneration(storeCtx, article.ID, article.UserID, &message); err != nil {
		s.logger.Error("failed to record generation failure",
			"article_id", article.ID,
			"error", err,
		)
	}
	s.publish(storeCtx, article, message)
	return cause
}

func failureMessage(stage string, cause error) string {
	var msg string
	switch {
	case errors.Is(cause, context.Canceled):
		msg = "generation cancelled"
	case errors.Is(cause, context.DeadlineExceeded):
		msg = "generation timed out"
	default:
		msg = cause.Error()
	}
	if stage != "" {
		msg = stage + ": " + msg
	}
	return msg
}

func (s *Service) publish(ctx context.Context, article *models.Article, failure string) {
	event := models.Event{
		Type:       models.EventArticleGenerated,
		UserID:     article.UserID,
		ArticleID:  article.ID,
		ProjectID:  article.ProjectID,
		Status:     string(article.Status),
		Error:      failure,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn("event publish failed", "type", event.Type, "article_id", article.ID, "error", err)
	}
}

// streamProgress sends progress events on an mstream stream as JSON.
func streamProgress(send func(mstream.Event)) services.ProgressFunc {
	return func(eventType string, data map[string]any) {
		payload, err := json.Marshal(data)
		if err != nil {
			return
		}
		send(mstream.NewEvent(payload).WithType(eventType))
	}
}
