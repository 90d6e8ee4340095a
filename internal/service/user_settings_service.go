package service

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"contentpilot/internal/domain"
	"contentpilot/internal/domain/models"
	"contentpilot/internal/domain/repositories"
	"contentpilot/internal/domain/services"
)

var (
	supportedLanguages = []interface{}{"en", "fr"}
	supportedThemes    = []interface{}{"light", "dark"}

	httpURL    = regexp.MustCompile(`^https?://`)
	cardLast4  = regexp.MustCompile(`^[0-9]{4}$`)
	cardExpiry = regexp.MustCompile(`^(0[1-9]|1[0-2])/[0-9]{2}$`)
	ibanFormat = regexp.MustCompile(`^[A-Z]{2}[0-9]{2}[A-Z0-9]{11,30}$`)
	bicFormat  = regexp.MustCompile(`^[A-Z]{6}[A-Z0-9]{2}([A-Z0-9]{3})?$`)
)

// UserSettingsService implements the UserSettingsService interface
type UserSettingsService struct {
	settingsRepo repositories.UserSettingsRepository
	logger       *slog.Logger
}

// NewUserSettingsService creates a new user settings service
func NewUserSettingsService(
	settingsRepo repositories.UserSettingsRepository,
	logger *slog.Logger,
) services.UserSettingsService {
	return &UserSettingsService{
		settingsRepo: settingsRepo,
		logger:       logger,
	}
}

func defaultSettings(userID string) *models.UserSettings {
	now := time.Now().UTC()
	return &models.UserSettings{
		UserID:    userID,
		Language:  models.DefaultLanguage,
		Theme:     models.DefaultTheme,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// GetSettings retrieves settings for a user; the returned secrets are masked
func (s *UserSettingsService) GetSettings(ctx context.Context, ownerID string) (*models.UserSettings, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, fmt.Errorf("%w: missing owner", domain.ErrUnauthorized)
	}

	settings, err := s.settingsRepo.GetByUserID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}

	// If no settings exist yet, return defaults
	if settings == nil {
		s.logger.Debug("no settings found, returning defaults", "user_id", ownerID)
		settings = defaultSettings(ownerID)
	}

	return settings.Masked(), nil
}

// UpdateSettings applies a partial update and returns the masked result
func (s *UserSettingsService) UpdateSettings(ctx context.Context, ownerID string, req *services.UpdateSettingsRequest) (*models.UserSettings, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, fmt.Errorf("%w: missing owner", domain.ErrUnauthorized)
	}

	existing, err := s.settingsRepo.GetByUserID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("get existing settings: %w", err)
	}
	if existing == nil {
		existing = defaultSettings(ownerID)
	}

	if req.Language != nil {
		existing.Language = strings.TrimSpace(*req.Language)
	}
	if req.Theme != nil {
		existing.Theme = strings.TrimSpace(*req.Theme)
	}

	// Tri-state: only update if field was present in request
	if req.AIAPIKey.Present {
		existing.AIAPIKey = nil
		if req.AIAPIKey.Value != nil {
			if key := strings.TrimSpace(*req.AIAPIKey.Value); key != "" {
				existing.AIAPIKey = &key
			}
		}
	}

	switch {
	case req.ClearWP:
		existing.WordPress = nil
	case req.WordPress != nil:
		wp := *req.WordPress
		wp.URL = strings.TrimRight(strings.TrimSpace(wp.URL), "/")
		wp.Username = strings.TrimSpace(wp.Username)
		// A masked password echoed back by the client keeps the stored one
		if existing.WordPress != nil && (wp.AppPassword == "" || strings.HasPrefix(wp.AppPassword, "****")) {
			wp.AppPassword = existing.WordPress.AppPassword
		}
		existing.WordPress = &wp
	}

	if req.Billing != nil {
		billing := normalizeBilling(*req.Billing)
		if existing.Billing != nil && strings.HasPrefix(billing.IBAN, "****") {
			billing.IBAN = existing.Billing.IBAN
		}
		existing.Billing = &billing
	}

	if err := validateSettings(existing); err != nil {
		return nil, domain.ValidationFailed(err)
	}

	existing.UpdatedAt = time.Now().UTC()

	if err := s.settingsRepo.Upsert(ctx, existing); err != nil {
		return nil, fmt.Errorf("upsert settings: %w", err)
	}

	s.logger.Info("user settings updated",
		"user_id", ownerID,
		"has_language", req.Language != nil,
		"has_theme", req.Theme != nil,
		"has_ai_api_key", req.AIAPIKey.Present,
		"has_wordpress", req.WordPress != nil || req.ClearWP,
		"has_billing", req.Billing != nil,
	)

	return existing.Masked(), nil
}

func normalizeBilling(b models.Billing) models.Billing {
	b.Company = strings.TrimSpace(b.Company)
	b.Address = strings.TrimSpace(b.Address)
	b.VATNumber = strings.TrimSpace(b.VATNumber)
	b.CardHolder = strings.TrimSpace(b.CardHolder)
	b.CardLast4 = strings.TrimSpace(b.CardLast4)
	b.CardExpiry = strings.TrimSpace(b.CardExpiry)
	b.IBAN = strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(b.IBAN), " ", ""))
	b.BIC = strings.ToUpper(strings.TrimSpace(b.BIC))
	b.PayPalEmail = strings.TrimSpace(b.PayPalEmail)
	return b
}

func validateSettings(s *models.UserSettings) error {
	errs := validation.Errors{
		"language": validation.Validate(s.Language, validation.Required, validation.In(supportedLanguages...)),
		"theme":    validation.Validate(s.Theme, validation.Required, validation.In(supportedThemes...)),
	}
	if s.WordPress != nil {
		wp := s.WordPress
		errs["wordpress"] = validation.ValidateStruct(wp,
			validation.Field(&wp.URL, validation.Required, validation.Match(httpURL).Error("must be an http(s) URL")),
			validation.Field(&wp.Username, validation.Required),
			validation.Field(&wp.AppPassword, validation.Required),
		)
	}
	if s.Billing != nil {
		errs["billing"] = validateBilling(s.Billing)
	}
	return errs.Filter()
}

// validateBilling requires the fields of the selected payment method only.
func validateBilling(b *models.Billing) error {
	card := b.PaymentMethod == models.PaymentCard
	sepa := b.PaymentMethod == models.PaymentSEPA
	paypal := b.PaymentMethod == models.PaymentPayPal

	return validation.ValidateStruct(b,
		validation.Field(&b.PaymentMethod, validation.Required, validation.In(
			models.PaymentCard, models.PaymentSEPA, models.PaymentPayPal,
		)),
		validation.Field(&b.CardHolder, validation.When(card, validation.Required)),
		validation.Field(&b.CardLast4, validation.When(card, validation.Required, validation.Match(cardLast4).Error("must be 4 digits"))),
		validation.Field(&b.CardExpiry, validation.When(card, validation.Required, validation.Match(cardExpiry).Error("must be MM/YY"))),
		validation.Field(&b.IBAN, validation.When(sepa, validation.Required, validation.Match(ibanFormat).Error("must be a valid IBAN"))),
		validation.Field(&b.BIC, validation.When(sepa, validation.Match(bicFormat).Error("must be a valid BIC"))),
		validation.Field(&b.PayPalEmail, validation.When(paypal, validation.Required, is.EmailFormat)),
	)
}
