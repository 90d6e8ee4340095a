package models

import "time"

type PaymentMethod string

const (
	PaymentCard   PaymentMethod = "card"
	PaymentSEPA   PaymentMethod = "sepa"
	PaymentPayPal PaymentMethod = "paypal"
)

// WordPressCredentials authenticate against the WordPress REST API with an application password.
type WordPressCredentials struct {
	URL         string `json:"url"`
	Username    string `json:"username"`
	AppPassword string `json:"app_password"`
}

// Billing holds invoicing details; which fields apply depends on PaymentMethod.
type Billing struct {
	Company       string        `json:"company"`
	Address       string        `json:"address"`
	VATNumber     string        `json:"vat_number"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	CardHolder    string        `json:"card_holder,omitempty"`
	CardLast4     string        `json:"card_last4,omitempty"`
	CardExpiry    string        `json:"card_expiry,omitempty"`
	IBAN          string        `json:"iban,omitempty"`
	BIC           string        `json:"bic,omitempty"`
	PayPalEmail   string        `json:"paypal_email,omitempty"`
}

// UserSettings is the per-user preferences record.
type UserSettings struct {
	UserID    string                `json:"user_id" db:"user_id"`
	Language  string                `json:"language" db:"language"`
	Theme     string                `json:"theme" db:"theme"`
	AIAPIKey  *string               `json:"ai_api_key,omitempty" db:"ai_api_key"`
	WordPress *WordPressCredentials `json:"wordpress,omitempty" db:"wordpress"`
	Billing   *Billing              `json:"billing,omitempty" db:"billing"`
	CreatedAt time.Time             `json:"created_at" db:"created_at"`
	UpdatedAt time.Time             `json:"updated_at" db:"updated_at"`
}

const (
	DefaultLanguage = "fr"
	DefaultTheme    = "light"
)

// Masked returns a copy safe to send to clients: secrets keep only their last four characters.
func (s *UserSettings) Masked() *UserSettings {
	out := *s
	if s.AIAPIKey != nil {
		masked := MaskSecret(*s.AIAPIKey)
		out.AIAPIKey = &masked
	}
	if s.WordPress != nil {
		wp := *s.WordPress
		wp.AppPassword = MaskSecret(wp.AppPassword)
		out.WordPress = &wp
	}
	if s.Billing != nil {
		b := *s.Billing
		b.IBAN = MaskSecret(b.IBAN)
		out.Billing = &b
	}
	return &out
}

// MaskSecret hides all but the last four characters.
func MaskSecret(secret string) string {
	if secret == "" {
		return ""
	}
	r := []rune(secret)
	if len(r) <= 4 {
		return "****"
	}
	return "****" + string(r[len(r)-4:])
}
