package mailing

import "fmt"

// placeholderSecret is the built-in signing key. It exists only so local
// development works out of the box; Validate refuses it unless explicitly
// allowed, and production deployments must always override it.
const placeholderSecret = "insecure-placeholder-change-me"

// Config holds the engine's persisted configuration. All values are
// supplied by the embedding application at startup; Validate fails fast on
// anything missing or security-sensitive left at its placeholder.
type Config struct {
	// BaseURL is the public root for mirror and subscription-management
	// links, e.g. "https://example.com".
	BaseURL string `env:"MAILING_BASE_URL,required"`

	// TemplatesDir is the root for campaign template files.
	TemplatesDir string `env:"MAILING_TEMPLATES_DIR" envDefault:"templates/mailing"`

	// AttachmentsDir is the root for static attachment files.
	AttachmentsDir string `env:"MAILING_ATTACHMENTS_DIR" envDefault:"attachments/mailing"`

	// UploadDir is where dynamic attachment content is persisted at queue
	// time (used by the default local blob store).
	UploadDir string `env:"MAILING_UPLOAD_DIR" envDefault:"uploads/mailing"`

	// SubjectPrefix is prepended to subjects of campaigns that opt in via
	// PrefixSubject. Empty means no prefixing.
	SubjectPrefix string `env:"MAILING_SUBJECT_PREFIX"`

	// DefaultFrom is applied when neither the campaign nor the caller sets
	// a From header.
	DefaultFrom string `env:"MAILING_DEFAULT_FROM,required"`

	// FailSilently controls the unknown-campaign-key policy: true (the
	// default) logs a warning and queues nothing; false surfaces
	// ErrCampaignNotFound.
	FailSilently bool `env:"MAILING_FAIL_SILENTLY" envDefault:"true"`

	// SecretKey signs mirror and subscription-management tokens.
	SecretKey string `env:"MAILING_SECRET_KEY" envDefault:"insecure-placeholder-change-me"`

	// AllowPlaceholderSecret permits the built-in secret key, for tests
	// and local development only.
	AllowPlaceholderSecret bool `env:"MAILING_ALLOW_PLACEHOLDER_SECRET" envDefault:"false"`

	// MirrorSalt and SubscriptionSalt namespace the two token types so one
	// can never be replayed as the other.
	MirrorSalt       string `env:"MAILING_MIRROR_SALT" envDefault:"mailing.mirror"`
	SubscriptionSalt string `env:"MAILING_SUBSCRIPTION_SALT" envDefault:"mailing.subscription"`

	// SendConcurrency bounds parallel transport calls during a dispatch
	// pass. 1 (the default) keeps the pass strictly sequential.
	SendConcurrency int `env:"MAILING_SEND_CONCURRENCY" envDefault:"1"`
}

// Validate checks the configuration at startup so misconfiguration is
// caught before any mail is queued.
func (c Config) Validate() error {
	switch {
	case c.BaseURL == "":
		return fmt.Errorf("%w: BaseURL is required", ErrInvalidConfig)
	case c.DefaultFrom == "":
		return fmt.Errorf("%w: DefaultFrom is required", ErrInvalidConfig)
	case c.TemplatesDir == "":
		return fmt.Errorf("%w: TemplatesDir is required", ErrInvalidConfig)
	case c.AttachmentsDir == "":
		return fmt.Errorf("%w: AttachmentsDir is required", ErrInvalidConfig)
	case c.UploadDir == "":
		return fmt.Errorf("%w: UploadDir is required", ErrInvalidConfig)
	case c.SecretKey == "":
		return fmt.Errorf("%w: SecretKey is required", ErrInvalidConfig)
	case c.SecretKey == placeholderSecret && !c.AllowPlaceholderSecret:
		return fmt.Errorf("%w: SecretKey is the insecure placeholder", ErrInvalidConfig)
	case c.MirrorSalt == "" || c.SubscriptionSalt == "":
		return fmt.Errorf("%w: signing salts are required", ErrInvalidConfig)
	case c.SendConcurrency < 0:
		return fmt.Errorf("%w: SendConcurrency must not be negative", ErrInvalidConfig)
	}
	return nil
}
