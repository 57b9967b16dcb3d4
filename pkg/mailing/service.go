package mailing

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dmitrymomot/mailing/pkg/logger"
	"github.com/dmitrymomot/mailing/pkg/signer"
)

// Service is the mail rendering-and-queueing pipeline plus the dispatch
// engine, bound to its collaborators: storage, outbound transport, the
// template filesystem, and the blob store for dynamic attachments.
type Service struct {
	cfg       Config
	storage   Storage
	transport Transport
	templates *templateSet
	blobs     BlobStore

	mirror        *signer.Signer
	subscriptions *signer.Signer

	log *slog.Logger
	now func() time.Time
}

// New validates the configuration and wires a Service. By default templates
// are read from Config.TemplatesDir on the OS filesystem and dynamic
// attachments go to a local blob store below Config.UploadDir; both can be
// replaced with options.
func New(cfg Config, storage Storage, transport Transport, opts ...Option) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if storage == nil {
		return nil, fmt.Errorf("%w: storage is required", ErrInvalidConfig)
	}
	if transport == nil {
		return nil, fmt.Errorf("%w: transport is required", ErrInvalidConfig)
	}

	s := &Service{
		cfg:           cfg,
		storage:       storage,
		transport:     transport,
		mirror:        signer.New(cfg.SecretKey, cfg.MirrorSalt),
		subscriptions: signer.New(cfg.SecretKey, cfg.SubscriptionSalt),
		log:           logger.NewNop(),
		now:           time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.templates == nil {
		s.templates = newTemplateSet(os.DirFS(cfg.TemplatesDir))
	}
	if s.blobs == nil {
		blobs, err := NewLocalBlobStore(cfg.UploadDir)
		if err != nil {
			return nil, err
		}
		s.blobs = blobs
	}

	return s, nil
}
