package mailing

import (
	"io/fs"
	"log/slog"
	"time"
)

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger used for queue warnings and dispatch failures.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithTemplateFS reads campaign templates from the given filesystem instead
// of Config.TemplatesDir, e.g. an embed.FS or a fstest.MapFS in tests.
func WithTemplateFS(fsys fs.FS) Option {
	return func(s *Service) {
		if fsys != nil {
			s.templates = newTemplateSet(fsys)
		}
	}
}

// WithBlobStore replaces the default local-directory blob store for dynamic
// attachment content.
func WithBlobStore(store BlobStore) Option {
	return func(s *Service) {
		if store != nil {
			s.blobs = store
		}
	}
}

// WithClock overrides the time source, for deterministic tests of
// scheduling and the batch sent timestamp.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}
