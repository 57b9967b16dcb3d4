package mailing

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// defaultMIMEType is the fallback for content whose type cannot be guessed.
const defaultMIMEType = "application/octet-stream"

// BlobStore persists dynamic attachment content. Dynamic bytes are written
// at queue time because the caller's reader may not survive until the
// dispatch pass; static attachments never touch the store.
type BlobStore interface {
	Save(ctx context.Context, key string, content []byte) error
	Open(ctx context.Context, key string) ([]byte, error)
}

// LocalBlobStore stores blobs as files below a root directory.
type LocalBlobStore struct {
	root string
}

// NewLocalBlobStore creates the root directory if needed.
func NewLocalBlobStore(root string) (*LocalBlobStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("blob store root: %w", err)
	}
	return &LocalBlobStore{root: root}, nil
}

func (s *LocalBlobStore) Save(ctx context.Context, key string, content []byte) error {
	return os.WriteFile(filepath.Join(s.root, filepath.Base(key)), content, 0o644)
}

func (s *LocalBlobStore) Open(ctx context.Context, key string) ([]byte, error) {
	return os.ReadFile(filepath.Join(s.root, filepath.Base(key)))
}

// guessMIMEType resolves an attachment's MIME type: explicit value first,
// then the filename extension, then content sniffing, which itself falls
// back to application/octet-stream.
func guessMIMEType(explicit, filename string, content []byte) string {
	if explicit != "" {
		return explicit
	}
	if mt := mime.TypeByExtension(filepath.Ext(filename)); mt != "" {
		return mt
	}
	if len(content) > 0 {
		return http.DetectContentType(content)
	}
	return defaultMIMEType
}

// storeDynamic persists caller-supplied attachment bytes and returns the
// reference kept on the mail row. Keys are opaque UUIDs so concurrent
// queueing never collides.
func (s *Service) storeDynamic(ctx context.Context, in DynamicInput) (DynamicAttachment, error) {
	if in.Content == nil {
		return DynamicAttachment{}, fmt.Errorf("%w: nil content reader", ErrInvalidAttachment)
	}
	content, err := io.ReadAll(in.Content)
	if err != nil {
		return DynamicAttachment{}, fmt.Errorf("%w: %v", ErrInvalidAttachment, err)
	}

	filename := in.Filename
	key := uuid.NewString()
	if ext := filepath.Ext(filename); ext != "" {
		key += ext
	}
	if filename == "" {
		filename = key
	}

	if err := s.blobs.Save(ctx, key, content); err != nil {
		return DynamicAttachment{}, fmt.Errorf("store attachment %s: %w", filename, err)
	}

	return DynamicAttachment{
		Key:      key,
		Filename: filename,
		MIMEType: guessMIMEType(in.MIMEType, filename, content),
	}, nil
}

// resolveAttachments materializes a mail's static and dynamic attachments
// for sending. Static files are read lazily here, at send time. Reads are
// always binary; a text/* MIME label on non-text bytes therefore cannot
// fail the way a decoding text-mode read would.
func (s *Service) resolveAttachments(ctx context.Context, m *Mail) ([]ResolvedAttachment, error) {
	if len(m.StaticAttachments) == 0 && len(m.DynamicAttachments) == 0 {
		return nil, nil
	}

	resolved := make([]ResolvedAttachment, 0, len(m.StaticAttachments)+len(m.DynamicAttachments))

	for _, a := range m.StaticAttachments {
		content, err := os.ReadFile(filepath.Join(s.cfg.AttachmentsDir, a.Path))
		if err != nil {
			return nil, fmt.Errorf("static attachment %s: %w", a.Path, err)
		}
		filename := a.Filename
		if filename == "" {
			filename = filepath.Base(a.Path)
		}
		resolved = append(resolved, ResolvedAttachment{
			Filename: filename,
			MIMEType: guessMIMEType(a.MIMEType, filename, content),
			Content:  content,
		})
	}

	for _, a := range m.DynamicAttachments {
		content, err := s.blobs.Open(ctx, a.Key)
		if err != nil {
			return nil, fmt.Errorf("dynamic attachment %s: %w", a.Key, err)
		}
		filename := a.Filename
		if filename == "" {
			filename = a.Key
		}
		resolved = append(resolved, ResolvedAttachment{
			Filename: filename,
			MIMEType: guessMIMEType(a.MIMEType, filename, content),
			Content:  content,
		})
	}

	return resolved, nil
}
