package mailing

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGuessMIMEType(t *testing.T) {
	t.Parallel()

	t.Run("explicit wins", func(t *testing.T) {
		t.Parallel()
		require.Equal(t, "application/pdf", guessMIMEType("application/pdf", "file.txt", nil))
	})

	t.Run("extension", func(t *testing.T) {
		t.Parallel()
		got := guessMIMEType("", "report.pdf", nil)
		require.Equal(t, "application/pdf", got)
	})

	t.Run("content sniffing", func(t *testing.T) {
		t.Parallel()
		got := guessMIMEType("", "noext", []byte("%PDF-1.4 ..."))
		require.Equal(t, "application/pdf", got)
	})

	t.Run("fallback", func(t *testing.T) {
		t.Parallel()
		require.Equal(t, defaultMIMEType, guessMIMEType("", "noext", nil))
	})
}

func TestLocalBlobStore_Roundtrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store, err := NewLocalBlobStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Save(ctx, "key.bin", []byte{0x00, 0xff, 0x10}))
	got, err := store.Open(ctx, "key.bin")
	require.NoError(t, err)
	require.Equal(t, []byte{0x00, 0xff, 0x10}, got)
}

func TestLocalBlobStore_SanitizesKeys(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	root := t.TempDir()
	store, err := NewLocalBlobStore(root)
	require.NoError(t, err)

	require.NoError(t, store.Save(ctx, "../../escape.bin", []byte("x")))
	_, err = os.Stat(filepath.Join(root, "escape.bin"))
	require.NoError(t, err)
}

func TestService_StoreDynamic(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := newTestService(t, NewMemoryStorage(), &recordingTransport{})

	t.Run("persists content and guesses type", func(t *testing.T) {
		t.Parallel()
		att, err := svc.storeDynamic(ctx, DynamicInput{
			Content:  strings.NewReader("invoice body"),
			Filename: "invoice.pdf",
		})
		require.NoError(t, err)
		require.Equal(t, "invoice.pdf", att.Filename)
		require.Equal(t, "application/pdf", att.MIMEType)
		require.True(t, strings.HasSuffix(att.Key, ".pdf"))

		content, err := svc.blobs.Open(ctx, att.Key)
		require.NoError(t, err)
		require.Equal(t, "invoice body", string(content))
	})

	t.Run("generates filename when empty", func(t *testing.T) {
		t.Parallel()
		att, err := svc.storeDynamic(ctx, DynamicInput{Content: strings.NewReader("x")})
		require.NoError(t, err)
		require.Equal(t, att.Key, att.Filename)
	})

	t.Run("nil reader", func(t *testing.T) {
		t.Parallel()
		_, err := svc.storeDynamic(ctx, DynamicInput{})
		require.ErrorIs(t, err, ErrInvalidAttachment)
	})
}

func TestService_ResolveAttachments(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := NewMemoryStorage()
	svc := newTestService(t, st, &recordingTransport{})

	// Static files live below the configured attachments root and are read
	// at resolve time, not before.
	require.NoError(t, os.WriteFile(filepath.Join(svc.cfg.AttachmentsDir, "terms.txt"), []byte("the terms"), 0o644))

	binary := []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x01}
	require.NoError(t, svc.blobs.Save(ctx, "blob.png", binary))

	m := &Mail{
		StaticAttachments:  []StaticAttachment{{Path: "terms.txt"}},
		DynamicAttachments: []DynamicAttachment{{Key: "blob.png", Filename: "chart.png"}},
	}

	resolved, err := svc.resolveAttachments(ctx, m)
	require.NoError(t, err)
	require.Len(t, resolved, 2)

	require.Equal(t, "terms.txt", resolved[0].Filename)
	require.Equal(t, []byte("the terms"), resolved[0].Content)
	require.True(t, strings.HasPrefix(resolved[0].MIMEType, "text/plain"))

	require.Equal(t, "chart.png", resolved[1].Filename)
	require.Equal(t, "image/png", resolved[1].MIMEType)
	require.Equal(t, binary, resolved[1].Content)
}

func TestService_ResolveAttachments_MissingStatic(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, NewMemoryStorage(), &recordingTransport{})
	_, err := svc.resolveAttachments(context.Background(), &Mail{
		StaticAttachments: []StaticAttachment{{Path: "gone.pdf"}},
	})
	require.Error(t, err)
}
