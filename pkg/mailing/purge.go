package mailing

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// PurgeOptions restricts which statuses a purge touches. Only and Exclude
// may be combined; Exclude wins for statuses present in both.
type PurgeOptions struct {
	OnlyStatuses    []Status
	ExcludeStatuses []Status
}

// PurgeMails deletes mails scheduled more than the given number of days
// ago. Headers and attachments cascade with their mail rows at the storage
// layer. Returns the number of mails removed.
func (s *Service) PurgeMails(ctx context.Context, days int, opts PurgeOptions) (int64, error) {
	if days < 0 {
		return 0, fmt.Errorf("%w: purge days must not be negative", ErrInvalidConfig)
	}

	for _, st := range append(append([]Status{}, opts.OnlyStatuses...), opts.ExcludeStatuses...) {
		if !st.Valid() {
			return 0, fmt.Errorf("%w: unknown status %q", ErrInvalidConfig, st)
		}
	}

	cutoff := s.now().AddDate(0, 0, -days)
	deleted, err := s.storage.DeleteMailsBefore(ctx, cutoff, opts.OnlyStatuses, opts.ExcludeStatuses)
	if err != nil {
		return 0, err
	}

	s.log.Info("purged old mails",
		slog.Int64("deleted", deleted),
		slog.Time("cutoff", cutoff))
	return deleted, nil
}

// PurgeBefore is PurgeMails with an explicit cutoff instead of a day count.
func (s *Service) PurgeBefore(ctx context.Context, cutoff time.Time, opts PurgeOptions) (int64, error) {
	return s.storage.DeleteMailsBefore(ctx, cutoff, opts.OnlyStatuses, opts.ExcludeStatuses)
}
