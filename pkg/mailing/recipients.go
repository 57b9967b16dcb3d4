package mailing

import (
	"context"
	"fmt"
	"net/mail"
	"slices"
	"strings"
)

// FilterOptions controls blacklist filtering. The two fields replace the
// single overloaded parameter some mailing systems use: BypassBlacklist
// skips filtering entirely, IgnoreReasons keeps addresses whose blacklist
// entry carries one of the listed reasons.
type FilterOptions struct {
	BypassBlacklist bool
	IgnoreReasons   []BlacklistReason
}

// recipientSlots carries the three logical recipient headers through the
// filtering passes. Each slot is a list of raw entries ("Name <email>" or
// bare address) whose original formatting must survive filtering.
type recipientSlots struct {
	To  []string
	Cc  []string
	Bcc []string
}

// splitAddressList splits a comma-separated recipient list, respecting
// commas inside quoted display names ("Doe, Jane" <jane@example.com>).
// Entries keep their original spelling, trimmed of surrounding whitespace.
func splitAddressList(list string) []string {
	var entries []string
	var inQuotes, escaped bool
	start := 0

	flush := func(end int) {
		entry := strings.TrimSpace(list[start:end])
		if entry != "" {
			entries = append(entries, entry)
		}
	}

	for i, r := range list {
		switch {
		case escaped:
			escaped = false
		case r == '\\':
			escaped = true
		case r == '"':
			inQuotes = !inQuotes
		case r == ',' && !inQuotes:
			flush(i)
			start = i + 1
		}
	}
	flush(len(list))
	return entries
}

// normalizeAddress extracts the bare, lowercased address from a recipient
// entry. Unparseable entries fall back to the trimmed entry itself so that
// a malformed address still gets a deterministic comparison key.
func normalizeAddress(entry string) string {
	if addr, err := mail.ParseAddress(entry); err == nil {
		return strings.ToLower(addr.Address)
	}
	return strings.ToLower(strings.TrimSpace(entry))
}

// filterBlacklisted removes blacklisted addresses from entries, preserving
// order and formatting of survivors.
func filterBlacklisted(ctx context.Context, st Storage, entries []string, opts FilterOptions) ([]string, error) {
	if opts.BypassBlacklist {
		return entries, nil
	}

	kept := make([]string, 0, len(entries))
	for _, entry := range entries {
		be, err := st.BlacklistEntryFor(ctx, normalizeAddress(entry))
		if err != nil {
			return nil, err
		}
		if be == nil || slices.Contains(opts.IgnoreReasons, be.Reason) {
			kept = append(kept, entry)
		}
	}
	return kept, nil
}

// filterUnsubscribed removes addresses whose subscription for the given
// type resolves to unsubscribed. An explicit Subscription row always wins;
// otherwise the type's SubscribedByDefault flag decides.
func filterUnsubscribed(ctx context.Context, st Storage, entries []string, subType *SubscriptionType) ([]string, error) {
	kept := make([]string, 0, len(entries))
	for _, entry := range entries {
		ok, err := isSubscribed(ctx, st, normalizeAddress(entry), subType)
		if err != nil {
			return nil, err
		}
		if ok {
			kept = append(kept, entry)
		}
	}
	return kept, nil
}

// isSubscribed resolves the effective subscription state for one address.
func isSubscribed(ctx context.Context, st Storage, email string, subType *SubscriptionType) (bool, error) {
	sub, err := st.SubscriptionFor(ctx, email, subType.ID)
	if err != nil {
		return false, err
	}
	if sub != nil {
		return sub.Subscribed, nil
	}
	return subType.SubscribedByDefault, nil
}

// filterRecipients runs the blacklist pass over all three slots. An empty
// To slot afterwards is an EmptyRecipients failure; empty Cc and Bcc slots
// simply drop their headers.
func filterRecipients(ctx context.Context, st Storage, slots *recipientSlots, opts FilterOptions) error {
	var err error
	if slots.To, err = filterBlacklisted(ctx, st, slots.To, opts); err != nil {
		return err
	}
	if slots.Cc, err = filterBlacklisted(ctx, st, slots.Cc, opts); err != nil {
		return err
	}
	if slots.Bcc, err = filterBlacklisted(ctx, st, slots.Bcc, opts); err != nil {
		return err
	}
	if len(slots.To) == 0 {
		return fmt.Errorf("%w: all primary recipients blacklisted", ErrEmptyRecipients)
	}
	return nil
}
