// Package mailing is an e-mail campaign queueing and delivery engine.
//
// Callers register campaigns (subject template, HTML template, extra
// headers, attachments), queue mails rendered against a data context, and a
// periodic dispatch pass delivers whatever is pending and due through an
// outbound Transport.
//
// # Pipeline
//
// QueueMail resolves a Campaign by key (or accepts an ad-hoc subject and
// template), renders subject, headers, and body in two phases, filters
// recipients against the blacklist and the campaign's subscription type,
// and persists the result as a pending Mail. Rendering and persistence run
// in one storage transaction: when every primary recipient is filtered
// away, the draft row is rolled back and the caller gets a quiet
// (nil, nil) "no mail queued" result.
//
// SendQueuedMails scans pending, due mails and sends each one
// independently. One bad recipient never aborts the batch: failures are
// recorded per mail, successes are promoted to sent in a single bulk
// update stamped with the batch start time.
//
// # Lifecycle
//
// A Mail moves draft → pending → sent or failure. canceled is a terminal
// state set by operators. Failed mails are never re-queued automatically.
//
// # Usage
//
//	store := mailing.NewMemoryStorage() // or postgres.New(pool)
//	svc, err := mailing.New(cfg, store, resend.New(resendCfg),
//		mailing.WithLogger(log),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	_, err = svc.QueueMail(ctx, "welcome", map[string]any{
//		"name": "Alice",
//	}, mailing.QueueOptions{
//		Headers: []mailing.Header{{Name: "To", Value: "alice@example.com"}},
//	})
//
//	sent, failed, err := svc.SendQueuedMails(ctx)
//
// Templates use text/template syntax and are never HTML-escaped: mail
// bodies are intentionally HTML, and template sources are trusted operator
// content. Mail-specific values are exposed under {{ .mailing }}:
// subject, mirror_url, campaign, unsubscribe_url, and headers.
package mailing
