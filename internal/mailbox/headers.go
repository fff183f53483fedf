package mailbox

import (
	"fmt"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"
	"google.golang.org/api/gmail/v1"

	_ "github.com/emersion/go-message/charset"
)

var legacyDateLayouts = []string{
	"Mon, 2 Jan 2006 15:04:05 -0700 (MST)",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"2 Jan 2006 15:04:05 -0700",
	time.RFC850,
	time.ANSIC,
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05",
}

// ParseDate parses a Date header value, trying RFC 5322, then RFC 3339,
// then a set of legacy layouts. It returns nil when none match.
func ParseDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	var h mail.Header
	h.Set("Date", raw)
	if t, err := h.Date(); err == nil && !t.IsZero() {
		return utc(t)
	}

	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return utc(t)
	}

	for _, layout := range legacyDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return utc(t)
		}
	}

	return nil
}

func utc(t time.Time) *time.Time {
	u := t.UTC()
	return &u
}

func decode(msg *gmail.Message) *Metadata {
	meta := &Metadata{
		ID:       msg.Id,
		ThreadID: msg.ThreadId,
		Snippet:  optional(msg.Snippet),
	}

	var h mail.Header
	if msg.Payload != nil {
		for _, ph := range msg.Payload.Headers {
			h.Add(ph.Name, ph.Value)
		}
	}

	if h.Has("Subject") {
		subject, err := h.Subject()
		if err != nil {
			subject = h.Get("Subject")
		}
		meta.Subject = &subject
	}

	if h.Has("From") {
		if addrs, err := h.AddressList("From"); err == nil && len(addrs) > 0 {
			meta.Sender = optional(formatAddress(addrs[0]))
			meta.SenderAddress = optional(addrs[0].Address)
		} else {
			meta.Sender = optional(h.Get("From"))
		}
	}

	if h.Has("To") {
		if addrs, err := h.AddressList("To"); err == nil && len(addrs) > 0 {
			parts := make([]string, len(addrs))
			for i, a := range addrs {
				parts[i] = formatAddress(a)
			}
			meta.Recipient = optional(strings.Join(parts, ", "))
		} else {
			meta.Recipient = optional(h.Get("To"))
		}
	}

	if raw := h.Get("Date"); raw != "" {
		meta.RawDate = &raw
		meta.SentAt = ParseDate(raw)
	}

	return meta
}

func formatAddress(a *mail.Address) string {
	if a.Name == "" {
		return a.Address
	}
	return fmt.Sprintf("%s <%s>", a.Name, a.Address)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
