// Package mailer turns generated status emails into RFC 5322 drafts and stores them
// in an IMAP Drafts mailbox.
package mailer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"flux-backend/pkg/metrics"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-message/mail"
	log "github.com/sirupsen/logrus"
)

const defaultSubject = "Weekly Scrum Update"

// Draft is a plain-text message ready to be composed.
type Draft struct {
	From    string
	To      []string
	Subject string
	Body    string
	Date    time.Time
}

// DraftFromGenerated splits model output into subject and body. A leading
// "Subject:" line becomes the subject and an optional "Body:" marker is dropped.
func DraftFromGenerated(text string) Draft {
	text = strings.TrimSpace(text)
	subject := defaultSubject

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if rest, ok := cutPrefixFold(trimmed, "subject:"); ok {
			subject = strings.TrimSpace(rest)
			text = strings.TrimSpace(strings.Join(lines[i+1:], "\n"))
		}
		break
	}
	if rest, ok := cutPrefixFold(text, "body:"); ok {
		text = strings.TrimSpace(rest)
	}
	return Draft{Subject: subject, Body: text}
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix) {
		return s[len(prefix):], true
	}
	return s, false
}

// Compose renders d as an RFC 5322 message.
func Compose(d Draft) ([]byte, error) {
	var h mail.Header
	if d.Date.IsZero() {
		d.Date = time.Now()
	}
	h.SetDate(d.Date)
	h.SetSubject(d.Subject)
	h.SetContentType("text/plain", map[string]string{"charset": "utf-8"})

	if d.From != "" {
		from, err := mail.ParseAddress(d.From)
		if err != nil {
			return nil, fmt.Errorf("invalid from address %q: %w", d.From, err)
		}
		h.SetAddressList("From", []*mail.Address{from})
	}
	if len(d.To) > 0 {
		to, err := mail.ParseAddressList(strings.Join(d.To, ", "))
		if err != nil {
			return nil, fmt.Errorf("invalid recipients: %w", err)
		}
		h.SetAddressList("To", to)
	}
	if err := h.GenerateMessageID(); err != nil {
		return nil, fmt.Errorf("failed to generate message id: %w", err)
	}

	var buf bytes.Buffer
	w, err := mail.CreateSingleInlineWriter(&buf, h)
	if err != nil {
		return nil, fmt.Errorf("failed to create message writer: %w", err)
	}
	if _, err := io.WriteString(w, d.Body); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// IMAPConfig locates the mailbox drafts are appended to.
type IMAPConfig struct {
	Addr     string // host:port, TLS
	Username string
	Password string
	Mailbox  string
}

// DraftStore appends messages to an IMAP mailbox with the \Draft flag.
type DraftStore struct {
	cfg IMAPConfig
}

func NewDraftStore(cfg IMAPConfig) *DraftStore {
	if cfg.Mailbox == "" {
		cfg.Mailbox = "Drafts"
	}
	return &DraftStore{cfg: cfg}
}

// SaveDraft opens a session, appends msg and logs out. The IMAP client has no
// context support, so ctx is only checked before dialing.
func (s *DraftStore) SaveDraft(ctx context.Context, msg []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	c, err := client.DialTLS(s.cfg.Addr, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to IMAP server: %w", err)
	}
	defer c.Logout()

	if err := c.Login(s.cfg.Username, s.cfg.Password); err != nil {
		return fmt.Errorf("IMAP login failed: %w", err)
	}
	if err := c.Append(s.cfg.Mailbox, []string{imap.DraftFlag, imap.SeenFlag}, time.Now(), bytes.NewBuffer(msg)); err != nil {
		return fmt.Errorf("failed to append draft to %s: %w", s.cfg.Mailbox, err)
	}

	d := metrics.ObserveCall("imap", "append", start)
	log.WithFields(log.Fields{"mailbox": s.cfg.Mailbox, "duration_ms": d.Milliseconds()}).Info("[Mailer] Saved draft")
	return nil
}
