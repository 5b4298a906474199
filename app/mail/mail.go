// Package mail delivers outgoing e-mail. The only transport writes messages
// to files, one per message, for local development and tests.
package mail

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Message is a plain-text e-mail.
type Message struct {
	From    string
	To      []string
	Subject string
	Body    string
}

// Mailer sends messages.
type Mailer interface {
	Send(msg *Message) error
}

// FileMailer writes each message to a timestamped .log file in Dir.
type FileMailer struct {
	Dir    string
	From   string
	logger *zap.Logger
	mutex  sync.Mutex
	seq    int
}

// NewFileMailer creates a FileMailer; messages without a sender use from.
func NewFileMailer(dir, from string, logger *zap.Logger) *FileMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileMailer{Dir: dir, From: from, logger: logger}
}

func (m *FileMailer) Send(msg *Message) error {
	if len(msg.To) == 0 {
		return fmt.Errorf("message %q has no recipients", msg.Subject)
	}
	from := msg.From
	if from == "" {
		from = m.From
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	if err := os.MkdirAll(m.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create mail directory: %w", err)
	}

	now := time.Now()
	m.seq++
	name := fmt.Sprintf("%s-%d.log", now.Format("20060102-150405"), m.seq)
	path := filepath.Join(m.Dir, name)

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\n", from)
	fmt.Fprintf(&b, "To: %s\n", strings.Join(msg.To, ", "))
	fmt.Fprintf(&b, "Subject: %s\n", msg.Subject)
	fmt.Fprintf(&b, "Date: %s\n", now.Format(time.RFC1123Z))
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\n\n")
	b.WriteString(msg.Body)
	b.WriteString("\n")

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	m.logger.Info("Mail written",
		zap.String("path", path),
		zap.Strings("to", msg.To),
		zap.String("subject", msg.Subject))
	return nil
}
