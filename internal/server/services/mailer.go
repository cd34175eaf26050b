package services

import (
	"context"

	"github.com/dmitrijs2005/boostmanager/internal/logging"
)

// Mailer delivers transactional e-mail.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LogMailer writes outgoing mail to the log instead of sending it. Bodies
// carry confirmation and recovery codes, so they are only logged when
// logBodies is set for local development.
type LogMailer struct {
	logger    logging.Logger
	logBodies bool
}

func NewLogMailer(logger logging.Logger, logBodies bool) *LogMailer {
	return &LogMailer{logger: logger, logBodies: logBodies}
}

func (m *LogMailer) Send(ctx context.Context, to, subject, body string) error {
	if m.logBodies {
		m.logger.Warn(ctx, "mail outbox (body logged, dev only)", "to", to, "subject", subject, "body", body)
		return nil
	}
	m.logger.Info(ctx, "mail outbox", "to", to, "subject", subject, "body_bytes", len(body))
	return nil
}
