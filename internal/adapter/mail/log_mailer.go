package mail

import (
	"context"
	"log/slog"

	"github.com/lexflowhq/lexflow-api/internal/domain"
)

// LogMailer implements port.InviteMailer by logging the invite instead of
// sending it. Real delivery is handled by an external service in production.
type LogMailer struct{}

// NewLogMailer creates a log-only mailer.
func NewLogMailer() *LogMailer {
	return &LogMailer{}
}

// SendInvite logs the invite details and accept link.
func (m *LogMailer) SendInvite(_ context.Context, invite *domain.Invite, acceptURL string) error {
	slog.Info("invite email (mock delivery)",
		"email", invite.Email,
		"role", invite.Role,
		"office_id", invite.OfficeID,
		"accept_url", acceptURL,
		"expires_at", invite.ExpiresAt,
	)
	return nil
}
