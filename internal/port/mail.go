package port

import (
	"context"

	"github.com/lexflowhq/lexflow-api/internal/domain"
)

// InviteMailer delivers invite notifications. The production deployment
// hands delivery to an external service; the in-repo implementation logs.
type InviteMailer interface {
	SendInvite(ctx context.Context, invite *domain.Invite, acceptURL string) error
}
