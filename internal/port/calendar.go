package port

import (
	"context"
	"time"

	"github.com/lexflowhq/lexflow-api/internal/domain"
)

// CalendarProvider abstracts the upstream calendar/OAuth provider.
// The implementation owns the wire format; callers only see token pairs
// and raw event payloads, which are relayed to the front end verbatim.
type CalendarProvider interface {
	// ProviderName returns the provider discriminator (e.g. "google").
	ProviderName() string

	// Configured reports whether client credentials are present.
	Configured() bool

	// AuthURL returns the full OAuth2 authorization URL, requesting offline
	// access with a forced consent screen so a refresh token is always issued.
	AuthURL(state string) string

	// ExchangeCode exchanges an authorization code for a token pair.
	ExchangeCode(ctx context.Context, code string) (*domain.TokenPair, error)

	// RefreshToken obtains a new access token using a stored refresh token.
	// Returns an error wrapping ErrRefreshFailed when the provider rejects it.
	RefreshToken(ctx context.Context, refreshToken string) (*domain.TokenPair, error)

	// FetchUserEmail returns the email of the account the token belongs to.
	FetchUserEmail(ctx context.Context, accessToken string) (string, error)

	// ListEvents returns the provider's event list JSON for the window.
	// A zero timeMax means no upper bound.
	ListEvents(ctx context.Context, accessToken string, timeMin, timeMax time.Time) ([]byte, error)

	// CreateEvent relays an event payload to the provider and returns the
	// created event JSON.
	CreateEvent(ctx context.Context, accessToken string, event []byte) ([]byte, error)

	// DeleteEvent removes an event by ID. Returns ErrEventNotFound when the
	// provider reports the event is gone.
	DeleteEvent(ctx context.Context, accessToken, eventID string) error
}
