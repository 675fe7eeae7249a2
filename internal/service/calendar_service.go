package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lexflowhq/lexflow-api/internal/domain"
	"github.com/lexflowhq/lexflow-api/internal/port"
	"github.com/lexflowhq/lexflow-api/pkg/config"
)

// IntegrationStore is the persistence contract the calendar service needs.
type IntegrationStore interface {
	GetIntegration(ctx context.Context, userID, provider string) (*domain.Integration, error)
	UpsertIntegration(ctx context.Context, rec *domain.Integration) (*domain.Integration, error)
	UpdateIntegrationToken(ctx context.Context, userID, provider, accessToken, refreshToken string, newExpiry, observedExpiry time.Time) (bool, error)
}

// CalendarService owns the calendar integration gateway: the OAuth
// handshake, the token lifecycle, and the event operation proxy.
type CalendarService struct {
	provider port.CalendarProvider
	store    IntegrationStore

	stateSecret string
	stateTTL    time.Duration
	now         func() time.Time
}

// NewCalendarService creates the calendar gateway service.
func NewCalendarService(provider port.CalendarProvider, store IntegrationStore, cfg *config.Config) *CalendarService {
	return &CalendarService{
		provider:    provider,
		store:       store,
		stateSecret: cfg.JWTSecret,
		stateTTL:    time.Duration(cfg.StateTTLMinutes) * time.Minute,
		now:         time.Now,
	}
}

// AuthURL returns the provider consent URL with a signed state carrying the
// caller's identity and the post-completion redirect target.
func (s *CalendarService) AuthURL(userID, redirectTo string) (string, error) {
	if !s.provider.Configured() {
		return "", port.ErrConfiguration
	}

	state := SignState(StatePayload{
		UserID:     userID,
		RedirectTo: redirectTo,
		ExpiresAt:  s.now().Add(s.stateTTL).Unix(),
	}, s.stateSecret)

	return s.provider.AuthURL(state), nil
}

// Connect performs the handshake: exchanges the authorization code, fetches
// the connected account's email, and upserts the integration record with
// expires_at = now + expires_in.
func (s *CalendarService) Connect(ctx context.Context, userID, code string) (*domain.Integration, error) {
	if !s.provider.Configured() {
		return nil, port.ErrConfiguration
	}

	pair, err := s.provider.ExchangeCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}
	// The consent screen is forced, so a handshake grant must carry both
	// tokens; persisting a partial one would leave a dead integration.
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		return nil, fmt.Errorf("token endpoint returned an incomplete grant")
	}

	email, err := s.provider.FetchUserEmail(ctx, pair.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("fetch connected email: %w", err)
	}

	rec, err := s.store.UpsertIntegration(ctx, &domain.Integration{
		UserID:         userID,
		Provider:       s.provider.ProviderName(),
		AccessToken:    pair.AccessToken,
		RefreshToken:   pair.RefreshToken,
		ExpiresAt:      s.now().Add(time.Duration(pair.ExpiresIn) * time.Second),
		ConnectedEmail: email,
	})
	if err != nil {
		return nil, fmt.Errorf("persist integration: %w", err)
	}

	slog.Info("calendar connected", "user_id", userID, "email", email)
	return rec, nil
}

// CompleteRedirect verifies the signed state from the provider callback and
// runs the same exchange-and-persist sequence as Connect. It returns the
// redirect target embedded in the state.
func (s *CalendarService) CompleteRedirect(ctx context.Context, code, state string) (string, error) {
	payload, err := VerifyState(state, s.stateSecret)
	if err != nil {
		return "", err
	}

	if _, err := s.Connect(ctx, payload.UserID, code); err != nil {
		return "", err
	}
	return payload.RedirectTo, nil
}

// EnsureAccessToken returns a currently valid access token for the user.
//
// The common path returns the stored token without any network call. When
// the token has expired, exactly one refresh call is made and the result is
// persisted with a conditional update keyed on the previously observed
// expiry, so two concurrent refreshes cannot clobber each other's lineage;
// the loser re-reads and returns the winner's token.
func (s *CalendarService) EnsureAccessToken(ctx context.Context, userID string) (string, error) {
	providerName := s.provider.ProviderName()

	rec, err := s.store.GetIntegration(ctx, userID, providerName)
	if err != nil {
		return "", err
	}

	if rec.ExpiresAt.After(s.now()) {
		return rec.AccessToken, nil
	}

	pair, err := s.provider.RefreshToken(ctx, rec.RefreshToken)
	if err != nil {
		// Terminal for the integration: the user must redo the handshake.
		return "", fmt.Errorf("refresh access token: %w", err)
	}

	newExpiry := s.now().Add(time.Duration(pair.ExpiresIn) * time.Second)
	updated, err := s.store.UpdateIntegrationToken(ctx, userID, providerName,
		pair.AccessToken, pair.RefreshToken, newExpiry, rec.ExpiresAt)
	if err != nil {
		return "", fmt.Errorf("persist refreshed token: %w", err)
	}

	if !updated {
		// Lost the refresh race; the winner's token is the persisted one.
		current, err := s.store.GetIntegration(ctx, userID, providerName)
		if err != nil {
			return "", err
		}
		slog.Info("concurrent token refresh detected", "user_id", userID)
		return current.AccessToken, nil
	}

	slog.Info("access token refreshed", "user_id", userID, "expires_at", newExpiry)
	return pair.AccessToken, nil
}

// ListEvents proxies a windowed event list using a lifecycle-managed token.
func (s *CalendarService) ListEvents(ctx context.Context, userID string, timeMin, timeMax time.Time) ([]byte, error) {
	token, err := s.EnsureAccessToken(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.provider.ListEvents(ctx, token, timeMin, timeMax)
}

// CreateEvent proxies event creation, relaying the payload verbatim.
func (s *CalendarService) CreateEvent(ctx context.Context, userID string, event []byte) ([]byte, error) {
	token, err := s.EnsureAccessToken(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.provider.CreateEvent(ctx, token, event)
}

// DeleteEvent proxies event deletion by ID.
func (s *CalendarService) DeleteEvent(ctx context.Context, userID, eventID string) error {
	token, err := s.EnsureAccessToken(ctx, userID)
	if err != nil {
		return err
	}
	return s.provider.DeleteEvent(ctx, token, eventID)
}
