package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/lexflowhq/lexflow-api/internal/domain"
	"github.com/lexflowhq/lexflow-api/internal/port"
	"github.com/lexflowhq/lexflow-api/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	configured bool
	email      string

	exchangePair *domain.TokenPair
	exchangeErr  error
	refreshPair  *domain.TokenPair
	refreshErr   error

	exchangeCalls int
	refreshCalls  int
	lastState     string
}

func (f *fakeProvider) ProviderName() string { return "google" }
func (f *fakeProvider) Configured() bool     { return f.configured }

func (f *fakeProvider) AuthURL(state string) string {
	f.lastState = state
	return "https://accounts.example.com/auth?state=" + state
}

func (f *fakeProvider) ExchangeCode(_ context.Context, code string) (*domain.TokenPair, error) {
	f.exchangeCalls++
	if f.exchangeErr != nil {
		return nil, f.exchangeErr
	}
	return f.exchangePair, nil
}

func (f *fakeProvider) RefreshToken(_ context.Context, refreshToken string) (*domain.TokenPair, error) {
	f.refreshCalls++
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	return f.refreshPair, nil
}

func (f *fakeProvider) FetchUserEmail(_ context.Context, _ string) (string, error) {
	return f.email, nil
}

func (f *fakeProvider) ListEvents(_ context.Context, _ string, _, _ time.Time) ([]byte, error) {
	return []byte(`{"items":[]}`), nil
}

func (f *fakeProvider) CreateEvent(_ context.Context, _ string, event []byte) ([]byte, error) {
	return event, nil
}

func (f *fakeProvider) DeleteEvent(_ context.Context, _, _ string) error { return nil }

type fakeIntegrationStore struct {
	rec         *domain.Integration
	loseRace    bool
	getCalls    int
	upsertCalls int
}

func (f *fakeIntegrationStore) GetIntegration(_ context.Context, userID, provider string) (*domain.Integration, error) {
	f.getCalls++
	if f.rec == nil {
		return nil, port.ErrIntegrationNotFound
	}
	cp := *f.rec
	return &cp, nil
}

func (f *fakeIntegrationStore) UpsertIntegration(_ context.Context, rec *domain.Integration) (*domain.Integration, error) {
	f.upsertCalls++
	cp := *rec
	cp.ID = "int-1"
	f.rec = &cp
	return &cp, nil
}

func (f *fakeIntegrationStore) UpdateIntegrationToken(_ context.Context, userID, provider, accessToken, refreshToken string, newExpiry, observedExpiry time.Time) (bool, error) {
	if f.loseRace || !f.rec.ExpiresAt.Equal(observedExpiry) {
		return false, nil
	}
	f.rec.AccessToken = accessToken
	if refreshToken != "" {
		f.rec.RefreshToken = refreshToken
	}
	f.rec.ExpiresAt = newExpiry
	return true, nil
}

func newTestCalendarService(provider *fakeProvider, st *fakeIntegrationStore, now time.Time) *CalendarService {
	svc := NewCalendarService(provider, st, &config.Config{
		JWTSecret:       "test-secret",
		StateTTLMinutes: 10,
	})
	svc.now = func() time.Time { return now }
	return svc
}

func TestConnectPersistsIntegration(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	provider := &fakeProvider{
		configured:   true,
		email:        "a@b.com",
		exchangePair: &domain.TokenPair{AccessToken: "T1", RefreshToken: "R1", ExpiresIn: 3600},
	}
	st := &fakeIntegrationStore{}
	svc := newTestCalendarService(provider, st, now)

	rec, err := svc.Connect(context.Background(), "user-1", "abc123")
	require.NoError(t, err)

	assert.Equal(t, "T1", rec.AccessToken)
	assert.Equal(t, "R1", rec.RefreshToken)
	assert.Equal(t, "a@b.com", rec.ConnectedEmail)
	assert.Equal(t, "google", rec.Provider)
	assert.Equal(t, now.Add(3600*time.Second), rec.ExpiresAt)
	assert.Equal(t, 1, st.upsertCalls)
}

func TestConnectRepeatedHandshakeOverwrites(t *testing.T) {
	now := time.Now()
	provider := &fakeProvider{
		configured:   true,
		email:        "a@b.com",
		exchangePair: &domain.TokenPair{AccessToken: "T1", RefreshToken: "R1", ExpiresIn: 3600},
	}
	st := &fakeIntegrationStore{}
	svc := newTestCalendarService(provider, st, now)

	_, err := svc.Connect(context.Background(), "user-1", "abc123")
	require.NoError(t, err)

	provider.exchangePair = &domain.TokenPair{AccessToken: "T2", RefreshToken: "R2", ExpiresIn: 3600}
	rec, err := svc.Connect(context.Background(), "user-1", "def456")
	require.NoError(t, err)

	assert.Equal(t, "T2", rec.AccessToken)
	assert.Equal(t, "R2", rec.RefreshToken)
}

func TestConnectRejectsIncompleteGrant(t *testing.T) {
	tests := []struct {
		name string
		pair *domain.TokenPair
	}{
		{"missing access token", &domain.TokenPair{RefreshToken: "R1", ExpiresIn: 3600}},
		{"missing refresh token", &domain.TokenPair{AccessToken: "T1", ExpiresIn: 3600}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &fakeProvider{configured: true, email: "a@b.com", exchangePair: tt.pair}
			st := &fakeIntegrationStore{}
			svc := newTestCalendarService(provider, st, time.Now())

			_, err := svc.Connect(context.Background(), "user-1", "abc123")
			require.Error(t, err)
			assert.Equal(t, 0, st.upsertCalls, "a partial grant must not be persisted")
		})
	}
}

func TestConnectUnconfigured(t *testing.T) {
	svc := newTestCalendarService(&fakeProvider{}, &fakeIntegrationStore{}, time.Now())

	_, err := svc.Connect(context.Background(), "user-1", "abc123")
	assert.ErrorIs(t, err, port.ErrConfiguration)
}

func TestEnsureAccessTokenFastPath(t *testing.T) {
	now := time.Now()
	provider := &fakeProvider{configured: true}
	st := &fakeIntegrationStore{rec: &domain.Integration{
		UserID:       "user-1",
		Provider:     "google",
		AccessToken:  "stored-token",
		RefreshToken: "R1",
		ExpiresAt:    now.Add(30 * time.Minute),
	}}
	svc := newTestCalendarService(provider, st, now)

	token, err := svc.EnsureAccessToken(context.Background(), "user-1")
	require.NoError(t, err)

	assert.Equal(t, "stored-token", token)
	assert.Equal(t, 0, provider.refreshCalls, "valid token must not trigger upstream calls")
}

func TestEnsureAccessTokenRefreshesExpired(t *testing.T) {
	now := time.Now()
	provider := &fakeProvider{
		configured:  true,
		refreshPair: &domain.TokenPair{AccessToken: "T2", ExpiresIn: 3600}, // no refresh token in response
	}
	st := &fakeIntegrationStore{rec: &domain.Integration{
		UserID:       "user-1",
		Provider:     "google",
		AccessToken:  "expired-token",
		RefreshToken: "R1",
		ExpiresAt:    now.Add(-time.Minute),
	}}
	svc := newTestCalendarService(provider, st, now)

	token, err := svc.EnsureAccessToken(context.Background(), "user-1")
	require.NoError(t, err)

	assert.Equal(t, "T2", token)
	assert.Equal(t, 1, provider.refreshCalls)
	assert.Equal(t, "R1", st.rec.RefreshToken, "stored refresh token is retained when the response omits one")
	assert.Equal(t, now.Add(3600*time.Second), st.rec.ExpiresAt)
}

func TestEnsureAccessTokenRefreshFailed(t *testing.T) {
	now := time.Now()
	provider := &fakeProvider{
		configured: true,
		refreshErr: fmt.Errorf("%w: invalid_grant", port.ErrRefreshFailed),
	}
	st := &fakeIntegrationStore{rec: &domain.Integration{
		UserID:       "user-1",
		Provider:     "google",
		AccessToken:  "expired-token",
		RefreshToken: "revoked",
		ExpiresAt:    now.Add(-time.Minute),
	}}
	svc := newTestCalendarService(provider, st, now)

	_, err := svc.EnsureAccessToken(context.Background(), "user-1")
	assert.ErrorIs(t, err, port.ErrRefreshFailed)
}

func TestEnsureAccessTokenNotConnected(t *testing.T) {
	svc := newTestCalendarService(&fakeProvider{configured: true}, &fakeIntegrationStore{}, time.Now())

	_, err := svc.EnsureAccessToken(context.Background(), "user-1")
	assert.ErrorIs(t, err, port.ErrIntegrationNotFound)
}

func TestEnsureAccessTokenLostRace(t *testing.T) {
	now := time.Now()
	provider := &fakeProvider{
		configured:  true,
		refreshPair: &domain.TokenPair{AccessToken: "loser-token", ExpiresIn: 3600},
	}
	st := &fakeIntegrationStore{
		loseRace: true,
		rec: &domain.Integration{
			UserID:       "user-1",
			Provider:     "google",
			AccessToken:  "winner-token",
			RefreshToken: "R1",
			ExpiresAt:    now.Add(-time.Minute),
		},
	}
	svc := newTestCalendarService(provider, st, now)

	token, err := svc.EnsureAccessToken(context.Background(), "user-1")
	require.NoError(t, err)

	// The conditional update failed, so the persisted (winner's) token is returned.
	assert.Equal(t, "winner-token", token)
}

func TestAuthURLCarriesSignedState(t *testing.T) {
	now := time.Now()
	provider := &fakeProvider{configured: true}
	svc := newTestCalendarService(provider, &fakeIntegrationStore{}, now)

	_, err := svc.AuthURL("user-1", "https://app.example.com/settings")
	require.NoError(t, err)

	payload, err := VerifyState(provider.lastState, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, "user-1", payload.UserID)
	assert.Equal(t, "https://app.example.com/settings", payload.RedirectTo)
}

func TestAuthURLUnconfigured(t *testing.T) {
	svc := newTestCalendarService(&fakeProvider{}, &fakeIntegrationStore{}, time.Now())

	_, err := svc.AuthURL("user-1", "https://app.example.com")
	assert.ErrorIs(t, err, port.ErrConfiguration)
}

func TestCompleteRedirect(t *testing.T) {
	now := time.Now()
	provider := &fakeProvider{
		configured:   true,
		email:        "a@b.com",
		exchangePair: &domain.TokenPair{AccessToken: "T1", RefreshToken: "R1", ExpiresIn: 3600},
	}
	st := &fakeIntegrationStore{}
	svc := newTestCalendarService(provider, st, now)

	state := SignState(StatePayload{
		UserID:     "user-1",
		RedirectTo: "https://app.example.com/settings",
		ExpiresAt:  now.Add(5 * time.Minute).Unix(),
	}, "test-secret")

	redirectTo, err := svc.CompleteRedirect(context.Background(), "abc123", state)
	require.NoError(t, err)

	assert.Equal(t, "https://app.example.com/settings", redirectTo)
	assert.Equal(t, 1, st.upsertCalls)
}

func TestCompleteRedirectTamperedState(t *testing.T) {
	svc := newTestCalendarService(&fakeProvider{configured: true}, &fakeIntegrationStore{}, time.Now())

	_, err := svc.CompleteRedirect(context.Background(), "abc123", "bogus.state")
	assert.ErrorIs(t, err, port.ErrStateInvalid)
}
