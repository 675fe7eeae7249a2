package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lexflowhq/lexflow-api/internal/domain"
	"github.com/lexflowhq/lexflow-api/internal/port"
)

const (
	googleAuthURL     = "https://accounts.google.com/o/oauth2/v2/auth"
	googleTokenURL    = "https://oauth2.googleapis.com/token"
	googleUserinfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
	googleEventsURL   = "https://www.googleapis.com/calendar/v3/calendars/primary/events"
)

// GoogleProvider implements port.CalendarProvider for Google Calendar.
type GoogleProvider struct {
	clientID     string
	clientSecret string
	redirectURL  string
	httpClient   *http.Client

	// Endpoint URLs are fields so tests can point them at a local server.
	authURL     string
	tokenURL    string
	userinfoURL string
	eventsURL   string

	now func() time.Time
}

// NewGoogleProvider creates a new Google Calendar provider.
func NewGoogleProvider(clientID, clientSecret, redirectURL string) *GoogleProvider {
	return &GoogleProvider{
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURL:  redirectURL,
		httpClient:   &http.Client{},
		authURL:      googleAuthURL,
		tokenURL:     googleTokenURL,
		userinfoURL:  googleUserinfoURL,
		eventsURL:    googleEventsURL,
		now:          time.Now,
	}
}

// ProviderName returns "google".
func (g *GoogleProvider) ProviderName() string {
	return "google"
}

// Configured reports whether client credentials are present.
func (g *GoogleProvider) Configured() bool {
	return g.clientID != "" && g.clientSecret != ""
}

// AuthURL returns the Google OAuth2 consent screen URL.
// access_type=offline plus prompt=consent forces Google to issue a refresh
// token even for accounts that already granted access once.
func (g *GoogleProvider) AuthURL(state string) string {
	params := url.Values{
		"client_id":     {g.clientID},
		"redirect_uri":  {g.redirectURL},
		"response_type": {"code"},
		"scope":         {"https://www.googleapis.com/auth/calendar.events email"},
		"state":         {state},
		"access_type":   {"offline"},
		"prompt":        {"consent"},
	}
	return fmt.Sprintf("%s?%s", g.authURL, params.Encode())
}

// ExchangeCode exchanges an authorization code for tokens.
func (g *GoogleProvider) ExchangeCode(ctx context.Context, code string) (*domain.TokenPair, error) {
	data := url.Values{
		"code":          {code},
		"client_id":     {g.clientID},
		"client_secret": {g.clientSecret},
		"redirect_uri":  {g.redirectURL},
		"grant_type":    {"authorization_code"},
	}
	return g.postTokenEndpoint(ctx, data, "token exchange")
}

// RefreshToken obtains a fresh access token using a stored refresh token.
// Google does not always return a new refresh token here; the caller keeps
// the old one when the response omits it.
func (g *GoogleProvider) RefreshToken(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	data := url.Values{
		"refresh_token": {refreshToken},
		"client_id":     {g.clientID},
		"client_secret": {g.clientSecret},
		"grant_type":    {"refresh_token"},
	}

	pair, err := g.postTokenEndpoint(ctx, data, "token refresh")
	if err != nil {
		// A rejected refresh token is terminal for the integration; the
		// user has to run the handshake again.
		return nil, fmt.Errorf("%w: %v", port.ErrRefreshFailed, err)
	}
	return pair, nil
}

func (g *GoogleProvider) postTokenEndpoint(ctx context.Context, data url.Values, op string) (*domain.TokenPair, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.tokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("google: create %s request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("google: %s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("google: %s failed (%d): %s", op, resp.StatusCode, string(body))
	}

	var pair domain.TokenPair
	if err := json.NewDecoder(resp.Body).Decode(&pair); err != nil {
		return nil, fmt.Errorf("google: decode %s response: %w", op, err)
	}
	return &pair, nil
}

// FetchUserEmail fetches the email of the Google account the token belongs to.
func (g *GoogleProvider) FetchUserEmail(ctx context.Context, accessToken string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.userinfoURL, nil)
	if err != nil {
		return "", fmt.Errorf("google: create userinfo request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("google: fetch userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("google: userinfo fetch failed (%d): %s", resp.StatusCode, string(body))
	}

	var info struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return "", fmt.Errorf("google: decode userinfo: %w", err)
	}
	return info.Email, nil
}

// ListEvents returns the event list JSON for the window. timeMin defaults to
// the current instant when zero; a zero timeMax means no upper bound.
// singleEvents + orderBy expand recurring events into time-ordered singles.
func (g *GoogleProvider) ListEvents(ctx context.Context, accessToken string, timeMin, timeMax time.Time) ([]byte, error) {
	if timeMin.IsZero() {
		timeMin = g.now()
	}

	params := url.Values{
		"timeMin":      {timeMin.Format(time.RFC3339)},
		"singleEvents": {"true"},
		"orderBy":      {"startTime"},
	}
	if !timeMax.IsZero() {
		params.Set("timeMax", timeMax.Format(time.RFC3339))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.eventsURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("google: create list request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	return g.relay(req, "list events")
}

// CreateEvent relays an event payload to Google and returns the created event.
func (g *GoogleProvider) CreateEvent(ctx context.Context, accessToken string, event []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.eventsURL, bytes.NewReader(event))
	if err != nil {
		return nil, fmt.Errorf("google: create event request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	return g.relay(req, "create event")
}

// DeleteEvent removes an event from the primary calendar.
func (g *GoogleProvider) DeleteEvent(ctx context.Context, accessToken, eventID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, g.eventsURL+"/"+url.PathEscape(eventID), nil)
	if err != nil {
		return fmt.Errorf("google: create delete request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("google: delete event: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return port.ErrEventNotFound
	case resp.StatusCode >= 300:
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("google: delete event failed (%d): %s", resp.StatusCode, string(body))
	}
	return nil
}

// relay executes the request and returns the upstream body verbatim.
func (g *GoogleProvider) relay(req *http.Request, op string) ([]byte, error) {
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("google: %s: %w", op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("google: read %s response: %w", op, err)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("google: %s failed (%d): %s", op, resp.StatusCode, string(body))
	}
	return body, nil
}
