package opensky

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/flightwall/flightwall/pkg/apierr"
)

const (
	// tokenSkew is how early a cached token is considered expiring; a token
	// within this window of expiry is refreshed instead of reused.
	tokenSkew = 60 * time.Second

	// defaultExpiresIn applies when the token response omits expires_in.
	defaultExpiresIn = 1800 * time.Second
)

// TokenSource manages an OAuth2 client-credentials bearer token: acquisition,
// caching, and proactive renewal ahead of expiry. It owns the token
// exclusively; callers only ever see the opaque bearer string.
type TokenSource struct {
	clientID     string
	clientSecret string
	tokenURL     string
	httpClient   *http.Client

	// now is the clock, swappable in tests.
	now func() time.Time

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

// NewTokenSource creates a token source for the given credentials.
func NewTokenSource(clientID, clientSecret, tokenURL string) *TokenSource {
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}
	return &TokenSource{
		clientID:     clientID,
		clientSecret: clientSecret,
		tokenURL:     tokenURL,
		httpClient:   &http.Client{Timeout: DefaultTimeout},
		now:          time.Now,
	}
}

// tokenResponse mirrors the JSON from the token endpoint.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"` // seconds
	TokenType   string `json:"token_type"`
}

// Token returns a valid bearer token, requesting a new one when none is
// cached, the cached one is inside the expiry skew window, or forceRefresh
// is set. Missing credentials fail with a ConfigError and are never retried
// within a cycle; HTTP and parse failures surface as AuthError and are
// retried on the next poll cycle.
func (ts *TokenSource) Token(ctx context.Context, forceRefresh bool) (string, error) {
	if ts.clientID == "" || ts.clientSecret == "" {
		return "", &apierr.ConfigError{Msg: "opensky client credentials not configured"}
	}

	ts.mu.Lock()
	defer ts.mu.Unlock()

	if !forceRefresh && ts.token != "" && ts.now().Add(tokenSkew).Before(ts.expiresAt) {
		return ts.token, nil
	}

	if forceRefresh {
		log.Println("OpenSky: refreshing access token (forced)")
	} else {
		log.Println("OpenSky: requesting access token")
	}

	token, expiresAt, err := ts.requestToken(ctx)
	if err != nil {
		return "", err
	}

	ts.token = token
	ts.expiresAt = expiresAt
	return ts.token, nil
}

// requestToken performs the client-credentials POST. Caller holds ts.mu.
func (ts *TokenSource) requestToken(ctx context.Context) (string, time.Time, error) {
	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {ts.clientID},
		"client_secret": {ts.clientSecret},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ts.tokenURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", time.Time{}, &apierr.AuthError{Msg: "creating token request: " + err.Error()}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := ts.httpClient.Do(req)
	if err != nil {
		return "", time.Time{}, &apierr.AuthError{Msg: "token request: " + err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", time.Time{}, &apierr.AuthError{Status: resp.StatusCode, Msg: "reading token response: " + err.Error()}
	}

	if resp.StatusCode != http.StatusOK {
		return "", time.Time{}, &apierr.AuthError{Status: resp.StatusCode, Msg: "token request rejected"}
	}

	var tok tokenResponse
	if err := json.Unmarshal(body, &tok); err != nil {
		return "", time.Time{}, &apierr.AuthError{Status: resp.StatusCode, Msg: "parsing token response: " + err.Error()}
	}
	if tok.AccessToken == "" {
		return "", time.Time{}, &apierr.AuthError{Status: resp.StatusCode, Msg: "access_token missing in response"}
	}

	expiresIn := defaultExpiresIn
	if tok.ExpiresIn > 0 {
		expiresIn = time.Duration(tok.ExpiresIn) * time.Second
	}

	return tok.AccessToken, ts.now().Add(expiresIn), nil
}
