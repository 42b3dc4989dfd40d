package opensky

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/flightwall/flightwall/pkg/apierr"
)

func tokenServer(t *testing.T, requests *atomic.Int64, expiresIn int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
			t.Errorf("Expected form-encoded content type, got %q", ct)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("Parsing form: %v", err)
		}
		if got := r.PostForm.Get("grant_type"); got != "client_credentials" {
			t.Errorf("Expected grant_type=client_credentials, got %q", got)
		}
		if got := r.PostForm.Get("client_id"); got != "test-id" {
			t.Errorf("Expected client_id=test-id, got %q", got)
		}
		if got := r.PostForm.Get("client_secret"); got != "test-secret" {
			t.Errorf("Expected client_secret=test-secret, got %q", got)
		}

		n := requests.Add(1)
		w.Header().Set("Content-Type", "application/json")
		if expiresIn > 0 {
			fmt.Fprintf(w, `{"access_token":"tok%d","expires_in":%d,"token_type":"Bearer"}`, n, expiresIn)
		} else {
			fmt.Fprintf(w, `{"access_token":"tok%d","token_type":"Bearer"}`, n)
		}
	}))
}

// TestTokenReuse verifies two quick Token(false) calls issue exactly one
// token request.
func TestTokenReuse(t *testing.T) {
	var requests atomic.Int64
	server := tokenServer(t, &requests, 3600)
	defer server.Close()

	ts := NewTokenSource("test-id", "test-secret", server.URL)

	first, err := ts.Token(context.Background(), false)
	if err != nil {
		t.Fatalf("First Token call failed: %v", err)
	}
	second, err := ts.Token(context.Background(), false)
	if err != nil {
		t.Fatalf("Second Token call failed: %v", err)
	}

	if first != second {
		t.Errorf("Expected same cached token, got %q and %q", first, second)
	}
	if n := requests.Load(); n != 1 {
		t.Errorf("Expected exactly 1 token request, got %d", n)
	}
}

// TestTokenRefreshInsideSkew verifies a token that expires within the 60s
// skew window is replaced, not reused.
func TestTokenRefreshInsideSkew(t *testing.T) {
	var requests atomic.Int64
	server := tokenServer(t, &requests, 90) // expires in 90s
	defer server.Close()

	ts := NewTokenSource("test-id", "test-secret", server.URL)

	base := time.Now()
	ts.now = func() time.Time { return base }

	if _, err := ts.Token(context.Background(), false); err != nil {
		t.Fatalf("First Token call failed: %v", err)
	}

	// Advance to 45s: 45s of the 90s lifetime remain, which is inside the
	// 60s skew window.
	ts.now = func() time.Time { return base.Add(45 * time.Second) }

	if _, err := ts.Token(context.Background(), false); err != nil {
		t.Fatalf("Second Token call failed: %v", err)
	}
	if n := requests.Load(); n != 2 {
		t.Errorf("Expected a refresh inside the skew window, got %d requests", n)
	}
}

// TestTokenForceRefresh verifies forceRefresh bypasses a perfectly valid
// cached token.
func TestTokenForceRefresh(t *testing.T) {
	var requests atomic.Int64
	server := tokenServer(t, &requests, 3600)
	defer server.Close()

	ts := NewTokenSource("test-id", "test-secret", server.URL)

	first, err := ts.Token(context.Background(), false)
	if err != nil {
		t.Fatalf("First Token call failed: %v", err)
	}
	second, err := ts.Token(context.Background(), true)
	if err != nil {
		t.Fatalf("Forced Token call failed: %v", err)
	}

	if first == second {
		t.Errorf("Expected a fresh token on forced refresh, got %q twice", first)
	}
	if n := requests.Load(); n != 2 {
		t.Errorf("Expected 2 token requests, got %d", n)
	}
}

// TestTokenDefaultExpiry verifies the 1800s default when expires_in is
// absent: the token must still be valid just inside that window.
func TestTokenDefaultExpiry(t *testing.T) {
	var requests atomic.Int64
	server := tokenServer(t, &requests, 0) // response omits expires_in
	defer server.Close()

	ts := NewTokenSource("test-id", "test-secret", server.URL)

	base := time.Now()
	ts.now = func() time.Time { return base }

	if _, err := ts.Token(context.Background(), false); err != nil {
		t.Fatalf("First Token call failed: %v", err)
	}

	// 1500s in: 300s remain of the 1800s default, outside the skew window.
	ts.now = func() time.Time { return base.Add(1500 * time.Second) }
	if _, err := ts.Token(context.Background(), false); err != nil {
		t.Fatalf("Second Token call failed: %v", err)
	}
	if n := requests.Load(); n != 1 {
		t.Errorf("Expected cached token inside default expiry, got %d requests", n)
	}

	// 1790s in: inside the skew window, must refresh.
	ts.now = func() time.Time { return base.Add(1790 * time.Second) }
	if _, err := ts.Token(context.Background(), false); err != nil {
		t.Fatalf("Third Token call failed: %v", err)
	}
	if n := requests.Load(); n != 2 {
		t.Errorf("Expected refresh near default expiry, got %d requests", n)
	}
}

// TestTokenFailures covers credential, HTTP, parse, and empty-token errors.
func TestTokenFailures(t *testing.T) {
	t.Run("Missing credentials", func(t *testing.T) {
		ts := NewTokenSource("", "", "http://unused.invalid")
		_, err := ts.Token(context.Background(), false)
		if !apierr.IsConfig(err) {
			t.Errorf("Expected ConfigError, got %v", err)
		}
	})

	t.Run("Non-200 status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer server.Close()

		ts := NewTokenSource("test-id", "test-secret", server.URL)
		_, err := ts.Token(context.Background(), false)
		if !apierr.IsAuth(err) {
			t.Errorf("Expected AuthError, got %v", err)
		}
	})

	t.Run("Malformed body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, "not json")
		}))
		defer server.Close()

		ts := NewTokenSource("test-id", "test-secret", server.URL)
		_, err := ts.Token(context.Background(), false)
		if !apierr.IsAuth(err) {
			t.Errorf("Expected AuthError, got %v", err)
		}
	})

	t.Run("Empty access_token", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"access_token":"","expires_in":1800}`)
		}))
		defer server.Close()

		ts := NewTokenSource("test-id", "test-secret", server.URL)
		_, err := ts.Token(context.Background(), false)
		if !apierr.IsAuth(err) {
			t.Errorf("Expected AuthError, got %v", err)
		}
	})
}
