package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	goauth "golang.org/x/oauth2/google"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"worklog/internal/config"
)

var ErrNoCredentials = errors.New("missing Google credentials (set GOOGLE_SERVICE_ACCOUNT_JSON/FILE or GOOGLE_OAUTH_CLIENT_* and GOOGLE_OAUTH_TOKEN_*)")

// Credentials holds raw credential documents. A service account wins over
// an OAuth client and token pair when both are present.
type Credentials struct {
	ServiceAccountJSON []byte
	OAuthClientJSON    []byte
	OAuthTokenJSON     []byte
}

// CredentialsFromConfig reads inline JSON or the referenced files.
func CredentialsFromConfig(cfg *config.Config) (Credentials, error) {
	var (
		creds Credentials
		err   error
	)
	if creds.ServiceAccountJSON, err = inlineOrFile(cfg.GoogleServiceAccountJSON, cfg.GoogleServiceAccountFile); err != nil {
		return Credentials{}, fmt.Errorf("service account: %w", err)
	}
	if creds.OAuthClientJSON, err = inlineOrFile(cfg.GoogleOAuthClientJSON, cfg.GoogleOAuthClientFile); err != nil {
		return Credentials{}, fmt.Errorf("oauth client: %w", err)
	}
	if creds.OAuthTokenJSON, err = inlineOrFile(cfg.GoogleOAuthTokenJSON, cfg.GoogleOAuthTokenFile); err != nil {
		return Credentials{}, fmt.Errorf("oauth token: %w", err)
	}
	return creds, nil
}

func inlineOrFile(inline, path string) ([]byte, error) {
	if s := strings.TrimSpace(inline); s != "" {
		return []byte(s), nil
	}
	if path = strings.TrimSpace(path); path == "" {
		return nil, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return b, nil
}

// clientOptions turns credentials into API client options.
func clientOptions(ctx context.Context, creds Credentials) ([]goption.ClientOption, error) {
	switch {
	case len(creds.ServiceAccountJSON) > 0:
		return []goption.ClientOption{
			goption.WithCredentialsJSON(creds.ServiceAccountJSON),
			goption.WithScopes(gsheet.SpreadsheetsScope),
		}, nil

	case len(creds.OAuthClientJSON) > 0 && len(creds.OAuthTokenJSON) > 0:
		oc, err := goauth.ConfigFromJSON(creds.OAuthClientJSON, gsheet.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("oauth config: %w", err)
		}
		var tok oauth2.Token
		if err := json.Unmarshal(creds.OAuthTokenJSON, &tok); err != nil {
			return nil, fmt.Errorf("oauth token: %w", err)
		}
		// Token refreshes go through the pooled client too.
		ctx = context.WithValue(ctx, oauth2.HTTPClient, newHTTPClientWithPooling())
		return []goption.ClientOption{goption.WithTokenSource(oc.TokenSource(ctx, &tok))}, nil

	default:
		return nil, ErrNoCredentials
	}
}

// newHTTPClientWithPooling creates an HTTP client for the Sheets API with
// connection pooling and bounded timeouts.
func newHTTPClientWithPooling() *http.Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		MaxConnsPerHost:       50,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   60 * time.Second,
	}
}
