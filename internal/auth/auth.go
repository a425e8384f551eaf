// Package auth decides who may take a seat on the table server. The
// default Open validator admits anyone; a shared token or an external
// webhook can gate joins instead.
package auth

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var (
	// ErrInvalidToken indicates the credentials are definitively wrong.
	ErrInvalidToken = errors.New("auth: invalid token")

	// ErrUnavailable indicates the validator could not reach a verdict,
	// e.g. the webhook endpoint is down. The server fails closed on it.
	ErrUnavailable = errors.New("auth: unavailable")
)

// Validator checks a joining player's credentials. A nil error admits
// the player.
type Validator interface {
	Validate(ctx context.Context, name, token string) error
}

// Open admits every player without checking anything.
type Open struct{}

func (Open) Validate(context.Context, string, string) error {
	return nil
}

// Static compares the presented token against a shared secret.
type Static struct {
	secret []byte
}

func NewStatic(secret string) *Static {
	return &Static{secret: []byte(secret)}
}

func (s *Static) Validate(_ context.Context, _, token string) error {
	if token == "" {
		return ErrInvalidToken
	}
	if subtle.ConstantTimeCompare([]byte(token), s.secret) != 1 {
		return ErrInvalidToken
	}
	return nil
}

// Webhook defers the verdict to an external HTTP endpoint. It POSTs
// the player's name and token as JSON and reads back a verdict.
type Webhook struct {
	url     string
	client  *http.Client
	timeout time.Duration
}

func NewWebhook(url string, timeout time.Duration) *Webhook {
	return &Webhook{
		url:     url,
		timeout: timeout,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

type verifyRequest struct {
	Name  string `json:"name"`
	Token string `json:"token"`
}

type verifyResponse struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

func (w *Webhook) Validate(ctx context.Context, name, token string) error {
	// An empty token can never be valid when auth is enabled, so skip
	// the round trip.
	if token == "" {
		return ErrInvalidToken
	}

	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	reqBody, err := json.Marshal(verifyRequest{Name: name, Token: token})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(reqBody))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// Decode the verdict below.
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrInvalidToken
	default:
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	// Limit the response body to 1MB to avoid pathological responses.
	var verdict verifyResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&verdict); err != nil {
		return fmt.Errorf("%w: decode error: %v", ErrUnavailable, err)
	}

	if !verdict.Valid {
		return ErrInvalidToken
	}
	return nil
}
