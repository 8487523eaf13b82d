package diet

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"diet-wizard/internal/config"
	"diet-wizard/internal/wizard"

	"github.com/golang-jwt/jwt/v5"
)

const maxResponseBytes = 1 << 20

// Generator requests a diet for a complete profile.
type Generator interface {
	Create(ctx context.Context, profile wizard.CompleteProfile) (*Plan, error)
}

// Client talks to the remote diet-generation service.
type Client struct {
	baseURL    string
	secret     []byte
	httpClient *http.Client
}

// NewClient creates a new diet API client.
func NewClient(cfg *config.Config) *Client {
	c := &Client{
		baseURL: cfg.DietAPIURL,
		httpClient: &http.Client{
			Timeout: cfg.DietAPITimeout,
		},
	}
	if cfg.DietAPISecret != "" {
		c.secret = []byte(cfg.DietAPISecret)
	}
	return c
}

// Create posts the seven profile fields to /create and decodes the generated diet.
func (c *Client) Create(ctx context.Context, profile wizard.CompleteProfile) (*Plan, error) {
	jsonBody, err := json.Marshal(profile.Profile())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/create", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, &TransportError{Op: "create", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if c.secret != nil {
		token, err := c.createToken()
		if err != nil {
			return nil, fmt.Errorf("failed to create api token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: "create", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &TransportError{
			Op:         "create",
			StatusCode: resp.StatusCode,
			Err:        errors.New(string(bodyBytes)),
		}
	}

	var body createResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&body); err != nil {
		if ctx.Err() != nil {
			return nil, &TransportError{Op: "create", Err: ctx.Err()}
		}
		return nil, malformed("failed to decode body: %v", err)
	}

	return body.toPlan()
}

// createToken generates a short-lived JWT for the diet API.
func (c *Client) createToken() (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    "diet-wizard",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(5 * time.Minute)),
		Audience:  jwt.ClaimStrings{"/create"},
	})
	return token.SignedString(c.secret)
}
