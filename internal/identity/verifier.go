// Package identity adapts the external identity provider that owns staff
// credentials. Password hashing and storage live entirely on the provider
// side; this package only asks it yes-or-no questions.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Murilo2811/relm-care-plus/internal/warranty/entity"
	"github.com/Murilo2811/relm-care-plus/internal/warranty/service"
)

// HTTPVerifier verifies credentials against the provider's verify endpoint.
type HTTPVerifier struct {
	verifyURL  string
	httpClient *http.Client
}

// NewHTTPVerifier creates a verifier for the given endpoint.
func NewHTTPVerifier(verifyURL string, timeout time.Duration) *HTTPVerifier {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPVerifier{
		verifyURL: verifyURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type verifyRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type verifyResponse struct {
	Valid bool `json:"valid"`
}

// Verify asks the provider to check the password. Any answer other than
// an explicit valid=true is treated as a failed check.
func (v *HTTPVerifier) Verify(ctx context.Context, user *entity.User, password string) error {
	bodyBytes, err := json.Marshal(verifyRequest{
		Email:    user.Email,
		Password: password,
	})
	if err != nil {
		return fmt.Errorf("marshal verify request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", v.verifyURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("build verify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call identity provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("identity provider returned %d", resp.StatusCode)
	}

	var out verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("decode verify response: %w", err)
	}
	if !out.Valid {
		return fmt.Errorf("credentials rejected")
	}
	return nil
}

var _ service.CredentialVerifier = (*HTTPVerifier)(nil)
