package validation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/tpprogramming22/weekendinthecity/internal/logger"
	"github.com/tpprogramming22/weekendinthecity/internal/models"
)

const DefaultBaseURL = "http://localhost:8081"

// APIValidator smoke-checks the public contract of a running instance.
// Every check is free of side effects: no booking is created and no mail is sent.
type APIValidator struct {
	baseURL string
	client  *http.Client
	log     *slog.Logger
}

func NewAPIValidator(baseURL string) *APIValidator {
	return &APIValidator{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		log:     logger.Get(),
	}
}

// ValidateAll runs every check and stops at the first failure
func (v *APIValidator) ValidateAll() error {
	v.log.Info("Validating API contract", "base_url", v.baseURL)

	checks := []struct {
		name string
		fn   func() error
	}{
		{"health", v.validateHealth},
		{"events", v.validateEvents},
		{"checkout", v.validateCheckout},
		{"webhook", v.validateWebhook},
		{"contact", v.validateContact},
	}

	for _, check := range checks {
		if err := check.fn(); err != nil {
			return fmt.Errorf("%s validation failed: %w", check.name, err)
		}
		v.log.Info("Check passed", "check", check.name)
	}

	v.log.Info("All endpoints passed validation")
	return nil
}

func (v *APIValidator) validateHealth() error {
	status, _, err := v.do(http.MethodGet, "/health", nil, nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("GET /health: expected 200, got %d", status)
	}
	return nil
}

func (v *APIValidator) validateEvents() error {
	status, body, err := v.do(http.MethodGet, "/events", nil, nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("GET /events: expected 200, got %d", status)
	}

	var resp models.ListEventsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("GET /events: failed to decode response: %w", err)
	}
	if resp.Events == nil {
		return fmt.Errorf("GET /events: expected an events array")
	}
	for _, e := range resp.Events {
		if e.ID == "" || e.Title == "" {
			return fmt.Errorf("GET /events: event without id or title")
		}
		if e.Sold > e.Capacity {
			v.log.Warn("Event sold past capacity", "event_id", e.ID, "sold", e.Sold, "capacity", e.Capacity)
		}
	}
	return nil
}

func (v *APIValidator) validateCheckout() error {
	status, body, err := v.do(http.MethodPost, "/checkout", map[string]string{}, nil)
	if err != nil {
		return err
	}
	return expectError("POST /checkout", status, body, http.StatusBadRequest, "Missing required fields: eventId, customerName, customerEmail")
}

func (v *APIValidator) validateWebhook() error {
	status, body, err := v.do(http.MethodPost, "/webhook", map[string]string{"type": "checkout.session.completed"}, nil)
	if err != nil {
		return err
	}
	return expectError("POST /webhook", status, body, http.StatusBadRequest, "No signature provided")
}

func (v *APIValidator) validateContact() error {
	req := models.ContactRequest{Honeypot: "validator"}
	status, body, err := v.do(http.MethodPost, "/contact", req, map[string]string{"X-Forwarded-For": "192.0.2.10"})
	if err != nil {
		return err
	}
	// Repeated runs within the window hit the limiter first
	if status == http.StatusTooManyRequests {
		return nil
	}
	return expectError("POST /contact", status, body, http.StatusBadRequest, "Spam detected")
}

func expectError(name string, status int, body []byte, wantStatus int, wantMessage string) error {
	if status != wantStatus {
		return fmt.Errorf("%s: expected %d, got %d", name, wantStatus, status)
	}
	var resp struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("%s: failed to decode error response: %w", name, err)
	}
	if resp.Error != wantMessage {
		return fmt.Errorf("%s: expected error %q, got %q", name, wantMessage, resp.Error)
	}
	return nil
}

func (v *APIValidator) do(method, path string, body interface{}, headers map[string]string) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequest(method, v.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, val := range headers {
		req.Header.Set(k, val)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, data, nil
}

// RunValidation validates the instance at the given base URL, or the local default
func RunValidation(args ...string) {
	baseURL := DefaultBaseURL
	if len(args) > 0 && args[0] != "" {
		baseURL = args[0]
	}

	if err := NewAPIValidator(baseURL).ValidateAll(); err != nil {
		logger.Fatal("Validation failed", "error", err)
	}
}
