// Package clinicapi provides a client for the clinic backend's REST API.
package clinicapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/practice-admin-console/internal/observability/metrics"
	"github.com/wolfman30/practice-admin-console/pkg/logging"
)

// Client is an HTTP client for the clinic backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
	metrics    *metrics.APIMetrics
}

// Option is a functional option for configuring the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *logging.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithMetrics attaches request metrics. A nil APIMetrics is safe.
func WithMetrics(m *metrics.APIMetrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// New creates a clinic API client.
// baseURL should be the backend root (e.g. "http://localhost:8080").
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("clinicapi: base URL is required")
	}

	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logging.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// BillingCodes fetches the billing-code catalog.
func (c *Client) BillingCodes(ctx context.Context) ([]BillingCode, error) {
	var codes []BillingCode
	if err := c.doJSON(ctx, http.MethodGet, "/api/billing_codes", "billing_codes", nil, &codes); err != nil {
		return nil, err
	}
	return codes, nil
}

// BillingModifiers fetches the modifiers for a profession. An empty
// profession asks the backend for the unscoped list.
func (c *Client) BillingModifiers(ctx context.Context, profession string) ([]BillingModifier, error) {
	path := "/api/billing_modifiers?profession=" + url.QueryEscape(profession)
	var mods []BillingModifier
	if err := c.doJSON(ctx, http.MethodGet, path, "billing_modifiers", nil, &mods); err != nil {
		return nil, err
	}
	return mods, nil
}

// SaveBillingSession persists a billing session with its entries. Any 2xx
// response is success.
func (c *Client) SaveBillingSession(ctx context.Context, sub SessionSubmission) error {
	err := c.doJSON(ctx, http.MethodPost, "/billing-sessions", "billing_sessions_save", sub, nil)
	if err != nil {
		c.metrics.ObserveSave("billing_session", "error")
		return err
	}
	c.metrics.ObserveSave("billing_session", "ok")
	return nil
}

// BillingSessions fetches all persisted sessions for a patient.
func (c *Client) BillingSessions(ctx context.Context, patientID int64) ([]BillingSession, error) {
	path := "/billing-sessions/" + strconv.FormatInt(patientID, 10)
	var sessions []BillingSession
	if err := c.doJSON(ctx, http.MethodGet, path, "billing_sessions_list", nil, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// CreateBooking creates a new booking.
func (c *Client) CreateBooking(ctx context.Context, rec BookingRecord) error {
	err := c.doJSON(ctx, http.MethodPost, "/api/bookings", "booking_create", rec, nil)
	if err != nil {
		c.metrics.ObserveSave("booking", "error")
		return err
	}
	c.metrics.ObserveSave("booking", "ok")
	return nil
}

// UpdateBooking updates the booking identified by id.
func (c *Client) UpdateBooking(ctx context.Context, id int64, rec BookingRecord) error {
	path := "/api/bookings/" + strconv.FormatInt(id, 10)
	err := c.doJSON(ctx, http.MethodPatch, path, "booking_update", rec, nil)
	if err != nil {
		c.metrics.ObserveSave("booking", "error")
		return err
	}
	c.metrics.ObserveSave("booking", "ok")
	return nil
}

// PatientBookings fetches a patient's booking history.
func (c *Client) PatientBookings(ctx context.Context, patientID int64) ([]PatientBooking, error) {
	path := "/api/patient/" + strconv.FormatInt(patientID, 10) + "/bookings"
	var bookings []PatientBooking
	if err := c.doJSON(ctx, http.MethodGet, path, "patient_bookings", nil, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

// doJSON issues one request and decodes the JSON response into out (which
// may be nil for calls where only the status matters). Non-2xx statuses
// become errors carrying the status and a body excerpt.
func (c *Client) doJSON(ctx context.Context, method, path, endpoint string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("clinicapi: marshal %s request: %w", endpoint, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("clinicapi: create %s request: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("clinic api request", "method", method, "endpoint", endpoint)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveRequest(endpoint, "error", time.Since(start).Seconds())
		return fmt.Errorf("clinicapi: %s request failed: %w", endpoint, err)
	}
	defer resp.Body.Close()

	c.metrics.ObserveRequest(endpoint, strconv.Itoa(resp.StatusCode), time.Since(start).Seconds())
	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.SetAttributes(
			attribute.String("clinicapi.endpoint", endpoint),
			attribute.Int("http.status_code", resp.StatusCode),
		)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("clinicapi: %s failed with status %d: %s", endpoint, resp.StatusCode, string(excerpt))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("clinicapi: decode %s response: %w", endpoint, err)
	}
	return nil
}
