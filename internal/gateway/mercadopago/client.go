package mercadopago

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

const DefaultBaseURL = "https://api.mercadopago.com"

// APIError is the error body Mercado Pago returns on 4xx/5xx.
type APIError struct {
	StatusCode int    `json:"status"`
	Code       string `json:"error"`
	Message    string `json:"message"`
	Cause      []struct {
		Code        any    `json:"code"`
		Description string `json:"description"`
	} `json:"cause"`
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.Code != "" {
		return fmt.Sprintf("mercadopago %d %s: %s", e.StatusCode, e.Code, msg)
	}
	return fmt.Sprintf("mercadopago %d: %s", e.StatusCode, msg)
}

type Client struct {
	http *resty.Client
}

func New(accessToken, baseURL string, timeout time.Duration) (*Client, error) {
	if strings.TrimSpace(accessToken) == "" {
		return nil, errors.New("mercadopago access token is empty")
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	hc := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetAuthToken(accessToken).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	return &Client{http: hc}, nil
}

func (c *Client) CreatePreference(ctx context.Context, req PreferenceRequest) (*Preference, error) {
	var out Preference
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		SetError(&APIError{}).
		Post("/checkout/preferences")
	if err := check(resp, err, "create preference"); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreatePayment submits a card charge. Each call carries a fresh idempotency
// key, so a client retry is a new charge.
func (c *Client) CreatePayment(ctx context.Context, req PaymentRequest) (*Payment, error) {
	var out Payment
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("X-Idempotency-Key", uuid.NewString()).
		SetBody(req).
		SetResult(&out).
		SetError(&APIError{}).
		Post("/v1/payments")
	if err := check(resp, err, "create payment"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetPayment(ctx context.Context, id string) (*Payment, error) {
	var out Payment
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", id).
		SetResult(&out).
		SetError(&APIError{}).
		Get("/v1/payments/{id}")
	if err := check(resp, err, "get payment"); err != nil {
		return nil, err
	}
	return &out, nil
}

func check(resp *resty.Response, err error, op string) error {
	if err != nil {
		return fmt.Errorf("mercadopago %s: %w", op, err)
	}
	if !resp.IsError() {
		return nil
	}
	apiErr, ok := resp.Error().(*APIError)
	if !ok || apiErr == nil {
		apiErr = &APIError{}
	}
	if apiErr.StatusCode == 0 {
		apiErr.StatusCode = resp.StatusCode()
	}
	return fmt.Errorf("%s: %w", op, apiErr)
}
