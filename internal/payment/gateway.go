// Package payment is a thin adapter over the external payment gateway's
// hosted-checkout API. It deliberately wraps only the two calls this service
// needs; anything richer belongs in a full SDK.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"
)

type CheckoutRequest struct {
	APIKey        string
	AmountCents   int64
	Currency      string
	InvoiceNumber string
	Description   string
	CustomerName  string
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
}

type CheckoutResult struct {
	PaymentURL string
}

// Gateway is the narrow surface the payment session bridge depends on.
type Gateway interface {
	CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error)
	Ping(ctx context.Context, apiKey string) error
}

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

type checkoutPayload struct {
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
	InvoiceNumber string `json:"invoice_number"`
	Description   string `json:"description"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	SuccessURL    string `json:"success_url"`
	CancelURL     string `json:"cancel_url"`
}

type checkoutResponse struct {
	Success    bool   `json:"success"`
	PaymentURL string `json:"payment_url"`
	Error      string `json:"error"`
}

// CreateCheckout opens a hosted checkout session. Transient HTTP failures are
// retried with fibonacci backoff before giving up.
func (c *Client) CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error) {
	const op = "payment.Client.CreateCheckout"

	body, err := json.Marshal(checkoutPayload{
		Amount:        req.AmountCents,
		Currency:      req.Currency,
		InvoiceNumber: req.InvoiceNumber,
		Description:   req.Description,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		SuccessURL:    req.SuccessURL,
		CancelURL:     req.CancelURL,
	})
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	var out checkoutResponse

	backoff := retry.WithMaxRetries(3, retry.NewFibonacci(500*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
			c.baseURL+"/v1/checkout/sessions", bytes.NewReader(body))
		if err != nil {
			return err
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Authorization", "Bearer "+req.APIKey)

		resp, err := c.http.Do(httpReq)
		if err != nil {
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			return retry.RetryableError(fmt.Errorf("gateway returned %d", resp.StatusCode))
		}
		if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
			return fmt.Errorf("gateway returned %d", resp.StatusCode)
		}

		return json.NewDecoder(resp.Body).Decode(&out)
	})
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if !out.Success {
		return nil, fmt.Errorf("%s: checkout rejected: %s", op, out.Error)
	}

	return &CheckoutResult{PaymentURL: out.PaymentURL}, nil
}

// Ping verifies the gateway credentials. Unlike CreateCheckout, failures here
// are meant to be surfaced to the caller (the test-connection endpoint).
func (c *Client) Ping(ctx context.Context, apiKey string) error {
	const op = "payment.Client.Ping"

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/ping", nil)
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: gateway returned %d", op, resp.StatusCode)
	}

	return nil
}
