package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// Client is the HTTP boundary to the mobile-money provider. It keeps no
// state between calls and is safe to share across checkout sessions.
type Client struct {
	baseURL        string
	merchantID     string
	merchantSecret string
	client         *http.Client
}

func NewClient(baseURL, merchantID, merchantSecret string) *Client {
	return &Client{
		baseURL:        strings.TrimSuffix(baseURL, "/"),
		merchantID:     merchantID,
		merchantSecret: merchantSecret,
		client:         &http.Client{Timeout: 30 * time.Second},
	}
}

type initiateReq struct {
	Amount            int64  `json:"amount"`
	ClientPhoneNumber string `json:"clientPhoneNumber"`
}

// Initiate posts a charge request to the provider's country-scoped endpoint.
// The response may already report completed (rare synchronous settlement);
// typically it is pending and the user still has to confirm on their phone.
func (c *Client) Initiate(ctx context.Context, req PaymentRequest) (*TransactionStatus, error) {
	payload := initiateReq{
		Amount:            NormalizeAmount(req.Amount),
		ClientPhoneNumber: req.PhoneNumber,
	}
	body, _ := json.Marshal(payload)
	apiReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/payment/"+string(req.Country), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	c.setHeaders(apiReq)
	log.Printf("[GATEWAY] POST /payment/%s phone=%s amount=%d", req.Country, req.PhoneNumber, payload.Amount)
	resp, err := c.client.Do(apiReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Printf("[GATEWAY] initiate failed status=%d body=%s", resp.StatusCode, string(respBody))
		return nil, &GatewayError{StatusCode: resp.StatusCode, Message: providerMessage(respBody)}
	}
	var out TransactionStatus
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("gateway: decode initiate response: %w", err)
	}
	log.Printf("[GATEWAY] initiated id=%s status=%s", out.ID, out.Status)
	return &out, nil
}

// CheckStatus fetches a fresh snapshot of the transaction. Authorization
// failures (HTTP 401 or "Unauthorized" body) come back as AuthorizationError
// so the caller can tell "the provider rejected our check" apart from a
// transient failure.
func (c *Client) CheckStatus(ctx context.Context, transactionID string) (*TransactionStatus, error) {
	apiReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/transactions/"+transactionID, nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(apiReq)
	resp, err := c.client.Do(apiReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		ge := GatewayError{StatusCode: resp.StatusCode, Message: providerMessage(respBody)}
		if resp.StatusCode == http.StatusUnauthorized || strings.Contains(string(respBody), "Unauthorized") {
			return nil, &AuthorizationError{GatewayError: ge}
		}
		return nil, &ge
	}
	var out TransactionStatus
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("gateway: decode transaction %s: %w", transactionID, err)
	}
	return &out, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Merchant-Id", c.merchantID)
	req.Header.Set("X-Merchant-Secret", c.merchantSecret)
}

// providerMessage digs the provider's message out of an error body, falling
// back to a generic one when the body is empty or not JSON.
func providerMessage(body []byte) string {
	var parsed struct {
		Message       string `json:"message"`
		FailureReason string `json:"failureReason"`
		Error         string `json:"error"`
	}
	if json.Unmarshal(body, &parsed) == nil {
		for _, m := range []string{parsed.Message, parsed.FailureReason, parsed.Error} {
			if m != "" {
				return m
			}
		}
	}
	return "payment gateway request failed"
}
