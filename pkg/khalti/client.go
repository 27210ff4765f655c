package khalti

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Lookup statuses reported by the ePayment API.
const (
	StatusCompleted    = "Completed"
	StatusPending      = "Pending"
	StatusInitiated    = "Initiated"
	StatusRefunded     = "Refunded"
	StatusExpired      = "Expired"
	StatusUserCanceled = "User canceled"
)

type Client struct {
	HTTPClient *http.Client
	BaseURL    string
	SecretKey  string
}

type CustomerInfo struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

type InitiateRequest struct {
	ReturnURL         string        `json:"return_url"`
	WebsiteURL        string        `json:"website_url"`
	Amount            int64         `json:"amount"`
	PurchaseOrderID   string        `json:"purchase_order_id"`
	PurchaseOrderName string        `json:"purchase_order_name"`
	CustomerInfo      *CustomerInfo `json:"customer_info,omitempty"`
}

type InitiateResponse struct {
	Pidx       string `json:"pidx"`
	PaymentURL string `json:"payment_url"`
	ExpiresAt  string `json:"expires_at"`
	ExpiresIn  int    `json:"expires_in"`
}

type LookupResponse struct {
	Pidx          string `json:"pidx"`
	TotalAmount   int64  `json:"total_amount"`
	Status        string `json:"status"`
	TransactionID string `json:"transaction_id"`
	Fee           int64  `json:"fee"`
	Refunded      bool   `json:"refunded"`
}

// ToPaisa converts an NPR amount to the integer paisa the API expects.
func ToPaisa(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// Initiate returns both the decoded response and the raw body, which callers
// hand back to the browser unchanged.
func (c Client) Initiate(ctx context.Context, req InitiateRequest) (*InitiateResponse, json.RawMessage, error) {
	var out InitiateResponse
	raw, err := c.doJSON(ctx, http.MethodPost, "/epayment/initiate/", req, &out)
	if err != nil {
		return nil, raw, err
	}
	if out.Pidx == "" {
		return nil, raw, fmt.Errorf("khalti initiate: missing pidx")
	}
	return &out, raw, nil
}

func (c Client) Lookup(ctx context.Context, pidx string) (*LookupResponse, json.RawMessage, error) {
	var out LookupResponse
	raw, err := c.doJSON(ctx, http.MethodPost, "/epayment/lookup/", map[string]string{"pidx": pidx}, &out)
	if err != nil {
		return nil, raw, err
	}
	return &out, raw, nil
}

func (c Client) doJSON(ctx context.Context, method, path string, reqBody any, respBody any) (json.RawMessage, error) {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 20 * time.Second}
	}
	if c.BaseURL == "" || c.SecretKey == "" {
		return nil, fmt.Errorf("missing khalti base url or secret key")
	}

	var buf bytes.Buffer
	if reqBody != nil {
		if err := json.NewEncoder(&buf).Encode(reqBody); err != nil {
			return nil, err
		}
	}

	u := strings.TrimSuffix(c.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, method, u, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Key "+c.SecretKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	b, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return nil, readErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if len(b) > 0 {
			return b, fmt.Errorf("khalti api error: status=%d body=%s", resp.StatusCode, string(b))
		}
		return nil, fmt.Errorf("khalti api error: status=%d", resp.StatusCode)
	}

	if respBody != nil && len(b) > 0 {
		if err := json.Unmarshal(b, respBody); err != nil {
			return b, fmt.Errorf("decode khalti response failed: %w body=%s", err, string(b))
		}
	}
	return b, nil
}
