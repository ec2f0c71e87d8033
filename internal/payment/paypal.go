package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// DefaultAPIURL is the PayPal sandbox endpoint.
const DefaultAPIURL = "https://api-m.sandbox.paypal.com"

// ErrNotConfigured is returned when the client has no credentials.
var ErrNotConfigured = errors.New("paypal client not configured")

// StatusError is a non-2xx answer from PayPal.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// IsRejected reports whether err is a 4xx answer: PayPal understood the request and
// refused it, for example an unknown order id.
func IsRejected(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode >= 400 && se.StatusCode < 500
}

// Verification is what PayPal reports for a captured checkout order.
type Verification struct {
	Verified bool
	Amount   float64
}

// Config holds PayPal credentials.
type Config struct {
	ClientID  string
	AppSecret string
	APIURL    string
}

// Client verifies PayPal payments. Calls go through a circuit breaker so a failing
// gateway is not hammered by every payment attempt.
type Client struct {
	cfg        Config
	httpClient *http.Client
	cb         *gobreaker.CircuitBreaker
	log        *zap.Logger
}

// NewClient creates a PayPal client.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	if logger == nil {
		logger = zap.NewNop()
	}
	st := gobreaker.Settings{
		Name:        "paypal",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// only transport errors and 5xx count against the gateway
		IsSuccessful: func(err error) bool {
			return err == nil || IsRejected(err)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Info("circuit breaker state", zap.String("name", name), zap.String("from", from.String()), zap.String("to", to.String()))
		},
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		cb:         gobreaker.NewCircuitBreaker(st),
		log:        logger,
	}
}

// IsConfigured reports whether the client has credentials.
func (c *Client) IsConfigured() bool {
	return c.cfg.ClientID != "" && c.cfg.AppSecret != ""
}

// Verify looks up the PayPal order and reports whether it was completed and for how much.
func (c *Client) Verify(ctx context.Context, paypalOrderID string) (*Verification, error) {
	if !c.IsConfigured() {
		return nil, ErrNotConfigured
	}
	out, err := c.cb.Execute(func() (interface{}, error) {
		token, err := c.accessToken(ctx)
		if err != nil {
			return nil, err
		}
		return c.fetchOrder(ctx, token, paypalOrderID)
	})
	if err != nil {
		return nil, err
	}
	return out.(*Verification), nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

func (c *Client) accessToken(ctx context.Context) (string, error) {
	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.SetBasicAuth(c.cfg.ClientID, c.cfg.AppSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var tr tokenResponse
	if err := c.do(req, &tr); err != nil {
		return "", fmt.Errorf("paypal access token: %w", err)
	}
	if tr.AccessToken == "" {
		return "", errors.New("paypal access token: empty token")
	}
	return tr.AccessToken, nil
}

type orderResponse struct {
	Status        string `json:"status"`
	PurchaseUnits []struct {
		Amount struct {
			Value string `json:"value"`
		} `json:"amount"`
	} `json:"purchase_units"`
}

func (c *Client) fetchOrder(ctx context.Context, token, paypalOrderID string) (*Verification, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.APIURL+"/v2/checkout/orders/"+url.PathEscape(paypalOrderID), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create order request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	var or orderResponse
	if err := c.do(req, &or); err != nil {
		return nil, fmt.Errorf("paypal order %s: %w", paypalOrderID, err)
	}
	v := &Verification{Verified: or.Status == "COMPLETED"}
	if len(or.PurchaseUnits) > 0 {
		amount, err := strconv.ParseFloat(or.PurchaseUnits[0].Amount.Value, 64)
		if err != nil {
			return nil, fmt.Errorf("paypal order %s: bad amount %q: %w", paypalOrderID, or.PurchaseUnits[0].Amount.Value, err)
		}
		v.Amount = amount
	}
	return v, nil
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
