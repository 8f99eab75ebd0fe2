// Package truelayer is the HTTP client for the payment provider's auth and
// payments APIs. Every call is a single attempt; failures surface as
// *UpstreamError.
package truelayer

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"

	"github.com/Chris-Carty/Piggy-Bank-Server/internal/config"
	"github.com/Chris-Carty/Piggy-Bank-Server/internal/signing"
)

const (
	PaymentsPath = "/payments"
	tokenPath    = "/connect/token"
	paymentScope = "payments"
)

var ErrMissingPaymentID = errors.New("payment id is required")

// UpstreamError carries the provider's status code and verbatim response
// body. StatusCode is zero when the provider could not be reached.
type UpstreamError struct {
	Op         string
	StatusCode int
	Body       []byte
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: upstream unreachable: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: upstream returned %d: %s", e.Op, e.StatusCode, e.Body)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// SignedRequest is a payment submission whose Headers and Body were used to
// compute Signature. The client sends them unmodified.
type SignedRequest struct {
	Path      string
	Headers   []signing.Header
	Body      []byte
	Signature string
}

type PaymentCreated struct {
	ID            string `json:"id"`
	ResourceToken string `json:"resource_token"`
	Status        string `json:"status"`
	User          struct {
		ID string `json:"id"`
	} `json:"user"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

type Client struct {
	http         *resty.Client
	authURL      string
	apiURL       string
	clientID     string
	clientSecret string
}

func NewClient(cfg config.TrueLayerConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		http: resty.New().
			SetTimeout(timeout).
			SetRetryCount(0).
			SetJSONMarshaler(json.Marshal).
			SetJSONUnmarshaler(json.Unmarshal).
			SetHeader("Accept", "application/json"),
		authURL:      cfg.AuthURL,
		apiURL:       cfg.APIURL,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
	}
}

// AccessToken performs a client-credentials grant scoped to payments.
func (c *Client) AccessToken(ctx context.Context) (string, error) {
	var out tokenResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{
			"client_id":     c.clientID,
			"client_secret": c.clientSecret,
			"scope":         paymentScope,
			"grant_type":    "client_credentials",
		}).
		SetResult(&out).
		Post(c.authURL + tokenPath)
	if err := check("access token", resp, err); err != nil {
		return "", err
	}

	if out.AccessToken == "" {
		return "", &UpstreamError{Op: "access token", StatusCode: resp.StatusCode(), Body: resp.Body()}
	}
	return out.AccessToken, nil
}

func (c *Client) SubmitPayment(ctx context.Context, accessToken string, req SignedRequest) (*PaymentCreated, error) {
	var out PaymentCreated

	r := c.http.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetResult(&out)
	for _, h := range req.Headers {
		r.SetHeader(h.Name, h.Value)
	}
	r.SetHeader("Tl-Signature", req.Signature)
	r.SetBody(req.Body)

	resp, err := r.Post(c.apiURL + req.Path)
	if err := check("submit payment", resp, err); err != nil {
		return nil, err
	}

	if out.ID == "" || out.ResourceToken == "" {
		return nil, &UpstreamError{Op: "submit payment", StatusCode: resp.StatusCode(), Body: resp.Body()}
	}
	return &out, nil
}

// PaymentStatus returns the provider's status payload verbatim.
func (c *Client) PaymentStatus(ctx context.Context, accessToken, paymentID string) ([]byte, error) {
	if paymentID == "" {
		return nil, ErrMissingPaymentID
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		Get(c.apiURL + PaymentsPath + "/" + url.PathEscape(paymentID))
	if err := check("payment status", resp, err); err != nil {
		return nil, err
	}

	return resp.Body(), nil
}

func check(op string, resp *resty.Response, err error) error {
	if err != nil {
		return &UpstreamError{Op: op, Err: err}
	}
	if resp.IsError() || resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return &UpstreamError{Op: op, StatusCode: resp.StatusCode(), Body: resp.Body()}
	}
	return nil
}
