package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/ederjesus1004/Prescito-Doctor/internal/domain/providers"
	apperrors "github.com/ederjesus1004/Prescito-Doctor/pkg/errors"
)

const (
	paypalLiveURL    = "https://api-m.paypal.com"
	paypalSandboxURL = "https://api-m.sandbox.paypal.com"
)

// PayPalAdapter implements PaymentProvider against the PayPal orders API
type PayPalAdapter struct {
	clientID     string
	clientSecret string
	client       *http.Client
	baseURL      string

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewPayPalAdapter creates a new PayPal adapter
func NewPayPalAdapter(clientID, clientSecret string, sandbox bool, timeout time.Duration) providers.PaymentProvider {
	baseURL := paypalLiveURL
	if sandbox {
		baseURL = paypalSandboxURL
	}
	return &PayPalAdapter{
		clientID:     clientID,
		clientSecret: clientSecret,
		client:       &http.Client{Timeout: timeout},
		baseURL:      baseURL,
	}
}

// Name returns the provider identifier
func (a *PayPalAdapter) Name() string {
	return "paypal"
}

// CreateSession creates a PayPal order and returns its approval link
func (a *PayPalAdapter) CreateSession(ctx context.Context, req providers.CheckoutRequest) (*providers.PaymentSession, error) {
	token, err := a.token(ctx)
	if err != nil {
		return nil, err
	}

	payload := map[string]interface{}{
		"intent": "CAPTURE",
		"purchase_units": []map[string]interface{}{
			{
				"reference_id": req.AppointmentID,
				"description":  req.Description,
				"amount": map[string]string{
					"currency_code": strings.ToUpper(req.Currency),
					"value":         formatMinorUnits(req.Amount),
				},
			},
		},
		"application_context": map[string]string{
			"return_url": req.SuccessURL,
			"cancel_url": req.CancelURL,
		},
	}
	body, _ := json.Marshal(payload)

	httpReq, err := http.NewRequestWithContext(ctx, "POST",
		a.baseURL+"/v2/checkout/orders", bytes.NewBuffer(body))
	if err != nil {
		return nil, apperrors.NewExternalError("failed to build paypal request", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, apperrors.NewExternalError("paypal request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, apperrors.NewExternalError(
			fmt.Sprintf("paypal api error: status %d", resp.StatusCode), nil)
	}

	var result struct {
		ID    string `json:"id"`
		Links []struct {
			Rel  string `json:"rel"`
			Href string `json:"href"`
		} `json:"links"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, apperrors.NewExternalError("failed to decode paypal response", err)
	}

	session := &providers.PaymentSession{Ref: result.ID}
	for _, link := range result.Links {
		if link.Rel == "approve" {
			session.RedirectURL = link.Href
			break
		}
	}

	return session, nil
}

// VerifyCapture checks the order status and captures approved orders
func (a *PayPalAdapter) VerifyCapture(ctx context.Context, ref string) (bool, error) {
	status, err := a.orderStatus(ctx, ref)
	if err != nil {
		return false, err
	}

	switch status {
	case "COMPLETED":
		return true, nil
	case "APPROVED":
		return a.capture(ctx, ref)
	default:
		return false, nil
	}
}

func (a *PayPalAdapter) orderStatus(ctx context.Context, ref string) (string, error) {
	token, err := a.token(ctx)
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, "GET",
		fmt.Sprintf("%s/v2/checkout/orders/%s", a.baseURL, url.PathEscape(ref)), nil)
	if err != nil {
		return "", apperrors.NewExternalError("failed to build paypal request", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return "", apperrors.NewExternalError("paypal request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", apperrors.NewExternalError(
			fmt.Sprintf("paypal api error: status %d", resp.StatusCode), nil)
	}

	var result struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", apperrors.NewExternalError("failed to decode paypal response", err)
	}

	return result.Status, nil
}

func (a *PayPalAdapter) capture(ctx context.Context, ref string) (bool, error) {
	token, err := a.token(ctx)
	if err != nil {
		return false, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST",
		fmt.Sprintf("%s/v2/checkout/orders/%s/capture", a.baseURL, url.PathEscape(ref)), nil)
	if err != nil {
		return false, apperrors.NewExternalError("failed to build paypal request", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return false, apperrors.NewExternalError("paypal request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return false, apperrors.NewExternalError(
			fmt.Sprintf("paypal api error: status %d", resp.StatusCode), nil)
	}

	var result struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, apperrors.NewExternalError("failed to decode paypal response", err)
	}

	return result.Status == "COMPLETED", nil
}

// token returns a cached OAuth access token, refreshing when expired
func (a *PayPalAdapter) token(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.accessToken != "" && time.Now().Before(a.tokenExpiry) {
		return a.accessToken, nil
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST",
		a.baseURL+"/v1/oauth2/token", strings.NewReader("grant_type=client_credentials"))
	if err != nil {
		return "", apperrors.NewExternalError("failed to build paypal token request", err)
	}
	httpReq.SetBasicAuth(a.clientID, a.clientSecret)
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return "", apperrors.NewExternalError("paypal token request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", apperrors.NewExternalError(
			fmt.Sprintf("paypal token error: status %d", resp.StatusCode), nil)
	}

	var result struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", apperrors.NewExternalError("failed to decode paypal token response", err)
	}

	a.accessToken = result.AccessToken
	// Refresh a minute early to avoid using a token at its expiry edge.
	a.tokenExpiry = time.Now().Add(time.Duration(result.ExpiresIn-60) * time.Second)

	return a.accessToken, nil
}

func formatMinorUnits(amount int64) string {
	return fmt.Sprintf("%d.%02d", amount/100, amount%100)
}
