package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ederjesus1004/Prescito-Doctor/internal/domain/providers"
	apperrors "github.com/ederjesus1004/Prescito-Doctor/pkg/errors"
)

// StripeAdapter implements PaymentProvider against the Stripe
// checkout sessions API.
type StripeAdapter struct {
	secretKey string
	client    *http.Client
	baseURL   string
}

// NewStripeAdapter creates a new Stripe adapter
func NewStripeAdapter(secretKey string, timeout time.Duration) providers.PaymentProvider {
	return &StripeAdapter{
		secretKey: secretKey,
		client:    &http.Client{Timeout: timeout},
		baseURL:   "https://api.stripe.com",
	}
}

// Name returns the provider identifier
func (a *StripeAdapter) Name() string {
	return "stripe"
}

// CreateSession opens a hosted checkout session
func (a *StripeAdapter) CreateSession(ctx context.Context, req providers.CheckoutRequest) (*providers.PaymentSession, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("success_url", req.SuccessURL)
	form.Set("cancel_url", req.CancelURL)
	form.Set("client_reference_id", req.AppointmentID)
	form.Set("line_items[0][quantity]", "1")
	form.Set("line_items[0][price_data][currency]", strings.ToLower(req.Currency))
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(req.Amount, 10))
	form.Set("line_items[0][price_data][product_data][name]", req.Description)
	form.Set("metadata[appointment_id]", req.AppointmentID)

	httpReq, err := http.NewRequestWithContext(ctx, "POST",
		a.baseURL+"/v1/checkout/sessions", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, apperrors.NewExternalError("failed to build stripe request", err)
	}
	a.addHeaders(httpReq)
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, apperrors.NewExternalError("stripe request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.NewExternalError(
			fmt.Sprintf("stripe api error: status %d", resp.StatusCode), nil)
	}

	var result struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, apperrors.NewExternalError("failed to decode stripe response", err)
	}

	return &providers.PaymentSession{
		Ref:         result.ID,
		RedirectURL: result.URL,
	}, nil
}

// VerifyCapture checks the session's payment status with Stripe
func (a *StripeAdapter) VerifyCapture(ctx context.Context, ref string) (bool, error) {
	httpReq, err := http.NewRequestWithContext(ctx, "GET",
		fmt.Sprintf("%s/v1/checkout/sessions/%s", a.baseURL, url.PathEscape(ref)), nil)
	if err != nil {
		return false, apperrors.NewExternalError("failed to build stripe request", err)
	}
	a.addHeaders(httpReq)

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return false, apperrors.NewExternalError("stripe request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, apperrors.NewExternalError(
			fmt.Sprintf("stripe api error: status %d", resp.StatusCode), nil)
	}

	var result struct {
		PaymentStatus string `json:"payment_status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, apperrors.NewExternalError("failed to decode stripe response", err)
	}

	return result.PaymentStatus == "paid", nil
}

func (a *StripeAdapter) addHeaders(req *http.Request) {
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", a.secretKey))
}
