package payments

import (
	"context"
	"fmt"
	"time"

	"github.com/sony/gobreaker"

	"github.com/ederjesus1004/Prescito-Doctor/internal/domain/providers"
	"github.com/ederjesus1004/Prescito-Doctor/pkg/config"
	apperrors "github.com/ederjesus1004/Prescito-Doctor/pkg/errors"
)

// Registry resolves payment providers by name
type Registry struct {
	providers map[string]providers.PaymentProvider
}

// NewRegistry builds the provider registry from configuration. Providers
// with no credentials configured fall back to the mock adapter, and every
// real provider is wrapped in a circuit breaker.
func NewRegistry(cfg *config.PaymentsConfig) *Registry {
	timeout := time.Duration(cfg.ProviderTimeoutS) * time.Second

	registry := &Registry{providers: make(map[string]providers.PaymentProvider)}

	if cfg.StripeSecretKey != "" {
		registry.register(withBreaker(NewStripeAdapter(cfg.StripeSecretKey, timeout)))
	} else {
		registry.register(NewMockAdapter("stripe"))
	}

	if cfg.PayPalClientID != "" && cfg.PayPalSecret != "" {
		registry.register(withBreaker(NewPayPalAdapter(cfg.PayPalClientID, cfg.PayPalSecret, cfg.PayPalSandbox, timeout)))
	} else {
		registry.register(NewMockAdapter("paypal"))
	}

	return registry
}

func (r *Registry) register(provider providers.PaymentProvider) {
	r.providers[provider.Name()] = provider
}

// Get resolves a provider by name
func (r *Registry) Get(name string) (providers.PaymentProvider, error) {
	provider, ok := r.providers[name]
	if !ok {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown payment provider %q", name))
	}
	return provider, nil
}

// BreakerProvider wraps a PaymentProvider with a circuit breaker so a
// flapping gateway fails fast instead of tying up request handlers.
type BreakerProvider struct {
	inner   providers.PaymentProvider
	breaker *gobreaker.CircuitBreaker
}

func withBreaker(inner providers.PaymentProvider) providers.PaymentProvider {
	return &BreakerProvider{
		inner: inner,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        inner.Name(),
			MaxRequests: 3,
			Interval:    60 * time.Second,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
	}
}

// Name returns the wrapped provider's identifier
func (p *BreakerProvider) Name() string {
	return p.inner.Name()
}

// CreateSession opens a checkout session through the breaker
func (p *BreakerProvider) CreateSession(ctx context.Context, req providers.CheckoutRequest) (*providers.PaymentSession, error) {
	result, err := p.breaker.Execute(func() (interface{}, error) {
		return p.inner.CreateSession(ctx, req)
	})
	if err != nil {
		return nil, wrapBreakerErr(p.inner.Name(), err)
	}
	return result.(*providers.PaymentSession), nil
}

// VerifyCapture checks capture status through the breaker
func (p *BreakerProvider) VerifyCapture(ctx context.Context, ref string) (bool, error) {
	result, err := p.breaker.Execute(func() (interface{}, error) {
		captured, err := p.inner.VerifyCapture(ctx, ref)
		return captured, err
	})
	if err != nil {
		return false, wrapBreakerErr(p.inner.Name(), err)
	}
	return result.(bool), nil
}

func wrapBreakerErr(name string, err error) error {
	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		return apperrors.NewExternalError(fmt.Sprintf("%s is temporarily unavailable", name), err)
	}
	return err
}
