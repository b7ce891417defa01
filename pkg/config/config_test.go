package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_PaymentsConfig(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_123")
	t.Setenv("PAYPAL_CLIENT_ID", "pp-client")
	t.Setenv("CURRENCY", "EUR")

	cfg, err := Load()
	assert.NoError(t, err)

	assert.Equal(t, "sk_test_123", cfg.Payments.StripeSecretKey)
	assert.Equal(t, "pp-client", cfg.Payments.PayPalClientID)
	assert.Equal(t, "EUR", cfg.Payments.Currency)
	assert.True(t, cfg.Payments.PayPalSandbox)
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	os.Unsetenv("DB_HOST")
	os.Unsetenv("SERVER_PORT")
	os.Unsetenv("CURRENCY")
	os.Unsetenv("ALLOWED_ORIGINS")

	cfg, err := Load()
	assert.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "USD", cfg.Payments.Currency)
	assert.Equal(t, 72, cfg.Auth.TokenTTLHours)
	assert.Empty(t, cfg.Server.AllowedOrigins)
}

func TestLoad_AllowedOrigins(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("ALLOWED_ORIGINS", "https://app.prescripto.test, https://admin.prescripto.test,")

	cfg, err := Load()
	assert.NoError(t, err)

	assert.Equal(t,
		[]string{"https://app.prescripto.test", "https://admin.prescripto.test"},
		cfg.Server.AllowedOrigins,
	)
}

func TestLoad_RequiresJWTSecret(t *testing.T) {
	os.Unsetenv("JWT_SECRET")

	_, err := Load()
	assert.Error(t, err)
}

func TestDatabaseDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db",
		Port:     5433,
		User:     "app",
		Password: "secret",
		Database: "prescripto",
		SSLMode:  "require",
	}

	assert.Equal(t,
		"host=db port=5433 user=app password=secret dbname=prescripto sslmode=require",
		cfg.DatabaseDSN(),
	)
}
