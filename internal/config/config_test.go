package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "")
	t.Setenv("CANCELLATION_NOTICE", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 2*time.Hour, cfg.CancellationNotice)
	assert.Equal(t, "Asia/Kolkata", cfg.ClinicTimezone)
	assert.Equal(t, 30*time.Second, cfg.SlotCacheTTL)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("CANCELLATION_NOTICE", "3h")
	t.Setenv("PAYMENT_GATEWAY", "razorpay")
	t.Setenv("SMTP_PORT", "2525")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr())
	assert.Equal(t, 3*time.Hour, cfg.CancellationNotice)
	assert.Equal(t, "razorpay", cfg.PaymentGateway)
	assert.Equal(t, 2525, cfg.SMTPPort)
}

func TestLoad_RejectsUnknownTimezone(t *testing.T) {
	t.Setenv("CLINIC_TIMEZONE", "Mars/Olympus")

	_, err := Load()
	assert.ErrorContains(t, err, "CLINIC_TIMEZONE")
}

func TestAllowedOrigins(t *testing.T) {
	cfg := &Config{CORSAllowedOrigins: " https://app.prescripto.in ,,http://localhost:5173"}
	assert.Equal(t, []string{"https://app.prescripto.in", "http://localhost:5173"}, cfg.AllowedOrigins())
	assert.Empty(t, (&Config{}).AllowedOrigins())
}
