package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvironment(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("STORE", "memory")
	t.Setenv("JWT_EXPIRES_IN", "2d")
	t.Setenv("STORE_TIMEOUT", "750ms")
	t.Setenv("INVENTORY_MANAGER_EMAILS", " Boss@Shop.lk, ,ops@shop.lk")

	cfg, err := FromViper(newViper())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StoreMemory, cfg.Store)
	assert.Equal(t, 48*time.Hour, cfg.JWTExpiresIn)
	assert.Equal(t, 750*time.Millisecond, cfg.StoreTimeout)
	assert.Equal(t, 10*time.Second, cfg.ProviderTimeout)
	assert.Equal(t, "lkr", cfg.PaymentCurrency)
	assert.Equal(t, []string{"boss@shop.lk", "ops@shop.lk"}, cfg.InventoryManagers)
	assert.Empty(t, cfg.DeliveryPersons)
	assert.True(t, cfg.IsProduction())
	assert.False(t, cfg.IsDevelopment())
}

func TestDevelopmentIsOptIn(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("STORE", "memory")
	t.Setenv("APP_ENV", "Development")

	cfg, err := FromViper(newViper())
	require.NoError(t, err)
	assert.True(t, cfg.IsDevelopment())
}

func TestValidation(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("STORE", "mongo")
	t.Setenv("MONGODB_URL", "")

	_, err := FromViper(newViper())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "MONGODB_URL")
}

func TestParseDuration(t *testing.T) {
	d, err := ParseDuration("90d")
	require.NoError(t, err)
	assert.Equal(t, 90*24*time.Hour, d)

	d, err = ParseDuration("15m")
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, d)

	_, err = ParseDuration("xd")
	require.Error(t, err)
}
