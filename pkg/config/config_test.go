package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_ValoresPorDefecto(t *testing.T) {
	cfg, err := fromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, StorageDriverPostgres, cfg.Storage.Driver)
	assert.Equal(t, 3*time.Second, cfg.Checkout.LockTimeout)
	assert.Equal(t, "FV", cfg.Checkout.InvoicePrefix)
	assert.False(t, cfg.Redis.Enabled())
	assert.False(t, cfg.Kafka.Enabled())
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
	assert.Equal(t, 20, cfg.DB.MaxConns)
	assert.Equal(t, time.UTC, cfg.App.Location)
	assert.Equal(t, "Farmacia", cfg.Store.Name)
	assert.Equal(t, 10, cfg.Dashboard.LowStockThreshold)
	assert.Equal(t, 30, cfg.Dashboard.ExpiryWarningDays)
}

func TestFromViper_LeeVariables(t *testing.T) {
	v := viper.New()
	v.Set("STORAGE_DRIVER", "MEMORY")
	v.Set("KAFKA_BROKERS", "k1:9092, k2:9092,")
	v.Set("CHECKOUT_LOCK_TIMEOUT_MS", "250")
	v.Set("REDIS_ADDR", "localhost:6379")
	v.Set("DB_PORT", "6543")

	cfg, err := fromViper(v)
	require.NoError(t, err)

	assert.Equal(t, StorageDriverMemory, cfg.Storage.Driver)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 250*time.Millisecond, cfg.Checkout.LockTimeout)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, 6543, cfg.DB.Port)
}

func TestFromViper_DriverDesconocido(t *testing.T) {
	v := viper.New()
	v.Set("STORAGE_DRIVER", "mongo")
	_, err := fromViper(v)
	assert.Error(t, err)
}

func TestDBConfig_DSNEscapaPassword(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "pos", Password: "p@ss:w/rd", DBName: "farmacia", SSLMode: "disable"}
	assert.Equal(t, "postgres://pos:p%40ss%3Aw%2Frd@db:5432/farmacia?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}

func TestFromViper_ZonaHoraria(t *testing.T) {
	v := viper.New()
	v.Set("APP_TIMEZONE", "America/Bogota")
	cfg, err := fromViper(v)
	require.NoError(t, err)
	assert.Equal(t, "America/Bogota", cfg.App.Location.String())

	v.Set("APP_TIMEZONE", "Marte/Olimpo")
	_, err = fromViper(v)
	assert.Error(t, err)
}

func TestFromViper_UmbralesDelPanel(t *testing.T) {
	v := viper.New()
	v.Set("LOW_STOCK_THRESHOLD", "25")
	v.Set("EXPIRY_WARNING_DAYS", "60")
	cfg, err := fromViper(v)
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.Dashboard.LowStockThreshold)
	assert.Equal(t, 60, cfg.Dashboard.ExpiryWarningDays)

	v.Set("EXPIRY_WARNING_DAYS", "0")
	_, err = fromViper(v)
	assert.Error(t, err)
}
