package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "bodega-api", cfg.App.Name)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 25, cfg.DB.MaxConns)
	assert.Equal(t, "migrations", cfg.DB.MigrationsPath)
	assert.False(t, cfg.DB.AutoMigrate)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
	assert.True(t, cfg.Transfer.RequireSameProduct, "el mismo producto se exige por defecto")
	assert.Equal(t, 5*time.Second, cfg.Transfer.TxTimeout)
	assert.Equal(t, 24*time.Hour, cfg.Transfer.IdempotencyTTL)
	assert.False(t, cfg.Redis.Enabled(), "sin REDIS_HOST se usa el almacén en memoria")
	assert.False(t, cfg.Kafka.Enabled())
	assert.False(t, cfg.Admin.Enabled(), "sin ADMIN_EMAIL no se crea admin inicial")
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "staging")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("TRANSFER_REQUIRE_SAME_PRODUCT", "false")
	t.Setenv("TRANSFER_TX_TIMEOUT_SECONDS", "2")
	t.Setenv("REDIS_HOST", "redis")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("DB_AUTO_MIGRATE", "true")
	t.Setenv("ADMIN_EMAIL", "admin@bodega.co")
	t.Setenv("ADMIN_PASSWORD", "clave-admin")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.App.Env)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.False(t, cfg.Transfer.RequireSameProduct)
	assert.Equal(t, 2*time.Second, cfg.Transfer.TxTimeout)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, "redis:6379", cfg.Redis.Addr())
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.DB.AutoMigrate)
	assert.True(t, cfg.Admin.Enabled())
	assert.Equal(t, "admin@bodega.co", cfg.Admin.Email)
}

func TestLoad_ProductionRequiresJWTSecret(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)

	t.Setenv("JWT_SECRET", "s3cr3t")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "s3cr3t", cfg.JWT.Secret)
}

func TestDBConfig_ConnectionString(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss:word", DBName: "bodega", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%3Aword@db:5432/bodega?sslmode=disable", c.ConnectionString(),
		"la contraseña se codifica en la URL")

	c.DatabaseURL = "postgres://otro@host/db"
	assert.Equal(t, "postgres://otro@host/db", c.ConnectionString(), "DATABASE_URL tiene prioridad")
}

func TestGetInt_InvalidFallsBackToDefault(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("DB_MAX_CONNS", "muchas")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.DB.MaxConns)
}
