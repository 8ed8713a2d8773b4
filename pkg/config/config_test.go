package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cr3t")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "s3cr3t", cfg.JWT.Secret)
	assert.Equal(t, 2*time.Hour, cfg.JWT.SessionTTL)
	assert.Equal(t, 15*time.Minute, cfg.JWT.PasswordChangeTTL)
	assert.Equal(t, IdentityScopeCompany, cfg.Auth.IdentityScope)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, time.Hour, cfg.Storage.URLTTL)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "x")
	t.Setenv("JWT_SESSION_TTL_MINUTES", "30")
	t.Setenv("AUTH_IDENTITY_SCOPE", "GLOBAL")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("DYNAMICS_INSTANCE_URL", "https://org.crm5.dynamics.com/")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 30*time.Minute, cfg.JWT.SessionTTL)
	assert.Equal(t, IdentityScopeGlobal, cfg.Auth.IdentityScope)
	assert.Equal(t, "0.0.0.0:9090", cfg.HTTP.Addr())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.AllowedOrigins)
	assert.Equal(t, "https://org.crm5.dynamics.com", cfg.Dynamics.InstanceURL)
	assert.False(t, cfg.Dynamics.Enabled())
}

func TestValidate(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Error(t, cfg.Validate(), "sin JWT_SECRET la configuración es inválida")

	cfg.JWT.Secret = "x"
	cfg.Auth.IdentityScope = "tenant"
	assert.Error(t, cfg.Validate())

	cfg.Auth.IdentityScope = IdentityScopeGlobal
	assert.NoError(t, cfg.Validate())
}

func TestDBConfig_DSNEscapaPassword(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss:w/rd", DBName: "audit", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%3Aw%2Frd@db:5432/audit?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}
