package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		Env:            "development",
		StorageBackend: "sqlite",
		SQLitePath:     "data/app.db",
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, validConfig().Validate())

	c := validConfig()
	c.StorageBackend = "postgres"
	assert.Error(t, c.Validate(), "postgres backend needs a DSN")
	c.PostgresDSN = "postgres://localhost/bsai"
	assert.NoError(t, c.Validate())

	c = validConfig()
	c.StorageBackend = "mysql"
	assert.Error(t, c.Validate())

	c = validConfig()
	c.SQLitePath = ""
	assert.Error(t, c.Validate())

	c = validConfig()
	c.Env = "prod"
	assert.Error(t, c.Validate())
}
