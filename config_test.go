package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	base := Config{port: 7654, doors: 3, rounds: 10}

	require.NoError(t, base.validate())

	cfg := base
	cfg.tlsCert = "cert.pem"
	assert.Error(t, cfg.validate(), "cert without key")
	cfg.tlsKey = "key.pem"
	assert.NoError(t, cfg.validate())

	cfg = base
	cfg.port = 0
	assert.Error(t, cfg.validate())
	cfg.port = 65536
	assert.Error(t, cfg.validate())

	cfg = base
	cfg.doors = 1
	assert.Error(t, cfg.validate())

	cfg = base
	cfg.rounds = 0
	assert.Error(t, cfg.validate())
}

func TestConfigScheme(t *testing.T) {
	cfg := Config{}
	assert.Equal(t, "http", cfg.scheme())

	cfg.tlsCert, cfg.tlsKey = "cert.pem", "key.pem"
	assert.Equal(t, "https", cfg.scheme())
}
