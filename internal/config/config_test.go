package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ADMIN_TOKEN", "secret")
	t.Setenv("GSH_SHIPMENTS_CSV", "https://example.com/s.csv")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.AdminToken)
	assert.Equal(t, 1000, cfg.Import.BatchSize)
	assert.True(t, cfg.Import.Mirror)
	assert.True(t, cfg.Import.MirrorCascade)
	assert.Equal(t, "memory", cfg.CacheBackend)
	assert.Equal(t, "https://example.com/s.csv", cfg.Feeds.Shipments)
}

func TestLoad_MissingAdminToken(t *testing.T) {
	t.Setenv("ADMIN_TOKEN", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ADMIN_TOKEN")
}

func TestLoad_RejectsUnknownCacheBackend(t *testing.T) {
	t.Setenv("ADMIN_TOKEN", "secret")
	t.Setenv("CACHE_BACKEND", "memcached")

	_, err := Load()
	require.Error(t, err)
}

func TestFeeds_Missing(t *testing.T) {
	f := Feeds{Shipments: "a", InputSea: " ", MilestonesNotes: "n"}

	assert.Equal(t, []string{
		"GSH_INPUT_SEA_CSV",
		"GSH_INPUT_AIR_CSV",
		"GSH_MILESTONES_SEA_CSV",
		"GSH_MILESTONES_AIR_CSV",
	}, f.Missing())
}

func TestDatabase_DSN(t *testing.T) {
	d := Database{Host: "db", Port: "5432", User: "u", Password: "p@ss", Name: "tracker", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p%40ss@db:5432/tracker?sslmode=disable", d.DSN())

	d.URL = "postgres://override"
	assert.Equal(t, "postgres://override", d.DSN())
}
