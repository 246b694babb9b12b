package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 1920, cfg.Display.ScreenWidth)
	assert.Equal(t, 5000, cfg.Server.Port)
	assert.InDelta(t, 480.0, cfg.Mount.MainPeriodSeconds, 1e-9)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadRejectsNonJSONExtension(t *testing.T) {
	t.Parallel()

	_, err := Load("config.yaml")
	assert.Error(t, err)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bwmt.json")
	cfg := Default()
	cfg.Mount.Latitude = 51.5
	cfg.Display.ScreenWidthMM = 543.2
	cfg.Camera.PixelSizeUM = 2.9
	require.NoError(t, cfg.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	if diff := cmp.Diff(cfg, got); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "partial.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"mount":{"latitude":-33.9}}`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.InDelta(t, -33.9, cfg.Mount.Latitude, 1e-9)
	// Untouched sections stay at their defaults.
	assert.Equal(t, 1920, cfg.Display.ScreenWidth)
	assert.InDelta(t, 3.75, cfg.Camera.PixelSizeUM, 1e-9)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"mount":{"latitude":120}}`), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"mount":`), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*AppConfig)
		ok     bool
	}{
		{"defaults", func(c *AppConfig) {}, true},
		{"latitude too high", func(c *AppConfig) { c.Mount.Latitude = 91 }, false},
		{"latitude too low", func(c *AppConfig) { c.Mount.Latitude = -91 }, false},
		{"negative focal length", func(c *AppConfig) { c.Mount.FocalLengthMM = -1 }, false},
		{"negative distance", func(c *AppConfig) { c.Mount.DistanceToScreenM = -1 }, false},
		{"negative screen", func(c *AppConfig) { c.Display.ScreenWidth = -1 }, false},
		{"negative pixel size", func(c *AppConfig) { c.Camera.PixelSizeUM = -0.1 }, false},
		{"port too high", func(c *AppConfig) { c.Server.Port = 70000 }, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
