// Package config holds the simulator setup: the mount under test, the
// display geometry, the guide camera, and the control server. The file
// format is JSON; fields omitted from the file keep their defaults, so
// partial configs are safe.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// MountConfig describes the mount being tested.
type MountConfig struct {
	Latitude          float64 `json:"latitude"`
	FocalLengthMM     float64 `json:"focal_length_mm"`
	DistanceToScreenM float64 `json:"distance_to_screen_m"`
	MainPeriodSeconds float64 `json:"main_period_seconds"`
}

// DisplayConfig describes the simulator screen.
type DisplayConfig struct {
	Fullscreen     bool    `json:"fullscreen"`
	ScreenWidth    int     `json:"screen_width"`
	ScreenHeight   int     `json:"screen_height"`
	ScreenWidthMM  float64 `json:"screen_width_mm"`
	StarSize       int     `json:"star_size"`
	StarBrightness int     `json:"star_brightness"`
}

// CameraConfig describes the guide camera watching the screen.
type CameraConfig struct {
	PixelSizeUM float64 `json:"pixel_size_um"`
	WidthPx     int     `json:"width_px"`
	HeightPx    int     `json:"height_px"`
}

// ServerConfig describes the control server listener.
type ServerConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// AppConfig is the root configuration.
type AppConfig struct {
	Mount   MountConfig   `json:"mount"`
	Display DisplayConfig `json:"display"`
	Camera  CameraConfig  `json:"camera"`
	Server  ServerConfig  `json:"server"`
}

// Default returns the configuration used when no file exists yet: a worm
// period of eight minutes, a 1080p screen five metres from the mount, and
// a typical small guide camera.
func Default() *AppConfig {
	return &AppConfig{
		Mount: MountConfig{
			Latitude:          0.0,
			FocalLengthMM:     200.0,
			DistanceToScreenM: 5.0,
			MainPeriodSeconds: 480.0,
		},
		Display: DisplayConfig{
			Fullscreen:     true,
			ScreenWidth:    1920,
			ScreenHeight:   1080,
			ScreenWidthMM:  600.0,
			StarSize:       5,
			StarBrightness: 255,
		},
		Camera: CameraConfig{
			PixelSizeUM: 3.75,
			WidthPx:     1280,
			HeightPx:    960,
		},
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 5000,
		},
	}
}

// maxFileSize caps config files at 1MB.
const maxFileSize = 1 * 1024 * 1024

// Load reads a configuration file, layering it over the defaults. The
// path must have a .json extension. A missing file is not an error and
// yields the defaults.
func Load(path string) (*AppConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to a JSON file.
func (c *AppConfig) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks that the configuration values are usable.
func (c *AppConfig) Validate() error {
	if c.Mount.Latitude < -90 || c.Mount.Latitude > 90 {
		return fmt.Errorf("latitude must be between -90 and 90, got %f", c.Mount.Latitude)
	}
	if c.Mount.FocalLengthMM < 0 {
		return fmt.Errorf("focal_length_mm must be non-negative, got %f", c.Mount.FocalLengthMM)
	}
	if c.Mount.DistanceToScreenM < 0 {
		return fmt.Errorf("distance_to_screen_m must be non-negative, got %f", c.Mount.DistanceToScreenM)
	}
	if c.Display.ScreenWidth < 0 || c.Display.ScreenHeight < 0 {
		return fmt.Errorf("screen dimensions must be non-negative, got %dx%d",
			c.Display.ScreenWidth, c.Display.ScreenHeight)
	}
	if c.Display.ScreenWidthMM < 0 {
		return fmt.Errorf("screen_width_mm must be non-negative, got %f", c.Display.ScreenWidthMM)
	}
	if c.Camera.PixelSizeUM < 0 {
		return fmt.Errorf("pixel_size_um must be non-negative, got %f", c.Camera.PixelSizeUM)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("port must be between 0 and 65535, got %d", c.Server.Port)
	}
	return nil
}
