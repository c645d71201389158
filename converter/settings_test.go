package converter

import (
	"errors"
	"testing"
)

func TestNewSettings_Valid(t *testing.T) {
	for _, dpi := range []int{72, 150, 300} {
		settings, err := NewSettings(dpi, "jpeg", 85, false)
		if err != nil {
			t.Fatalf("Expected settings with dpi=%d to be valid, got: %v", dpi, err)
		}
		if settings.Format != FormatJPEG {
			t.Errorf("Expected format to normalize to JPEG, got %q", settings.Format)
		}
	}

	settings, err := NewSettings(150, "PNG", 1, true)
	if err != nil {
		t.Fatalf("Expected PNG settings to be valid, got: %v", err)
	}
	if !settings.Verbose {
		t.Error("Expected verbose flag to be carried through")
	}
}

func TestNewSettings_InvalidDPI(t *testing.T) {
	for _, dpi := range []int{0, -72, 100, 999} {
		_, err := NewSettings(dpi, "JPEG", 85, false)
		if err == nil {
			t.Fatalf("Expected error for dpi=%d, got nil", dpi)
		}
		var configurationError *ConfigurationError
		if !errors.As(err, &configurationError) {
			t.Fatalf("Expected ConfigurationError for dpi=%d, got %T", dpi, err)
		}
		if configurationError.Setting != "dpi" {
			t.Errorf("Expected dpi setting to be blamed, got %q", configurationError.Setting)
		}
	}
}

func TestNewSettings_InvalidFormat(t *testing.T) {
	for _, format := range []string{"", "GIF", "TIFF", "jpg"} {
		_, err := NewSettings(150, format, 85, false)
		var configurationError *ConfigurationError
		if !errors.As(err, &configurationError) {
			t.Fatalf("Expected ConfigurationError for format=%q, got %v", format, err)
		}
	}
}

func TestNewSettings_InvalidQuality(t *testing.T) {
	for _, quality := range []int{0, -1, 101, 1000} {
		_, err := NewSettings(150, "JPEG", quality, false)
		var configurationError *ConfigurationError
		if !errors.As(err, &configurationError) {
			t.Fatalf("Expected ConfigurationError for quality=%d, got %v", quality, err)
		}
	}
}

func TestSettings_Scale(t *testing.T) {
	cases := map[int]float64{72: 1.0, 150: 150.0 / 72.0, 300: 300.0 / 72.0}
	for dpi, want := range cases {
		settings, err := NewSettings(dpi, "JPEG", 85, false)
		if err != nil {
			t.Fatalf("Unexpected settings error: %v", err)
		}
		if got := settings.Scale(); got != want {
			t.Errorf("Scale() for %d DPI = %v, want %v", dpi, got, want)
		}
	}
}
