package config

import "testing"

func TestValidateClampsInvalidFields(t *testing.T) {
	c := &Config{Port: -1, MaxUploadBytes: -5}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	d := NewDefault()
	if c.Port != d.Port {
		t.Fatalf("expected port clamped to default %d, got %d", d.Port, c.Port)
	}
	if c.MaxUploadBytes != d.MaxUploadBytes {
		t.Fatalf("expected max upload bytes clamped to default, got %d", c.MaxUploadBytes)
	}
	if c.CacheDir != d.CacheDir {
		t.Fatalf("expected cache dir clamped to default, got %q", c.CacheDir)
	}
}

func TestValidateKeepsInRangeFields(t *testing.T) {
	c := NewDefault()
	c.Port = 9090
	c.CacheDir = "/tmp/mycache"
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if c.Port != 9090 {
		t.Fatalf("expected port to remain 9090, got %d", c.Port)
	}
	if c.CacheDir != "/tmp/mycache" {
		t.Fatalf("expected cache dir to remain custom, got %q", c.CacheDir)
	}
}
