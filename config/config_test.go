package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_ComputesDerived(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}
	if cfg.Derived.WorldW32 != float32(cfg.World.Width) {
		t.Errorf("derived width = %f, want %f", cfg.Derived.WorldW32, float32(cfg.World.Width))
	}
	if cfg.Derived.WorldH32 != float32(cfg.World.Height) {
		t.Errorf("derived height = %f, want %f", cfg.Derived.WorldH32, float32(cfg.World.Height))
	}
	if cfg.Derived.DT32 != float32(cfg.World.DT) {
		t.Errorf("derived dt = %f, want %f", cfg.Derived.DT32, float32(cfg.World.DT))
	}
}

func TestLoad_OverlayRecomputesDerived(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	overlay := "world:\n  width: 1600\n  height: 900\n  dt: 0.5\n"
	if err := os.WriteFile(path, []byte(overlay), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("loading overlay: %v", err)
	}
	if cfg.World.Width != 1600 || cfg.World.Height != 900 {
		t.Fatalf("world = %gx%g, want overlay 1600x900", cfg.World.Width, cfg.World.Height)
	}
	if cfg.Derived.WorldW32 != 1600 || cfg.Derived.WorldH32 != 900 {
		t.Errorf("derived = %fx%f, want 1600x900", cfg.Derived.WorldW32, cfg.Derived.WorldH32)
	}
	if cfg.Derived.DT32 != 0.5 {
		t.Errorf("derived dt = %f, want 0.5", cfg.Derived.DT32)
	}
	// Sections the overlay does not mention keep their defaults.
	if cfg.Food.MaxCount != 400 {
		t.Errorf("food max count = %d, want default 400", cfg.Food.MaxCount)
	}
}

func TestMustInit_SetsGlobal(t *testing.T) {
	MustInit("")
	cfg := Cfg()
	if cfg == nil {
		t.Fatal("Cfg returned nil after MustInit")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config failed validation: %v", err)
	}
}
