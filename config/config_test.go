package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load defaults: %v", err)
	}

	if cfg.World.Width != 800 || cfg.World.Height != 600 {
		t.Errorf("world size wrong: got %gx%g, want 800x600", cfg.World.Width, cfg.World.Height)
	}
	if cfg.GA.Crossover != 0.7 || cfg.GA.Mutation != 0.05 {
		t.Errorf("GA rates wrong: got %g/%g, want 0.7/0.05", cfg.GA.Crossover, cfg.GA.Mutation)
	}
	if cfg.Animat.MaxSpeed != 100 || cfg.Animat.MinSpeed != -50 {
		t.Errorf("speed bounds wrong: got [%g, %g]", cfg.Animat.MinSpeed, cfg.Animat.MaxSpeed)
	}
	if cfg.Derived.CentreX != 400 || cfg.Derived.CentreY != 300 {
		t.Errorf("centre wrong: got (%g, %g)", cfg.Derived.CentreX, cfg.Derived.CentreY)
	}
	if math.Abs(cfg.Derived.Diagonal-1000) > 1e-9 {
		t.Errorf("diagonal wrong: got %g, want 1000", cfg.Derived.Diagonal)
	}
}

func TestLoadOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "override.yaml")
	data := []byte("ga:\n  mutation: 0.2\n  selection: tournament\nworld:\n  width: 1000\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.GA.Mutation != 0.2 {
		t.Errorf("mutation not overridden: got %g", cfg.GA.Mutation)
	}
	if cfg.GA.Selection != "tournament" {
		t.Errorf("selection not overridden: got %q", cfg.GA.Selection)
	}
	if cfg.GA.Crossover != 0.7 {
		t.Errorf("crossover should keep default: got %g", cfg.GA.Crossover)
	}
	if cfg.World.Height != 600 {
		t.Errorf("height should keep default: got %g", cfg.World.Height)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte("ga:\n  mutation: 1.5\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for mutation rate above 1")
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Simulation.Generations = 42

	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}

	back, err := Load(path)
	if err != nil {
		t.Fatalf("Load written config: %v", err)
	}
	if back.Simulation.Generations != 42 {
		t.Errorf("generations lost: got %d, want 42", back.Simulation.Generations)
	}
}
