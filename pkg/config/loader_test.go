package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	// The repository ships an example configuration over testdata
	cfg, err := LoadConfig("../../config/rrs.yaml")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.LogLevel != "info" {
		t.Errorf("Expected log_level 'info', got '%s'", cfg.LogLevel)
	}
	if cfg.Inputs.ProteinDir != "testdata/proteins" {
		t.Errorf("Expected protein_dir 'testdata/proteins', got '%s'", cfg.Inputs.ProteinDir)
	}
	if cfg.Sampling.PairCap != 50 {
		t.Errorf("Expected pair_cap 50, got %d", cfg.Sampling.PairCap)
	}
	if cfg.Sampling.InstancesPerType != 4 {
		t.Errorf("Expected instances_per_type 4, got %d", cfg.Sampling.InstancesPerType)
	}
	if len(cfg.Replicates) != 3 {
		t.Errorf("Expected 3 replicates, got %d", len(cfg.Replicates))
	}
	if len(cfg.Inputs.DomainTypeFiles()) != 2 {
		t.Errorf("Expected 2 domain type files, got %v", cfg.Inputs.DomainTypeFiles())
	}
}

func TestLoadConfigFromTempFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rrs.yaml")
	if err := os.WriteFile(path, []byte(validConfigYAML), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Inputs.NetworkDir != "networks" {
		t.Errorf("Expected network_dir 'networks', got %q", cfg.Inputs.NetworkDir)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !strings.Contains(err.Error(), "failed to read config file") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidateReplicateLabels(t *testing.T) {
	tests := []struct {
		name    string
		labels  []string
		wantErr bool
	}{
		{"None", nil, false},
		{"Distinct", []string{"RRSv3_1_20210428", "RRSv3_2_20210428"}, false},
		{"Empty", []string{" "}, true},
		{"Dot dot", []string{".."}, true},
		{"Backslash", []string{`a\b`}, true},
		{"Duplicate", []string{"a", "a"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateReplicateLabels(tt.labels)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateReplicateLabels(%v) error = %v, wantErr %v", tt.labels, err, tt.wantErr)
			}
		})
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Sampling.PairCap != DefaultPairCap || cfg.Sampling.InstancesPerType != DefaultInstancesPerType {
		t.Errorf("unexpected sampling defaults %+v", cfg.Sampling)
	}
	// Inputs are not defaulted, so a bare default config is invalid
	if err := cfg.Validate(); err == nil {
		t.Error("expected default config without inputs to be invalid")
	}
}
