package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_DefaultWhenMissing(t *testing.T) {
	tmpDir := t.TempDir()

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.RPCURL != DefaultRPCURL {
		t.Fatalf("RPCURL = %q, want %q", cfg.RPCURL, DefaultRPCURL)
	}
	if cfg.RevelaBin != "revela" {
		t.Fatalf("RevelaBin = %q, want %q", cfg.RevelaBin, "revela")
	}
	if cfg.TxQueryURL != "" {
		t.Fatalf("TxQueryURL = %q, want empty (history disabled by default)", cfg.TxQueryURL)
	}
	if cfg.Workdir != filepath.Join(tmpDir, "sources") {
		t.Fatalf("Workdir = %q, want %q", cfg.Workdir, filepath.Join(tmpDir, "sources"))
	}
}

func TestLoad_OverridesFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	content := `{"rpc_url": "https://fullnode.testnet.sui.io/", "tx_max_pages": 5}`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.RPCURL != "https://fullnode.testnet.sui.io/" {
		t.Fatalf("RPCURL = %q, want testnet endpoint", cfg.RPCURL)
	}
	if cfg.TxMaxPages != 5 {
		t.Fatalf("TxMaxPages = %d, want 5", cfg.TxMaxPages)
	}
	// Unset fields keep defaults
	if cfg.Concurrency != 4 {
		t.Fatalf("Concurrency = %d, want default 4", cfg.Concurrency)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	if err := os.WriteFile(configPath, []byte(`{"rpc_url": "https://file.example/"}`), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	t.Setenv("SUI_RPC_URL", "https://env.example/")
	t.Setenv("WORKDIR", "/workdir")

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.RPCURL != "https://env.example/" {
		t.Fatalf("RPCURL = %q, want env override", cfg.RPCURL)
	}
	if cfg.Workdir != "/workdir" {
		t.Fatalf("Workdir = %q, want env override", cfg.Workdir)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	if err := os.WriteFile(configPath, []byte(`{not json}`), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if _, err := Load(tmpDir); err == nil {
		t.Fatalf("Load() expected error, got nil")
	}
}

func TestLoad_DisabledTools(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	if err := os.WriteFile(configPath, []byte(`{"disabled_tools": ["list_runs", "get_project_info"]}`), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(cfg.DisabledTools) != 2 {
		t.Fatalf("DisabledTools length = %d, want 2", len(cfg.DisabledTools))
	}
	if cfg.DisabledTools[0] != "list_runs" {
		t.Errorf("DisabledTools[0] = %q, want %q", cfg.DisabledTools[0], "list_runs")
	}
}

func TestMerge_ScalarsAndSlices(t *testing.T) {
	base := DefaultConfig()
	overlay := &Config{
		TxQueryURL:    "https://tx.example/",
		Concurrency:   8,
		DisabledTools: []string{"list_runs", " list_runs "},
	}

	merged := Merge(base, overlay)

	if merged.TxQueryURL != "https://tx.example/" {
		t.Errorf("TxQueryURL = %q, want overlay value", merged.TxQueryURL)
	}
	if merged.Concurrency != 8 {
		t.Errorf("Concurrency = %d, want 8", merged.Concurrency)
	}
	if merged.RPCURL != DefaultRPCURL {
		t.Errorf("RPCURL = %q, want base default", merged.RPCURL)
	}
	if len(merged.DisabledTools) != 1 {
		t.Errorf("DisabledTools = %v, want deduplicated single entry", merged.DisabledTools)
	}
}
