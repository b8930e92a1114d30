package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// Default endpoint for object fetches when nothing is configured.
const DefaultRPCURL = "https://fullnode.mainnet.sui.io/"

// Config holds application configuration.
type Config struct {
	// RPCURL is the Sui JSON-RPC endpoint used for object fetches.
	RPCURL string `json:"rpc_url,omitempty"`

	// TxQueryURL is the JSON-RPC endpoint used for transaction-query
	// (change history) lookups. Empty disables change history entirely;
	// every package's last-changed timestamp is then reported as absent.
	TxQueryURL string `json:"tx_query_url,omitempty"`

	// Workdir is the root directory for decompiled sources, one
	// subdirectory per package id. Typically a host-mounted path.
	Workdir string `json:"workdir,omitempty"`

	// RevelaBin is the decompiler executable name or path.
	RevelaBin string `json:"revela_bin,omitempty"`

	// DecompileTimeoutSecs bounds a single decompiler invocation.
	DecompileTimeoutSecs int `json:"decompile_timeout_secs,omitempty"`

	// Concurrency bounds per-package workers during project aggregation.
	Concurrency int `json:"concurrency,omitempty"`

	// TxPageSize is the page size requested from the transaction-query API.
	TxPageSize int `json:"tx_page_size,omitempty"`

	// TxMaxPages caps how many pages a single last-changed lookup follows.
	TxMaxPages int `json:"tx_max_pages,omitempty"`

	// DBMaxOpenConns limits the maximum number of open catalog connections.
	// If set to 1, all catalog access is serialized.
	// 0 means use sql.DB default (unlimited).
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle catalog connections.
	// 0 means use sql.DB default. Typically set equal to DBMaxOpenConns.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty"`
}

// DefaultConfig returns the default configuration.
// Workdir is left empty here; Load fills it relative to the base directory.
func DefaultConfig() *Config {
	return &Config{
		RPCURL:               DefaultRPCURL,
		RevelaBin:            "revela",
		DecompileTimeoutSecs: 30,
		Concurrency:          4,
		TxPageSize:           50,
		TxMaxPages:           20,
	}
}

// Load loads configuration from baseDir/config.json, applies defaults for
// anything unset, then applies environment overrides (SUI_RPC_URL,
// SUI_TX_QUERY_URL, WORKDIR, REVELA_BIN).
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.suisource.
func Load(baseDir string) (*Config, error) {
	cfg, err := loadFile(filepath.Join(baseDir, "config.json"))
	if err != nil {
		return nil, err
	}
	applyEnv(cfg)
	if cfg.Workdir == "" {
		cfg.Workdir = filepath.Join(baseDir, "sources")
	}
	return cfg, nil
}

// applyEnv overrides config fields from the environment. Env wins over
// both file and defaults, matching how the server is configured when
// running inside a container.
func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("SUI_RPC_URL")); v != "" {
		cfg.RPCURL = v
	}
	if v := strings.TrimSpace(os.Getenv("SUI_TX_QUERY_URL")); v != "" {
		cfg.TxQueryURL = v
	}
	if v := strings.TrimSpace(os.Getenv("WORKDIR")); v != "" {
		cfg.Workdir = v
	}
	if v := strings.TrimSpace(os.Getenv("REVELA_BIN")); v != "" {
		cfg.RevelaBin = v
	}
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			// File doesn't exist, return zero config
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	result.RPCURL = overlayString(base.RPCURL, overlay.RPCURL)
	result.TxQueryURL = overlayString(base.TxQueryURL, overlay.TxQueryURL)
	result.Workdir = overlayString(base.Workdir, overlay.Workdir)
	result.RevelaBin = overlayString(base.RevelaBin, overlay.RevelaBin)

	result.DecompileTimeoutSecs = overlayInt(base.DecompileTimeoutSecs, overlay.DecompileTimeoutSecs)
	result.Concurrency = overlayInt(base.Concurrency, overlay.Concurrency)
	result.TxPageSize = overlayInt(base.TxPageSize, overlay.TxPageSize)
	result.TxMaxPages = overlayInt(base.TxMaxPages, overlay.TxMaxPages)
	result.DBMaxOpenConns = overlayInt(base.DBMaxOpenConns, overlay.DBMaxOpenConns)
	result.DBMaxIdleConns = overlayInt(base.DBMaxIdleConns, overlay.DBMaxIdleConns)

	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	return result
}

func overlayString(base, overlay string) string {
	if strings.TrimSpace(overlay) != "" {
		return overlay
	}
	return base
}

func overlayInt(base, overlay int) int {
	if overlay != 0 {
		return overlay
	}
	return base
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range a {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	for _, s := range b {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
