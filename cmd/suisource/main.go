package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/PassKeyRa/suisource-mcp/internal/bytecode"
	"github.com/PassKeyRa/suisource-mcp/internal/cache"
	"github.com/PassKeyRa/suisource-mcp/internal/catalog"
	"github.com/PassKeyRa/suisource-mcp/internal/config"
	"github.com/PassKeyRa/suisource-mcp/internal/decompile"
	"github.com/PassKeyRa/suisource-mcp/internal/history"
	"github.com/PassKeyRa/suisource-mcp/internal/lineage"
	"github.com/PassKeyRa/suisource-mcp/internal/mcp"
	"github.com/PassKeyRa/suisource-mcp/internal/ops"
	"github.com/PassKeyRa/suisource-mcp/internal/project"
	"github.com/PassKeyRa/suisource-mcp/internal/source"
	"github.com/PassKeyRa/suisource-mcp/internal/sui"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"health": true, "source": true, "project": true, "runs": true,
	"help": true,
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode() bool {
	if len(os.Args) < 2 {
		return false // No args → MCP server
	}
	arg := os.Args[1]
	if cliCommands[arg] {
		return true
	}
	if arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" {
		return true
	}
	return false // Default → MCP server
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion() bool {
	if len(os.Args) < 2 {
		return false
	}
	arg := os.Args[1]
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" || arg == "help"
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, _ := os.Stdin.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
              _
  ___ _   _(_)___ ___  _   _ _ __ ___ ___
 / __| | | | / __/ _ \| | | | '__/ __/ _ \
 \__ \ |_| | \__ \ (_) | |_| | | | (_|  __/
 |___/\__,_|_|___/\___/ \__,_|_|  \___\___|

  Sui Move package decompiler

  Usage: suisource <command> [options]
         suisource --help

  MCP server mode requires piped input.`)
}

// buildEnv wires the full pipeline from config.
func buildEnv(cfg *config.Config, baseDir string) (*ops.Env, error) {
	store, err := cache.New(cfg.Workdir)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare workdir: %w", err)
	}

	client := sui.NewClient(cfg.RPCURL)
	revela := decompile.New(cfg.RevelaBin, time.Duration(cfg.DecompileTimeoutSecs)*time.Second)
	provider := source.NewProvider(bytecode.NewFetcher(client), revela, store)

	var tracker *history.Tracker
	if cfg.TxQueryURL != "" {
		tracker = history.NewTracker(sui.NewClient(cfg.TxQueryURL), cfg.TxPageSize, cfg.TxMaxPages)
	}

	aggregator := project.New(lineage.NewResolver(client), provider, tracker, cfg.Concurrency)

	env := &ops.Env{
		Sources:  provider,
		Projects: aggregator,
		Prober:   revela,
		Cfg:      cfg,
	}

	db, err := catalog.Init(baseDir)
	if err != nil {
		// The catalog is an accessory; run without it.
		fmt.Fprintf(os.Stderr, "warning: run catalog unavailable: %v\n", err)
		return env, nil
	}
	catalog.ConfigurePool(db, cfg)
	env.DB = db

	return env, nil
}

func main() {
	// No args + interactive terminal → show banner and exit
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	// Handle --help/--version before any wiring (nothing needed)
	if isHelpOrVersion() {
		app := newCLIApp(nil)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: could not determine home directory: %v\n", err)
		os.Exit(1)
	}

	baseDir := filepath.Join(homeDir, ".suisource")

	cfg, err := config.Load(baseDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to load config: %v\n", err)
		os.Exit(1)
	}

	if unknown := mcp.ValidateDisabledTools(cfg.DisabledTools); len(unknown) > 0 {
		fmt.Fprintf(os.Stderr, "warning: unknown disabled_tools entries: %v\n", unknown)
	}

	env, err := buildEnv(cfg, baseDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if env.DB != nil {
		defer env.DB.Close()
	}

	// CLI mode: known subcommand
	if isCLIMode() {
		app := newCLIApp(env)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if len(os.Args) >= 2 && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'suisource --help' for usage.\n")
		os.Exit(1)
	}

	// MCP server mode (default)
	if err := mcp.Run(env, Version); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
