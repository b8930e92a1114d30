package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/PassKeyRa/suisource-mcp/internal/errors"
	"github.com/PassKeyRa/suisource-mcp/internal/ops"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(env *ops.Env) *cli.App {
	app := &cli.App{
		Name:    "suisource",
		Usage:   "Decompile Sui Move packages to source",
		Version: Version,
		Commands: []*cli.Command{
			healthCmd(env),
			sourceCmd(env),
			projectCmd(env),
			runsCmd(env),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// healthCmd creates the health command.
func healthCmd(env *ops.Env) *cli.Command {
	return &cli.Command{
		Name:  "health",
		Usage: "Check decompiler availability and RPC configuration",
		Action: func(c *cli.Context) error {
			return outputJSON(ops.HealthCheck(c.Context, env))
		},
	}
}

// sourceCmd creates the source command.
func sourceCmd(env *ops.Env) *cli.Command {
	return &cli.Command{
		Name:      "source",
		Usage:     "Fetch and decompile one package's modules",
		ArgsUsage: "<package-id>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return outputError(errors.NewInvalidRequest("expected exactly one package id argument"))
			}

			output, err := ops.GetSourceCode(c.Context, env, ops.GetSourceCodeInput{
				PackageID: c.Args().First(),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// projectCmd creates the project command.
func projectCmd(env *ops.Env) *cli.Command {
	return &cli.Command{
		Name:      "project",
		Usage:     "Resolve a package's upgrade family with sources and change history",
		ArgsUsage: "<package-id>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return outputError(errors.NewInvalidRequest("expected exactly one package id argument"))
			}

			output, err := ops.GetProjectInfo(c.Context, env, ops.GetProjectInfoInput{
				PackageID: c.Args().First(),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// runsCmd creates the runs command.
func runsCmd(env *ops.Env) *cli.Command {
	return &cli.Command{
		Name:  "runs",
		Usage: "List recent tool runs, newest first",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: 20, Usage: "Maximum entries to return"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.ListRuns(env, ops.ListRunsInput{Limit: c.Int("limit")})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// outputJSON writes indented JSON to stdout.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if opErr, ok := err.(*errors.Error); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", opErr.Code, opErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}
