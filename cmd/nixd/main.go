// Copyright 2024 The Nixd-sub001 Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command nixd is the language server's entry point: it parses the CLI
// flags of spec §6, builds a logger and a seed configuration, and runs
// one LSP session over stdin/stdout to completion.
//
// Flag parsing uses github.com/spf13/cobra, the same library
// cuelang.org/go/cmd/cue uses for its root command, rather than the
// standard library's flag package, since the flag surface here (string
// enums, defaulted paths, an abbreviation flag that rewrites two
// others) is exactly the shape cobra/pflag are built for.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/nix-community/nixd-sub001/internal/config"
	"github.com/nix-community/nixd-sub001/internal/controller"
)

var (
	litTest             bool
	logLevel            string
	pretty              bool
	configJSON          string
	optionWorkerStderr  string
	nixpkgsWorkerStderr string
	poolSize            int64
)

// levelVerbose sits below slog.LevelDebug, for --log=verbose: "low level
// details" per spec §6, one tier noisier than slog's own Debug.
const levelVerbose = slog.LevelDebug - 4

func parseLevel(s string) (slog.Level, error) {
	switch s {
	case "error":
		return slog.LevelError, nil
	case "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "verbose":
		return levelVerbose, nil
	default:
		return 0, fmt.Errorf("unrecognised --log level %q (want error|info|debug|verbose)", s)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "nixd",
		Short:         "Nix language server",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context())
		},
	}
	flags := cmd.Flags()
	flags.BoolVar(&litTest, "lit-test", false, "abbreviation for --log=verbose --pretty, for lit-style golden tests")
	flags.StringVar(&logLevel, "log", "info", "verbosity of log messages written to stderr: error|info|debug|verbose")
	flags.BoolVar(&pretty, "pretty", false, "accepted and logged at startup; JSON written to the client is not reformatted")
	flags.StringVar(&configJSON, "config", "", "seed configuration as an inline JSON document, per the workspace/configuration schema")
	flags.StringVar(&nixpkgsWorkerStderr, "nixpkgs-worker-stderr", os.DevNull, "path the nixpkgs worker's stderr is redirected to")
	flags.StringVar(&optionWorkerStderr, "option-worker-stderr", os.DevNull, "path each option worker's stderr is redirected to")
	flags.Int64Var(&poolSize, "pool-size", 8, "number of concurrent LSP request handlers")
	return cmd
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "nixd:", err)
		os.Exit(1)
	}
}

// attrsetWorkerPath resolves the attribute-set/option worker binary,
// honouring the NIXD_ATTRSET_EVAL override of spec §6; absent that, it
// falls back to resolving "nixd-attrset-worker" off $PATH, standing in
// for the compile-time install path a packaged build would bake in.
func attrsetWorkerPath() string {
	if p := os.Getenv("NIXD_ATTRSET_EVAL"); p != "" {
		return p
	}
	return "nixd-attrset-worker"
}

func run(ctx context.Context) error {
	if litTest {
		logLevel = "verbose"
		pretty = true
	}

	level, err := parseLevel(logLevel)
	if err != nil {
		return err
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	log.Debug("nixd: starting", "log-level", logLevel, "pretty", pretty, "lit-test", litTest)

	var seed *config.Config
	if configJSON != "" {
		seed, err = config.Parse([]byte(configJSON))
		if err != nil {
			return fmt.Errorf("parsing --config: %w", err)
		}
	}

	opts := controller.Options{
		Log:               log,
		PoolSize:          poolSize,
		Spawner:           controller.ProcessSpawner{},
		SeedConfig:        seed,
		AttrsetWorkerArgv: []string{attrsetWorkerPath()},
		NixpkgsStderr:     nixpkgsWorkerStderr,
		OptionStderr:      optionWorkerStderr,
	}
	return controller.Serve(ctx, opts)
}
