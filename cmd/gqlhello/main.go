package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hanpama/gqlhello/internal/engine"
	"github.com/hanpama/gqlhello/internal/hello"
	"github.com/hanpama/gqlhello/internal/telemetry"
)

var version = "0.0.1"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "gqlhello",
		Short:         "Hello-world GraphQL service",
		Long:          "Runs { hello } against the minimal schema and prints the result.\nUse \"gqlhello serve\" to serve the demo schema over HTTP.",
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runHello,
	}
	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Serve the demo schema on :4000/graphql",
			Args:  cobra.NoArgs,
			RunE:  runServe,
		},
		&cobra.Command{
			Use:   "schema",
			Short: "Print the demo schema as SDL",
			Args:  cobra.NoArgs,
			RunE:  runSchema,
		},
	)
	return root
}

func runHello(cmd *cobra.Command, _ []string) error {
	logger, err := telemetry.NewCLILogger()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	reg, err := hello.MinimalRegistry()
	if err != nil {
		logger.Error("invalid schema", zap.Error(err))
		return err
	}
	res, err := engine.Execute(cmd.Context(), reg, "{ hello }", hello.MinimalRoot())
	if err != nil {
		logger.Error("query failed", zap.Error(err))
		return err
	}
	out, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return err
}

func runSchema(cmd *cobra.Command, _ []string) error {
	reg, err := hello.ServerRegistry()
	if err != nil {
		return err
	}
	sdl, err := reg.SDL()
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), sdl)
	return err
}
