package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/glimte/hedwig-go/contracts"
	"github.com/glimte/hedwig-go/internal/config"
	"github.com/glimte/hedwig-go/internal/server"
	"github.com/glimte/hedwig-go/schema"
	"github.com/glimte/hedwig-go/serialization"
)

var (
	// Version information
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

// errInvalid signals a failed check whose details were already printed
var errInvalid = errors.New("validation failed")

type app struct {
	configPath string
	schemaFile string
	require    []string
	verbose    bool

	cfg    *config.Config
	logger *slog.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errInvalid) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "hedwig-schema",
		Short: "Check hedwig schema documents and validate messages against them",
		Long: `hedwig-schema loads a versioned hedwig schema document, verifies that it covers
every routed message type and major version, and validates messages against it.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildTime),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Config file (default ./hedwig.yaml)")
	rootCmd.PersistentFlags().StringVarP(&a.schemaFile, "schema", "s", "", "Schema document, overrides schema_file")
	rootCmd.PersistentFlags().StringArrayVarP(&a.require, "require", "r", nil, "Required coverage as type:major[=topic], repeatable")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(
		a.checkCmd(),
		a.validateCmd(),
		a.validateFormatCmd(),
		a.serveCmd(),
	)

	return rootCmd
}

func (a *app) init() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.schemaFile != "" {
		cfg.SchemaFile = a.schemaFile
	}
	cfg.Routes = append(cfg.Routes, a.require...)
	if a.verbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := cfg.Log.NewLogger(os.Stderr)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	a.cfg = cfg
	a.logger = logger
	return nil
}

func (a *app) loadDocument() (*schema.Document, error) {
	if a.cfg.SchemaFile == "" {
		return nil, fmt.Errorf("no schema document configured: set schema_file, HEDWIG_SCHEMA_FILE or --schema")
	}
	routes, err := a.cfg.RouteTable()
	if err != nil {
		return nil, err
	}

	doc, err := schema.LoadDocumentFile(a.cfg.SchemaFile, routes, schema.WithLogger(a.logger))
	if err != nil {
		var schemaErr *contracts.SchemaError
		if errors.As(err, &schemaErr) {
			printIssues(a.cfg.SchemaFile, schemaErr.Issues)
			return nil, errInvalid
		}
		return nil, err
	}
	return doc, nil
}

func (a *app) checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check a schema document for structure and coverage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.loadDocument()
			if err != nil {
				return err
			}
			printDocument(doc)
			return nil
		},
	}
}

func (a *app) validateCmd() *cobra.Command {
	var messageFile bool

	cmd := &cobra.Command{
		Use:   "validate <schema-ref> <payload-file>",
		Short: "Validate a payload or a whole message against the schema document",
		Args: func(cmd *cobra.Command, args []string) error {
			if messageFile {
				return cobra.ExactArgs(1)(cmd, args)
			}
			return cobra.ExactArgs(2)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.loadDocument()
			if err != nil {
				return err
			}
			validator, err := schema.NewMessageValidator(doc, schema.WithLogger(a.logger))
			if err != nil {
				return err
			}

			if messageFile {
				msg, err := readMessage(args[0])
				if err != nil {
					return err
				}
				return report(args[0], validator.Validate(cmd.Context(), msg))
			}

			payload, err := serialization.DecodeFile(args[1])
			if err != nil {
				return err
			}
			return report(args[1], validator.ValidateMessage(args[0], payload))
		},
	}

	cmd.Flags().BoolVarP(&messageFile, "message", "m", false, "Treat the argument as a full message and validate its envelope and data")
	return cmd
}

func (a *app) validateFormatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate-format <message-file>",
		Short: "Validate a message envelope against the hedwig message format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := serialization.DecodeFile(args[0])
			if err != nil {
				return err
			}
			return report(args[0], schema.ValidateFormatDocument(raw))
		},
	}
}

func (a *app) serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve message validation, health and metrics over HTTP",
		Long: `Serve message validation, health and metrics over HTTP.
Send SIGHUP to reload the schema document; a document that fails to load is
reported on /healthz and the previous one stays in use.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.loadDocument()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = a.cfg.Server.Addr
			}

			srv, err := server.New(doc, server.WithLogger(a.logger))
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			routes, err := a.cfg.RouteTable()
			if err != nil {
				return err
			}
			hup := make(chan os.Signal, 1)
			signal.Notify(hup, syscall.SIGHUP)
			defer signal.Stop(hup)
			go func() {
				for {
					select {
					case <-hup:
						// Failures are logged and reported on /healthz
						_ = srv.Reload(a.cfg.SchemaFile, routes)
					case <-ctx.Done():
						return
					}
				}
			}()

			return srv.Run(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default server.addr)")
	return cmd
}

// readMessage decodes a message file, checking the envelope format first
func readMessage(path string) (*contracts.BaseMessage, error) {
	raw, err := serialization.DecodeFile(path)
	if err != nil {
		return nil, err
	}
	if err := schema.ValidateFormatDocument(raw); err != nil {
		return nil, report(path, err)
	}

	var msg contracts.BaseMessage
	if err := serialization.Convert(raw, &msg); err != nil {
		return nil, fmt.Errorf("failed to decode message %s: %w", path, err)
	}
	return &msg, nil
}

func report(source string, err error) error {
	if err == nil {
		fmt.Printf("%s: valid\n", source)
		return nil
	}

	var ve *contracts.ValidationError
	if !errors.As(err, &ve) {
		return err
	}

	fmt.Printf("%s: invalid (%s)\n", source, ve.Reason)
	if len(ve.Violations) == 0 {
		fmt.Printf("  %s\n", ve.Error())
	}
	for _, v := range ve.Violations {
		fmt.Printf("  - %s\n", v)
	}
	return errInvalid
}

func printIssues(path string, issues []string) {
	fmt.Printf("%s: invalid schema document (%d issues)\n", path, len(issues))
	for _, issue := range issues {
		fmt.Printf("  - %s\n", issue)
	}
}

func printDocument(doc *schema.Document) {
	fmt.Printf("Schema: %s\n", doc.RootID())
	fmt.Printf("%-40s %s\n", "Message Type", "Versions")
	fmt.Println(strings.Repeat("-", 60))

	for _, t := range doc.MessageTypes() {
		fmt.Printf("%-40s %s\n", truncate(t, 40), strings.Join(doc.Versions(t), ", "))
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
