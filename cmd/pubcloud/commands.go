// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/pubcloud/cmd/pubcloud/config"
	"github.com/AleutianAI/pubcloud/pkg/logging"
	"github.com/AleutianAI/pubcloud/pkg/telemetry"
	"github.com/AleutianAI/pubcloud/pkg/ux"
	"github.com/AleutianAI/pubcloud/services/clients"
	"github.com/AleutianAI/pubcloud/services/render"
)

// app carries state shared by every subcommand for one invocation.
type app struct {
	// --- Global flags ---
	configPath string
	dataKind   string
	blobKind   string
	logLevel   string
	jsonLogs   bool

	cfg      config.PubcloudConfig
	logger   *logging.Logger
	shutdown func(context.Context) error

	stdout io.Writer
	stderr io.Writer
}

// execute runs the CLI with args and releases everything it opened.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	a := &app{stdout: stdout, stderr: stderr}
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if cerr := a.close(); err == nil {
		err = cerr
	}
	return err
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "pubcloud",
		Short: "Render word clouds for publications and publish them",
		Long: `pubcloud reads the most frequent words of each publication from a
word-frequency backend, renders them as a PNG word cloud and saves the image
under a content-addressed name in an object store.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default ~/.pubcloud/pubcloud.yaml)")
	flags.StringVar(&a.dataKind, "data", "", "data backend: firestore|db, badger, synthetic")
	flags.StringVar(&a.blobKind, "blob", "", "blob backend: gcs|blob, nop")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.BoolVar(&a.jsonLogs, "json-logs", false, "log as JSON")

	root.AddCommand(
		a.renderCmd(),
		a.publicationsCmd(),
		a.wordsCmd(),
		a.pathCmd(),
		a.previewCmd(),
		a.seedCmd(),
	)
	return root
}

// setup loads config, applies flag overrides and starts logging and
// telemetry.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	loaded, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if loaded.Created {
		fmt.Fprintf(a.stderr, "First run detected, created the config at %s\n", loaded.Path)
	}
	a.cfg = loaded.Config

	flags := cmd.Flags()
	if flags.Changed("data") {
		a.cfg.Data.Kind = a.dataKind
	}
	if flags.Changed("blob") {
		a.cfg.Blob.Kind = a.blobKind
	}
	if flags.Changed("log-level") {
		a.cfg.Logging.Level = a.logLevel
	}
	if flags.Changed("json-logs") {
		a.cfg.Logging.JSON = a.jsonLogs
	}
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	level, err := logging.ParseLevel(a.cfg.Logging.Level)
	if err != nil {
		return err
	}
	a.logger = logging.New(logging.Config{
		Level:   level,
		LogDir:  a.cfg.Logging.Dir,
		Service: "pubcloud",
		JSON:    a.cfg.Logging.JSON,
		Output:  a.stderr,
	})

	a.shutdown, err = telemetry.Init(cmd.Context(), a.cfg.TelemetryOptions())
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}

	a.logger.Debug("config loaded",
		"path", loaded.Path,
		"data", a.cfg.Data.Kind,
		"blob", a.cfg.Blob.Kind,
	)
	return nil
}

func (a *app) close() error {
	var errs []error
	if a.shutdown != nil {
		errs = append(errs, a.shutdown(context.Background()))
	}
	if a.logger != nil {
		errs = append(errs, a.logger.Close())
	}
	return errors.Join(errs...)
}

func (a *app) printer() *ux.Printer {
	return ux.NewPrinter(a.stdout)
}

func (a *app) openData(ctx context.Context) (clients.Data, error) {
	return clients.OpenData(ctx, clients.DataConfig{
		Kind:            a.cfg.Data.Kind,
		ProjectID:       a.cfg.Data.ProjectID,
		DatabaseID:      a.cfg.Data.DatabaseID,
		CredentialsFile: a.cfg.Data.CredentialsFile,
		BadgerPath:      a.cfg.Data.BadgerPath,
	}, a.logger.Slog())
}

func (a *app) openSink(ctx context.Context) (clients.Sink, error) {
	return clients.OpenSink(ctx, clients.BlobConfig{
		Kind:            a.cfg.Blob.Kind,
		CredentialsFile: a.cfg.Blob.CredentialsFile,
		Endpoint:        a.cfg.Blob.Endpoint,
	}, a.logger.Slog())
}

func (a *app) newRenderer() (*render.Renderer, error) {
	rc := a.cfg.Render
	opts := []render.Option{
		render.WithSize(rc.Height, rc.Width),
		render.WithFontSizes(rc.MinFontSize, rc.MaxFontSize),
		render.WithLogger(a.logger.Slog()),
	}
	if rc.FontFile != "" {
		opts = append(opts, render.WithFontFile(rc.FontFile))
	}
	return render.New(opts...)
}

// closeQuietly logs a Close failure instead of masking the command's result.
func (a *app) closeQuietly(name string, c io.Closer) {
	if err := c.Close(); err != nil {
		a.logger.Warn("close failed", "resource", name, "error", err)
	}
}
