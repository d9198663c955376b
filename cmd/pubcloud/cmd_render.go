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
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/pubcloud/pkg/telemetry"
	"github.com/AleutianAI/pubcloud/services/artifact"
	"github.com/AleutianAI/pubcloud/services/clients"
	"github.com/AleutianAI/pubcloud/services/pipeline"
)

func (a *app) renderCmd() *cobra.Command {
	var (
		bucket      string
		base        string
		topN        int
		concurrency int
		dryRun      bool
		jsonOut     bool
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render and upload a word cloud for every publication",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			pc := a.cfg.Pipeline
			flags := cmd.Flags()
			if flags.Changed("bucket") {
				a.cfg.Blob.Bucket = bucket
			}
			if flags.Changed("base") {
				pc.Base = base
			}
			if flags.Changed("top") {
				pc.TopN = topN
			}
			if flags.Changed("concurrency") {
				pc.Concurrency = concurrency
			}
			if !flags.Changed("metrics-addr") {
				metricsAddr = a.cfg.Telemetry.MetricsAddr
			}

			if metricsAddr != "" {
				done, err := telemetry.ServeMetrics(ctx, metricsAddr)
				if err != nil {
					return err
				}
				go func() {
					for err := range done {
						a.logger.Error("metrics server failed", "error", err)
					}
				}()
				a.logger.Info("serving metrics", "addr", metricsAddr)
			}

			if !dryRun && clients.ParseKind(a.cfg.Blob.Kind) == clients.KindGCS && a.cfg.Blob.Bucket == "" {
				return fmt.Errorf("a bucket is required for the gcs backend (set blob.bucket or --bucket)")
			}

			data, err := a.openData(ctx)
			if err != nil {
				return err
			}
			defer a.closeQuietly("data", data)

			var sink artifact.Sink = artifact.NopSink{}
			if !dryRun {
				s, err := a.openSink(ctx)
				if err != nil {
					return err
				}
				defer a.closeQuietly("sink", s)
				sink = s
			}

			renderer, err := a.newRenderer()
			if err != nil {
				return err
			}

			p := &pipeline.Pipeline{
				Catalog:     data,
				Store:       data,
				Renderer:    renderer,
				Sink:        sink,
				Bucket:      a.cfg.Blob.Bucket,
				Base:        pc.Base,
				TopN:        pc.TopN,
				Concurrency: pc.Concurrency,
				Logger:      a.logger.Slog(),
			}
			summary, err := p.Run(ctx)
			if err != nil {
				return err
			}

			out := a.printer()
			if jsonOut {
				return out.JSON(summary)
			}
			rows := make([][]string, 0, len(summary.Outcomes))
			for _, o := range summary.Outcomes {
				rows = append(rows, []string{
					o.Publication.ID,
					strconv.Itoa(o.Words),
					strconv.Itoa(o.Bytes),
					o.Publication.ArtifactPath,
				})
			}
			out.Table([]string{"PUBLICATION", "WORDS", "BYTES", "PATH"}, rows)
			verb := "rendered"
			if dryRun {
				verb = "rendered (dry run)"
			}
			out.Success(fmt.Sprintf("%s %d publications in %s (run %s)",
				verb, len(summary.Outcomes), summary.Duration.Round(time.Millisecond), summary.RunID))
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&bucket, "bucket", "", "destination bucket (overrides blob.bucket)")
	flags.StringVar(&base, "base", "", "URL base path for artifact paths")
	flags.IntVar(&topN, "top", pipeline.DefaultTopN, "words per cloud")
	flags.IntVar(&concurrency, "concurrency", 1, "publications rendered at once")
	flags.BoolVar(&dryRun, "dry-run", false, "render without uploading")
	flags.BoolVar(&jsonOut, "json", false, "print the run summary as JSON")
	flags.StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address during the run")
	return cmd
}
