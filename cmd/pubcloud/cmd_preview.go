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
	"errors"
	"fmt"
	"image/png"
	"os"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/pubcloud/services/frequency"
	"github.com/AleutianAI/pubcloud/services/pipeline"
	"github.com/AleutianAI/pubcloud/services/render"
)

// layoutView is the JSON shape of a raw layout.
type layoutView struct {
	Height  int            `json:"height"`
	Width   int            `json:"width"`
	Weights map[string]int `json:"weights"`
}

func (a *app) previewCmd() *cobra.Command {
	var (
		outPath string
		format  string
		topN    int
	)

	cmd := &cobra.Command{
		Use:   "preview <publication>",
		Short: "Render one publication locally without uploading",
		Long: `Render one publication's word cloud.

--format bytes (default) and image write a PNG to --out. --format raw prints
the sized, weighted layout as JSON instead of drawing it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pub := args[0]

			f, err := render.ParseFormat(format)
			if err != nil {
				return err
			}
			if f != render.FormatRaw && outPath == "" {
				return errors.New("--out is required for image and bytes formats")
			}
			if !cmd.Flags().Changed("top") {
				topN = a.cfg.Pipeline.TopN
			}

			data, err := a.openData(ctx)
			if err != nil {
				return err
			}
			defer a.closeQuietly("data", data)

			freqs, err := frequency.Frequencies(ctx, data, pub, topN, nil)
			if err != nil {
				return err
			}
			if len(freqs) == 0 {
				a.printer().Warning(fmt.Sprintf("%s has no word counts; the cloud is blank", pub))
			}

			renderer, err := a.newRenderer()
			if err != nil {
				return err
			}
			res, err := renderer.Render(freqs, f)
			if err != nil {
				return err
			}

			switch f {
			case render.FormatRaw:
				return a.printer().JSON(layoutView{
					Height:  res.Layout.Height,
					Width:   res.Layout.Width,
					Weights: res.Layout.Weights,
				})
			case render.FormatImage:
				file, err := os.Create(outPath)
				if err != nil {
					return err
				}
				if err := png.Encode(file, res.Image); err != nil {
					_ = file.Close()
					return fmt.Errorf("encode png: %w", err)
				}
				if err := file.Close(); err != nil {
					return err
				}
			default:
				if err := os.WriteFile(outPath, res.Bytes, 0o644); err != nil {
					return err
				}
			}
			a.printer().Success(fmt.Sprintf("wrote %s (%d words)", outPath, len(freqs)))
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&outPath, "out", "o", "", "output PNG file")
	flags.StringVar(&format, "format", render.FormatBytes.String(), "raw, image or bytes")
	flags.IntVar(&topN, "top", pipeline.DefaultTopN, "words in the cloud")
	return cmd
}
