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
	"strconv"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/pubcloud/pkg/contentaddr"
	"github.com/AleutianAI/pubcloud/services/frequency"
)

func (a *app) publicationsCmd() *cobra.Command {
	var (
		base    string
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:     "publications",
		Aliases: []string{"pubs"},
		Short:   "List publications and their artifact paths",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if !cmd.Flags().Changed("base") {
				base = a.cfg.Pipeline.Base
			}

			data, err := a.openData(ctx)
			if err != nil {
				return err
			}
			defer a.closeQuietly("data", data)

			pubs, err := frequency.Collect(data.Publications(ctx, base))
			if err != nil {
				return err
			}

			out := a.printer()
			if jsonOut {
				return out.JSON(pubs)
			}
			rows := make([][]string, 0, len(pubs))
			for _, p := range pubs {
				rows = append(rows, []string{
					p.ID,
					strconv.FormatInt(p.TotalCount, 10),
					contentaddr.FileName(p.ID),
					p.ArtifactPath,
				})
			}
			out.Table([]string{"ID", "TOTAL", "FILE", "PATH"}, rows)
			return nil
		},
	}

	cmd.Flags().StringVar(&base, "base", "", "URL base path for artifact paths")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print as JSON")
	return cmd
}
