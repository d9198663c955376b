// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"github.com/spf13/cobra"

	"github.com/AleutianAI/pubcloud/pkg/contentaddr"
)

func (a *app) pathCmd() *cobra.Command {
	var base string

	cmd := &cobra.Command{
		Use:   "path <publication>",
		Short: "Print the artifact path of a publication",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("base") {
				base = a.cfg.Pipeline.Base
			}
			a.printer().Line(contentaddr.DerivePath(args[0], base))
			return nil
		},
	}
	cmd.Flags().StringVar(&base, "base", "", "URL base path")
	return cmd
}
