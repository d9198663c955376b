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

	"github.com/spf13/cobra"

	"github.com/AleutianAI/pubcloud/services/frequency"
	"github.com/AleutianAI/pubcloud/services/pipeline"
)

func (a *app) wordsCmd() *cobra.Command {
	var (
		topN       int
		afterWord  string
		afterCount int64
		all        bool
		pageSize   int
		jsonOut    bool
	)

	cmd := &cobra.Command{
		Use:   "words <publication>",
		Short: "Print the most frequent words of a publication",
		Long: `Print word counts in descending count order, ties broken by word.

--after-word and --after-count resume strictly after that record; both are
needed, otherwise the listing starts from the top. --all walks every record
page by page.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pub := args[0]

			var countPtr *int64
			if cmd.Flags().Changed("after-count") {
				countPtr = &afterCount
			}
			cp := frequency.NewCheckpoint(afterWord, countPtr)
			if cp == nil && (afterWord != "" || countPtr != nil) {
				a.logger.Warn("partial checkpoint ignored; both --after-word and --after-count are needed")
			}

			if !cmd.Flags().Changed("top") {
				topN = a.cfg.Pipeline.TopN
			}

			data, err := a.openData(ctx)
			if err != nil {
				return err
			}
			defer a.closeQuietly("data", data)

			var words []frequency.WordCount
			if all {
				pages := 0
				for page, err := range pipeline.Pages(ctx, data, pub, pageSize, cp) {
					if err != nil {
						return err
					}
					pages++
					words = append(words, page...)
				}
				a.logger.Debug("walked pages", "publication", pub, "pages", pages, "page_size", pageSize)
			} else {
				words, err = frequency.Collect(data.TopN(ctx, pub, topN, cp))
				if err != nil {
					return err
				}
			}

			out := a.printer()
			if jsonOut {
				return out.JSON(words)
			}
			rows := make([][]string, 0, len(words))
			for _, wc := range words {
				rows = append(rows, []string{wc.Word, strconv.FormatInt(wc.Count, 10)})
			}
			out.Table([]string{"WORD", "COUNT"}, rows)
			if len(words) > 0 && !all {
				last := words[len(words)-1]
				out.Title(fmt.Sprintf("next page: --after-word %q --after-count %d", last.Word, last.Count))
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&topN, "top", pipeline.DefaultTopN, "number of words")
	flags.StringVar(&afterWord, "after-word", "", "resume after this word")
	flags.Int64Var(&afterCount, "after-count", 0, "resume after this count")
	flags.BoolVar(&all, "all", false, "walk every word count")
	flags.IntVar(&pageSize, "page-size", 100, "page size for --all")
	flags.BoolVar(&jsonOut, "json", false, "print as JSON")
	return cmd
}
