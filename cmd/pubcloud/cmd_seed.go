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
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/pubcloud/services/frequency"
)

// seeder is implemented by the writable backends.
type seeder interface {
	PutPublication(ctx context.Context, publicationID string, total int64) error
	PutWordCount(ctx context.Context, publicationID string, wc frequency.WordCount) error
}

// seedFile is the YAML layout accepted by "pubcloud seed":
//
//	publications:
//	  - id: vox
//	    total: 60      # optional, defaults to the sum of counts
//	    words:
//	      - {word: apple, count: 30}
type seedFile struct {
	Publications []seedPublication `yaml:"publications" validate:"required,min=1,dive"`
}

type seedPublication struct {
	ID    string                `yaml:"id" validate:"required,excludesall=/"`
	Total *int64                `yaml:"total" validate:"omitempty,gte=0"`
	Words []frequency.WordCount `yaml:"words" validate:"dive"`
}

var seedValidate = validator.New()

func init() {
	seedValidate.RegisterStructValidation(func(sl validator.StructLevel) {
		wc := sl.Current().Interface().(frequency.WordCount)
		if wc.Word == "" {
			sl.ReportError(wc.Word, "Word", "word", "required", "")
		}
		if wc.Count < 0 {
			sl.ReportError(wc.Count, "Count", "count", "gte", "0")
		}
	}, frequency.WordCount{})
}

func parseSeed(data []byte) (seedFile, error) {
	var sf seedFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return sf, fmt.Errorf("parse seed file: %w", err)
	}
	if err := seedValidate.Struct(sf); err != nil {
		return sf, fmt.Errorf("invalid seed file: %w", err)
	}
	return sf, nil
}

func (p seedPublication) total() int64 {
	if p.Total != nil {
		return *p.Total
	}
	var sum int64
	for _, wc := range p.Words {
		sum += wc.Count
	}
	return sum
}

func (a *app) seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed <file.yaml>",
		Short: "Load publications and word counts into the data backend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			sf, err := parseSeed(raw)
			if err != nil {
				return err
			}

			data, err := a.openData(ctx)
			if err != nil {
				return err
			}
			defer a.closeQuietly("data", data)

			s, ok := data.(seeder)
			if !ok {
				return fmt.Errorf("data backend %q is read-only", a.cfg.Data.Kind)
			}

			words := 0
			for _, p := range sf.Publications {
				if err := s.PutPublication(ctx, p.ID, p.total()); err != nil {
					return err
				}
				for _, wc := range p.Words {
					if err := s.PutWordCount(ctx, p.ID, wc); err != nil {
						return err
					}
				}
				words += len(p.Words)
				a.logger.Debug("seeded publication", "publication", p.ID, "words", len(p.Words))
			}

			a.printer().Success(fmt.Sprintf("seeded %d publications, %d word counts", len(sf.Publications), words))
			return nil
		},
	}
}
