// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package pipeline renders a word cloud for every publication in a catalog
// and saves it through an artifact sink.
//
// For each publication the pipeline reads the top N word counts (optionally
// resuming from a per-publication checkpoint), renders them to PNG and
// saves the bytes under the publication's content-addressed name. Work items
// share nothing: each one owns its checkpoint and its render result.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/pubcloud/pkg/logging"
	"github.com/AleutianAI/pubcloud/pkg/telemetry"
	"github.com/AleutianAI/pubcloud/services/artifact"
	"github.com/AleutianAI/pubcloud/services/frequency"
	"github.com/AleutianAI/pubcloud/services/render"
)

// DefaultTopN is the number of words placed in each cloud.
const DefaultTopN = 10

// Pipeline wires a catalog, a store, a renderer and a sink.
type Pipeline struct {
	Catalog  frequency.Catalog
	Store    frequency.Store
	Renderer *render.Renderer
	Sink     artifact.Sink

	// Bucket receives every artifact.
	Bucket string

	// Base is the URL base path used for Publication.ArtifactPath.
	Base string

	// TopN bounds the words per cloud. Zero means DefaultTopN.
	TopN int

	// Checkpoints optionally resumes individual publications. Read only.
	Checkpoints map[string]*frequency.Checkpoint

	// Concurrency is the number of publications processed at once.
	// Values below 1 mean 1.
	Concurrency int

	Logger *slog.Logger
}

// Outcome describes one processed publication.
type Outcome struct {
	Publication frequency.Publication `json:"publication"`
	Words       int                   `json:"words"`
	Bytes       int                   `json:"bytes"`
	Duration    time.Duration         `json:"duration"`
}

// Summary describes a run.
type Summary struct {
	RunID    string        `json:"run_id"`
	Outcomes []Outcome     `json:"outcomes"`
	Duration time.Duration `json:"duration"`
}

func (p *Pipeline) validate() error {
	var errs []error
	if p.Catalog == nil {
		errs = append(errs, errors.New("catalog is required"))
	}
	if p.Store == nil {
		errs = append(errs, errors.New("store is required"))
	}
	if p.Renderer == nil {
		errs = append(errs, errors.New("renderer is required"))
	}
	if p.Sink == nil {
		errs = append(errs, errors.New("sink is required"))
	}
	if p.TopN < 0 {
		errs = append(errs, fmt.Errorf("top n must not be negative, got %d", p.TopN))
	}
	return errors.Join(errs...)
}

// Run processes every publication in the catalog.
//
// Description:
//
//	Pulls publications one at a time and hands each to a worker, at most
//	Concurrency at once. The first error stops the catalog walk, cancels
//	in-flight work and is returned with the outcomes completed so far.
//
// Outputs:
//
//	Summary - Run id and per-publication outcomes.
//	error - The first failure, unchanged apart from context wrapping.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	if err := p.validate(); err != nil {
		return Summary{}, err
	}

	start := time.Now()
	summary := Summary{RunID: uuid.NewString()}
	logger := logging.OrDiscard(p.Logger).With(slog.String("run_id", summary.RunID))

	ctx, span := tracer.Start(ctx, "pipeline.Run")
	defer span.End()
	span.SetAttributes(attribute.String("run.id", summary.RunID))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(p.Concurrency, 1))

	var (
		mu      sync.Mutex
		walkErr error
	)
	for pub, err := range p.Catalog.Publications(gctx, p.Base) {
		if err != nil {
			walkErr = fmt.Errorf("list publications: %w", err)
			break
		}
		g.Go(func() error {
			outcome, err := p.process(gctx, logger, pub)
			if err != nil {
				return err
			}
			mu.Lock()
			summary.Outcomes = append(summary.Outcomes, outcome)
			mu.Unlock()
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = walkErr
	}
	summary.Duration = time.Since(start)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Error("run failed", slog.Int("rendered", len(summary.Outcomes)), slog.String("error", err.Error()))
		return summary, err
	}
	logger.Info("run complete",
		slog.Int("rendered", len(summary.Outcomes)),
		slog.Duration("duration", summary.Duration),
	)
	return summary, nil
}

// Process reads, renders and saves a single publication.
func (p *Pipeline) Process(ctx context.Context, pub frequency.Publication) (Outcome, error) {
	if err := p.validate(); err != nil {
		return Outcome{}, err
	}
	return p.process(ctx, logging.OrDiscard(p.Logger), pub)
}

func (p *Pipeline) process(ctx context.Context, logger *slog.Logger, pub frequency.Publication) (outcome Outcome, err error) {
	start := time.Now()
	ctx, span := startPublicationSpan(ctx, pub.ID)
	logger = telemetry.LoggerWithTrace(ctx, logger)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		recordPublication(ctx, time.Since(start), outcome.Words, outcome.Bytes, err)
	}()

	topN := p.TopN
	if topN == 0 {
		topN = DefaultTopN
	}

	freqs, err := frequency.Frequencies(ctx, p.Store, pub.ID, topN, p.Checkpoints[pub.ID])
	if err != nil {
		return Outcome{}, fmt.Errorf("read word counts for %s: %w", pub.ID, err)
	}

	res, err := p.Renderer.Render(freqs, render.FormatBytes)
	if err != nil {
		return Outcome{}, fmt.Errorf("render %s: %w", pub.ID, err)
	}

	if err := p.Sink.Save(ctx, pub.ID, p.Bucket, res.Bytes); err != nil {
		return Outcome{}, fmt.Errorf("save %s: %w", pub.ID, err)
	}

	outcome = Outcome{
		Publication: pub,
		Words:       len(freqs),
		Bytes:       len(res.Bytes),
		Duration:    time.Since(start),
	}
	logger.Debug("rendered publication",
		slog.String("publication", pub.ID),
		slog.String("artifact_path", pub.ArtifactPath),
		slog.Int("words", outcome.Words),
		slog.Int("bytes", outcome.Bytes),
	)
	return outcome, nil
}

// Pages walks every word count of a publication one page at a time.
//
// Each page is fetched only when the previous one has been consumed, using
// the last record of the previous page as the checkpoint. The walk ends at
// the first empty page.
func Pages(ctx context.Context, store frequency.Store, publicationID string, pageSize int, from *frequency.Checkpoint) iter.Seq2[[]frequency.WordCount, error] {
	return func(yield func([]frequency.WordCount, error) bool) {
		if pageSize <= 0 {
			return
		}
		cp := from
		for {
			page, err := frequency.Collect(store.TopN(ctx, publicationID, pageSize, cp))
			if err != nil {
				yield(nil, err)
				return
			}
			if len(page) == 0 {
				return
			}
			if !yield(page, nil) {
				return
			}
			cp = frequency.After(page[len(page)-1])
		}
	}
}
