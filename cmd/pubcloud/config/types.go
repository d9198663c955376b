// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"github.com/AleutianAI/pubcloud/pkg/telemetry"
	"github.com/AleutianAI/pubcloud/services/pipeline"
	"github.com/AleutianAI/pubcloud/services/render"
)

// CurrentConfigVersion is written into new config files.
const CurrentConfigVersion = "1"

// PubcloudConfig is the on-disk configuration. Every leaf can be overridden
// by a PUBCLOUD_* environment variable.
type PubcloudConfig struct {
	Meta MetaConfig `yaml:"meta"`

	// Data selects the word-frequency backend.
	Data DataConfig `yaml:"data" envPrefix:"DATA_"`

	// Blob selects where artifacts go.
	Blob BlobConfig `yaml:"blob" envPrefix:"BLOB_"`

	Render    RenderConfig    `yaml:"render" envPrefix:"RENDER_"`
	Pipeline  PipelineConfig  `yaml:"pipeline" envPrefix:"PIPELINE_"`
	Logging   LoggingConfig   `yaml:"logging" envPrefix:"LOG_"`
	Telemetry TelemetryConfig `yaml:"telemetry" envPrefix:"OTEL_"`
}

type MetaConfig struct {
	Version string `yaml:"version"`
}

type DataConfig struct {
	// Kind is "firestore" (alias "db"), "badger" or "synthetic".
	Kind            string `yaml:"kind" env:"KIND" validate:"required,oneof=firestore db badger synthetic"`
	ProjectID       string `yaml:"project_id,omitempty" env:"PROJECT_ID"`
	DatabaseID      string `yaml:"database_id,omitempty" env:"DATABASE_ID"`
	CredentialsFile string `yaml:"credentials_file,omitempty" env:"CREDENTIALS_FILE"`
	BadgerPath      string `yaml:"badger_path,omitempty" env:"BADGER_PATH" validate:"required_if=Kind badger"`
}

type BlobConfig struct {
	// Kind is "gcs" (alias "blob") or "nop".
	Kind            string `yaml:"kind" env:"KIND" validate:"required,oneof=gcs blob nop"`
	Bucket          string `yaml:"bucket" env:"BUCKET"`
	CredentialsFile string `yaml:"credentials_file,omitempty" env:"CREDENTIALS_FILE"`
	Endpoint        string `yaml:"endpoint,omitempty" env:"ENDPOINT" validate:"omitempty,url"`
}

type RenderConfig struct {
	Height      int    `yaml:"height" env:"HEIGHT" validate:"gt=0,lte=8192"`
	Width       int    `yaml:"width" env:"WIDTH" validate:"gt=0,lte=8192"`
	FontFile    string `yaml:"font_file,omitempty" env:"FONT_FILE"`
	MinFontSize int    `yaml:"min_font_size" env:"MIN_FONT_SIZE" validate:"gte=0"`
	MaxFontSize int    `yaml:"max_font_size" env:"MAX_FONT_SIZE" validate:"gte=0"`
}

type PipelineConfig struct {
	// Base is the URL base path for artifact paths.
	Base        string `yaml:"base" env:"BASE"`
	TopN        int    `yaml:"top_n" env:"TOP_N" validate:"gte=1,lte=10000"`
	Concurrency int    `yaml:"concurrency" env:"CONCURRENCY" validate:"gte=1,lte=64"`
}

type LoggingConfig struct {
	Level string `yaml:"level" env:"LEVEL" validate:"oneof=debug info warn warning error"`
	JSON  bool   `yaml:"json" env:"JSON"`
	// Dir receives a dated JSON log file when set.
	Dir string `yaml:"dir,omitempty" env:"DIR"`
}

type TelemetryConfig struct {
	TraceExporter  string `yaml:"trace_exporter" env:"TRACES_EXPORTER" validate:"oneof=otlp stdout none"`
	MetricExporter string `yaml:"metric_exporter" env:"METRICS_EXPORTER" validate:"oneof=prometheus stdout none"`
	OTLPEndpoint   string `yaml:"otlp_endpoint,omitempty" env:"EXPORTER_OTLP_ENDPOINT"`
	MetricsAddr    string `yaml:"metrics_addr,omitempty" env:"METRICS_ADDR" validate:"omitempty,hostname_port"`
}

// DefaultConfig runs entirely offline: synthetic data, no uploads.
func DefaultConfig() PubcloudConfig {
	tel := telemetry.DefaultConfig()
	return PubcloudConfig{
		Meta: MetaConfig{Version: CurrentConfigVersion},
		Data: DataConfig{Kind: "synthetic"},
		Blob: BlobConfig{Kind: "nop"},
		Render: RenderConfig{
			Height: render.DefaultHeight,
			Width:  render.DefaultWidth,
		},
		Pipeline: PipelineConfig{
			TopN:        pipeline.DefaultTopN,
			Concurrency: 1,
		},
		Logging: LoggingConfig{Level: "info"},
		Telemetry: TelemetryConfig{
			TraceExporter:  tel.TraceExporter,
			MetricExporter: tel.MetricExporter,
			OTLPEndpoint:   tel.OTLPEndpoint,
		},
	}
}

// TelemetryOptions converts the telemetry section for telemetry.Init.
func (c PubcloudConfig) TelemetryOptions() telemetry.Config {
	tel := telemetry.DefaultConfig()
	tel.TraceExporter = c.Telemetry.TraceExporter
	tel.MetricExporter = c.Telemetry.MetricExporter
	if c.Telemetry.OTLPEndpoint != "" {
		tel.OTLPEndpoint = c.Telemetry.OTLPEndpoint
	}
	return tel
}
