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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestLoad_FirstRunCreatesDefault(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	res, err := Load("")
	require.NoError(t, err)

	assert.True(t, res.Created)
	assert.Equal(t, filepath.Join(home, ".pubcloud", "pubcloud.yaml"), res.Path)
	assert.Equal(t, DefaultConfig(), res.Config)

	data, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	var onDisk PubcloudConfig
	require.NoError(t, yaml.Unmarshal(data, &onDisk))
	assert.Equal(t, CurrentConfigVersion, onDisk.Meta.Version)

	again, err := Load("")
	require.NoError(t, err)
	assert.False(t, again.Created)
}

func TestLoad_ExplicitPathMustExist(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read")
}

func TestParse_KeepsDefaultsForMissingFields(t *testing.T) {
	cfg, err := Parse([]byte("data:\n  kind: badger\n  badger_path: /tmp/pubcloud\n"))
	require.NoError(t, err)

	assert.Equal(t, "badger", cfg.Data.Kind)
	assert.Equal(t, "/tmp/pubcloud", cfg.Data.BadgerPath)
	assert.Equal(t, 500, cfg.Render.Height)
	assert.Equal(t, 10, cfg.Pipeline.TopN)
	assert.Equal(t, "nop", cfg.Blob.Kind)
}

func TestParse_EnvironmentOverrides(t *testing.T) {
	t.Setenv("PUBCLOUD_BLOB_KIND", "gcs")
	t.Setenv("PUBCLOUD_BLOB_BUCKET", "clouds")
	t.Setenv("PUBCLOUD_PIPELINE_TOP_N", "25")
	t.Setenv("PUBCLOUD_LOG_JSON", "true")

	cfg, err := Parse([]byte("blob:\n  kind: nop\n"))
	require.NoError(t, err)

	assert.Equal(t, "gcs", cfg.Blob.Kind)
	assert.Equal(t, "clouds", cfg.Blob.Bucket)
	assert.Equal(t, 25, cfg.Pipeline.TopN)
	assert.True(t, cfg.Logging.JSON)
}

func TestParse_BadEnvironmentValue(t *testing.T) {
	t.Setenv("PUBCLOUD_RENDER_HEIGHT", "tall")
	_, err := Parse(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "environment")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*PubcloudConfig)
		want   string
	}{
		{"unknown data kind", func(c *PubcloudConfig) { c.Data.Kind = "postgres" }, "Kind"},
		{"badger without path", func(c *PubcloudConfig) { c.Data.Kind = "badger" }, "BadgerPath"},
		{"blob endpoint", func(c *PubcloudConfig) { c.Blob.Endpoint = "not a url" }, "Endpoint"},
		{"zero height", func(c *PubcloudConfig) { c.Render.Height = 0 }, "Height"},
		{"top n", func(c *PubcloudConfig) { c.Pipeline.TopN = 0 }, "TopN"},
		{"concurrency", func(c *PubcloudConfig) { c.Pipeline.Concurrency = 100 }, "Concurrency"},
		{"log level", func(c *PubcloudConfig) { c.Logging.Level = "loud" }, "Level"},
		{"exporter", func(c *PubcloudConfig) { c.Telemetry.TraceExporter = "zipkin" }, "TraceExporter"},
		{"font sizes", func(c *PubcloudConfig) {
			c.Render.MinFontSize = 40
			c.Render.MaxFontSize = 20
		}, "min_font_size"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidate_Default(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
}

func TestWrite_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "pubcloud.yaml")
	cfg := DefaultConfig()
	cfg.Blob = BlobConfig{Kind: "gcs", Bucket: "clouds"}

	require.NoError(t, Write(path, cfg))
	res, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, res.Config)
	assert.False(t, res.Created)
}

func TestTelemetryOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Telemetry.TraceExporter = "stdout"
	cfg.Telemetry.OTLPEndpoint = "collector:4317"

	tel := cfg.TelemetryOptions()
	assert.Equal(t, "stdout", tel.TraceExporter)
	assert.Equal(t, "none", tel.MetricExporter)
	assert.Equal(t, "collector:4317", tel.OTLPEndpoint)
	assert.Equal(t, "pubcloud", tel.ServiceName)
}
