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
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "PUBCLOUD_"

var validate = validator.New()

// Loaded is the result of Load.
type Loaded struct {
	Config PubcloudConfig

	// Path is the file that was read.
	Path string

	// Created is true when Load wrote a default file first.
	Created bool
}

// DefaultPath returns ~/.pubcloud/pubcloud.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not find the user's home directory: %w", err)
	}
	return filepath.Join(home, ".pubcloud", "pubcloud.yaml"), nil
}

// Load reads, overrides and validates the configuration.
//
// Description:
//
//	With an empty path the default location is used, and a default file is
//	created there on first run. An explicit path must exist. Values missing
//	from the file keep their defaults. PUBCLOUD_* environment variables are
//	applied on top, then the result is validated.
//
// Outputs:
//
//	Loaded - The configuration and where it came from.
//	error - Read, parse, environment or validation failure.
func Load(path string) (Loaded, error) {
	var res Loaded

	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return res, err
		}
		path = p
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			if err := createDefault(path); err != nil {
				return res, err
			}
			res.Created = true
		}
	}
	res.Path = path

	data, err := os.ReadFile(path)
	if err != nil {
		return res, fmt.Errorf("failed to read the config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return res, fmt.Errorf("%s: %w", path, err)
	}
	res.Config = cfg
	return res, nil
}

// Parse decodes YAML over the defaults, applies the environment and
// validates.
func Parse(data []byte) (PubcloudConfig, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse the config: %w", err)
	}
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return cfg, fmt.Errorf("failed to apply environment overrides: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks field constraints and cross-field rules.
func (c PubcloudConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]error, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Errorf("%s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
			}
			return fmt.Errorf("invalid config: %w", errors.Join(msgs...))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Render.MaxFontSize > 0 && c.Render.MinFontSize > c.Render.MaxFontSize {
		return fmt.Errorf("invalid config: render.min_font_size %d exceeds render.max_font_size %d",
			c.Render.MinFontSize, c.Render.MaxFontSize)
	}
	return nil
}

// Write stores cfg as YAML, creating parent directories.
func Write(path string, cfg PubcloudConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create the config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func createDefault(path string) error {
	return Write(path, DefaultConfig())
}
