// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package render

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

var (
	bundledFontOnce sync.Once
	bundledFontPath string
	bundledFontErr  error
)

// bundledFont writes the Go Regular font to the temp directory once per
// process and returns its path. The layout library loads fonts by path.
func bundledFont() (string, error) {
	bundledFontOnce.Do(func() {
		f, err := os.CreateTemp("", "pubcloud-goregular-*.ttf")
		if err != nil {
			bundledFontErr = fmt.Errorf("create bundled font file: %w", err)
			return
		}
		if _, err := f.Write(goregular.TTF); err != nil {
			f.Close()
			bundledFontErr = fmt.Errorf("write bundled font file: %w", err)
			return
		}
		if err := f.Close(); err != nil {
			bundledFontErr = fmt.Errorf("close bundled font file: %w", err)
			return
		}
		bundledFontPath = f.Name()
	})
	return bundledFontPath, bundledFontErr
}

// checkFont verifies that path holds a parseable TrueType/OpenType font.
func checkFont(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read font %s: %w", path, err)
	}
	if _, err := opentype.Parse(data); err != nil {
		return fmt.Errorf("parse font %s: %w", path, err)
	}
	return nil
}
