// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package render

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedFormat is returned for any format other than raw, image or bytes.
var ErrUnsupportedFormat = errors.New("unsupported render format")

// Format selects the representation returned by Render.
type Format int

const (
	// FormatRaw returns the *Layout itself.
	FormatRaw Format = iota + 1

	// FormatImage returns the decoded raster image.
	FormatImage

	// FormatBytes returns the PNG-encoded image.
	FormatBytes
)

// String returns "raw", "image", "bytes", or "unknown".
func (f Format) String() string {
	switch f {
	case FormatRaw:
		return "raw"
	case FormatImage:
		return "image"
	case FormatBytes:
		return "bytes"
	default:
		return "unknown"
	}
}

// ParseFormat maps a case-insensitive name to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "raw":
		return FormatRaw, nil
	case "image":
		return FormatImage, nil
	case "bytes":
		return FormatBytes, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}
