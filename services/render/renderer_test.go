// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package render

import (
	"bytes"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sample = map[string]int64{"apple": 30, "banana": 20, "cherry": 10}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"raw", FormatRaw},
		{"RAW", FormatRaw},
		{"Image", FormatImage},
		{"bytes", FormatBytes},
		{"BYTES", FormatBytes},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.NotEqual(t, "unknown", got.String())
		})
	}

	for _, bad := range []string{"xml", "", "png", " raw"} {
		_, err := ParseFormat(bad)
		assert.ErrorIs(t, err, ErrUnsupportedFormat, "format %q", bad)
	}
}

func TestRender_UnsupportedFormat(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	_, err = r.RenderString(sample, "xml")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = r.Render(sample, Format(0))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestRender_FormatsAgreeOnSize(t *testing.T) {
	sizes := [][2]int{{500, 500}, {240, 320}}
	for _, size := range sizes {
		height, width := size[0], size[1]
		r, err := New(WithSize(height, width))
		require.NoError(t, err)

		raw, err := r.RenderString(sample, "raw")
		require.NoError(t, err)
		require.NotNil(t, raw.Layout)
		assert.Nil(t, raw.Image)
		assert.Nil(t, raw.Bytes)
		assert.Equal(t, height, raw.Layout.Height)
		assert.Equal(t, width, raw.Layout.Width)

		fromRaw, err := raw.Layout.Image()
		require.NoError(t, err)
		assert.Equal(t, width, fromRaw.Bounds().Dx())
		assert.Equal(t, height, fromRaw.Bounds().Dy())

		img, err := r.RenderString(sample, "IMAGE")
		require.NoError(t, err)
		require.NotNil(t, img.Image)
		assert.Equal(t, fromRaw.Bounds().Size(), img.Image.Bounds().Size())

		encoded, err := r.Render(sample, FormatBytes)
		require.NoError(t, err)
		require.NotEmpty(t, encoded.Bytes)
		decoded, err := png.Decode(bytes.NewReader(encoded.Bytes))
		require.NoError(t, err)
		assert.Equal(t, width, decoded.Bounds().Dx())
		assert.Equal(t, height, decoded.Bounds().Dy())
	}
}

func TestLayout_DropsWeightlessWords(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	l := r.Layout(map[string]int64{"ent0": 0, "ent1": 1, "": 4, "neg": -2})
	assert.Equal(t, map[string]int{"ent1": 1}, l.Weights)
}

func TestLayout_EmptyIsBlankCanvas(t *testing.T) {
	r, err := New(WithSize(50, 80), WithBackground(color.Black))
	require.NoError(t, err)

	res, err := r.Render(map[string]int64{}, FormatImage)
	require.NoError(t, err)
	assert.Equal(t, 80, res.Image.Bounds().Dx())
	assert.Equal(t, 50, res.Image.Bounds().Dy())
	r0, g0, b0, _ := res.Image.At(10, 10).RGBA()
	assert.Zero(t, r0+g0+b0)
}

func TestLayout_ImageIsCached(t *testing.T) {
	r, err := New(WithSize(100, 100))
	require.NoError(t, err)
	l := r.Layout(sample)

	a, err := l.Image()
	require.NoError(t, err)
	b, err := l.Image()
	require.NoError(t, err)
	assert.Same(t, a, b)
}

func TestNew_Validation(t *testing.T) {
	_, err := New(WithSize(0, 10))
	assert.Error(t, err)

	_, err = New(WithFontSizes(50, 10))
	assert.Error(t, err)

	_, err = New(WithFontFile(filepath.Join(t.TempDir(), "missing.ttf")))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.ttf")
	require.NoError(t, os.WriteFile(bad, []byte("not a font"), 0644))
	_, err = New(WithFontFile(bad))
	assert.Error(t, err)
}

func TestNew_Defaults(t *testing.T) {
	r, err := New()
	require.NoError(t, err)
	assert.Equal(t, DefaultHeight, r.Height())
	assert.Equal(t, DefaultWidth, r.Width())
	assert.Equal(t, 10, r.minFont)
	assert.Equal(t, 100, r.maxFont)
}
