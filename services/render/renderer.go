// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package render turns a word frequency mapping into a word cloud image.
//
// Layout is delegated to github.com/psykhi/wordclouds. This package sizes
// the canvas, picks fonts and colors, and converts the result into one of
// three representations:
//
//	r, _ := render.New(render.WithSize(500, 500))
//	res, err := r.Render(freqs, render.FormatBytes)
//	// res.Bytes is a PNG
package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"log/slog"
	"sync"

	"github.com/psykhi/wordclouds"

	"github.com/AleutianAI/pubcloud/pkg/logging"
)

const (
	// DefaultHeight is the canvas height in pixels.
	DefaultHeight = 500

	// DefaultWidth is the canvas width in pixels.
	DefaultWidth = 500
)

// DefaultColors is the word palette.
var DefaultColors = []color.Color{
	color.RGBA{0x1b, 0x1b, 0x1b, 0xff},
	color.RGBA{0x48, 0x48, 0x4b, 0xff},
	color.RGBA{0x59, 0x3a, 0xee, 0xff},
	color.RGBA{0x65, 0xcd, 0xfa, 0xff},
	color.RGBA{0x70, 0xd6, 0xbf, 0xff},
}

// =============================================================================
// Renderer
// =============================================================================

// Renderer builds word cloud layouts of a fixed size.
//
// Thread Safety: A Renderer is immutable after New and safe for concurrent
// use. A Layout is not shared between calls.
type Renderer struct {
	height     int
	width      int
	fontFile   string
	minFont    int
	maxFont    int
	colors     []color.Color
	background color.Color
	logger     *slog.Logger
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithSize sets the canvas height and width in pixels.
func WithSize(height, width int) Option {
	return func(r *Renderer) {
		r.height = height
		r.width = width
	}
}

// WithFontFile sets a TrueType font path. Empty uses the bundled Go font.
func WithFontFile(path string) Option {
	return func(r *Renderer) { r.fontFile = path }
}

// WithFontSizes sets the smallest and largest font size in points.
func WithFontSizes(minSize, maxSize int) Option {
	return func(r *Renderer) {
		r.minFont = minSize
		r.maxFont = maxSize
	}
}

// WithColors sets the word palette.
func WithColors(colors ...color.Color) Option {
	return func(r *Renderer) { r.colors = colors }
}

// WithBackground sets the canvas color.
func WithBackground(c color.Color) Option {
	return func(r *Renderer) { r.background = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Renderer) { r.logger = l }
}

// New creates a Renderer.
//
// Description:
//
//	Applies options over 500x500 defaults, resolves the font (writing the
//	bundled font to a temp file if none is configured) and checks that it
//	parses, so layout never fails on a bad font later.
//
// Outputs:
//
//	*Renderer - Ready to use.
//	error - Non-nil for non-positive sizes or an unreadable font.
func New(opts ...Option) (*Renderer, error) {
	r := &Renderer{
		height:     DefaultHeight,
		width:      DefaultWidth,
		colors:     DefaultColors,
		background: color.White,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.OrDiscard(r.logger)

	if r.height <= 0 || r.width <= 0 {
		return nil, fmt.Errorf("canvas size must be positive, got %dx%d", r.height, r.width)
	}
	if r.minFont <= 0 {
		r.minFont = 10
	}
	if r.maxFont <= 0 {
		r.maxFont = max(min(r.height, r.width)/5, r.minFont)
	}
	if r.minFont > r.maxFont {
		return nil, fmt.Errorf("min font size %d exceeds max %d", r.minFont, r.maxFont)
	}
	if len(r.colors) == 0 {
		r.colors = DefaultColors
	}

	if r.fontFile == "" {
		path, err := bundledFont()
		if err != nil {
			return nil, err
		}
		r.fontFile = path
	}
	if err := checkFont(r.fontFile); err != nil {
		return nil, err
	}
	return r, nil
}

// Height returns the canvas height.
func (r *Renderer) Height() int { return r.height }

// Width returns the canvas width.
func (r *Renderer) Width() int { return r.width }

// Layout builds the weighted layout for freqs.
//
// Words with a count <= 0 carry no weight and are left out. An empty
// result renders as a blank canvas.
func (r *Renderer) Layout(freqs map[string]int64) *Layout {
	weights := make(map[string]int, len(freqs))
	for word, count := range freqs {
		if count > 0 && word != "" {
			weights[word] = int(count)
		}
	}

	l := &Layout{
		Height:     r.height,
		Width:      r.width,
		Weights:    weights,
		background: r.background,
	}
	if len(weights) > 0 {
		l.cloud = wordclouds.NewWordcloud(
			weights,
			wordclouds.FontFile(r.fontFile),
			wordclouds.FontMaxSize(r.maxFont),
			wordclouds.FontMinSize(r.minFont),
			wordclouds.Colors(r.colors),
			wordclouds.BackgroundColor(r.background),
			wordclouds.Height(r.height),
			wordclouds.Width(r.width),
		)
	}
	r.logger.Debug("built layout", slog.Int("words", len(weights)), slog.Int("dropped", len(freqs)-len(weights)))
	return l
}

// Result holds the representation selected by Render. Exactly one of
// Layout, Image and Bytes is set, according to Format.
type Result struct {
	Format Format
	Layout *Layout
	Image  image.Image
	Bytes  []byte
}

// Render builds the layout for freqs and returns it in the given format.
//
// Outputs:
//
//	Result - Populated for format.
//	error - ErrUnsupportedFormat for an unknown format, or a draw/encode error.
func (r *Renderer) Render(freqs map[string]int64, format Format) (Result, error) {
	switch format {
	case FormatRaw, FormatImage, FormatBytes:
	default:
		return Result{}, fmt.Errorf("%w: %v", ErrUnsupportedFormat, format)
	}

	layout := r.Layout(freqs)
	res := Result{Format: format}
	switch format {
	case FormatRaw:
		res.Layout = layout
	case FormatImage:
		img, err := layout.Image()
		if err != nil {
			return Result{}, err
		}
		res.Image = img
	case FormatBytes:
		data, err := layout.PNG()
		if err != nil {
			return Result{}, err
		}
		res.Bytes = data
	}
	return res, nil
}

// RenderString is Render with the format given by name (case-insensitive).
func (r *Renderer) RenderString(freqs map[string]int64, format string) (Result, error) {
	f, err := ParseFormat(format)
	if err != nil {
		return Result{}, err
	}
	return r.Render(freqs, f)
}

// =============================================================================
// Layout
// =============================================================================

// Layout is a sized, weighted word cloud ready to be drawn.
type Layout struct {
	Height  int
	Width   int
	Weights map[string]int

	background color.Color
	cloud      *wordclouds.Wordcloud

	once sync.Once
	img  image.Image
	err  error
}

// Image draws the layout. The first call draws; later calls return the
// same image.
func (l *Layout) Image() (image.Image, error) {
	l.once.Do(func() {
		if l.cloud == nil {
			canvas := image.NewRGBA(image.Rect(0, 0, l.Width, l.Height))
			draw.Draw(canvas, canvas.Bounds(), image.NewUniform(l.background), image.Point{}, draw.Src)
			l.img = canvas
			return
		}
		l.img, l.err = drawCloud(l.cloud)
	})
	return l.img, l.err
}

// drawCloud converts a panic from the layout library into an error.
func drawCloud(cloud *wordclouds.Wordcloud) (img image.Image, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("draw word cloud: %v", p)
		}
	}()
	img = cloud.Draw()
	if img == nil {
		return nil, errors.New("draw word cloud: no image")
	}
	return img, nil
}

// PNG draws the layout and encodes it as PNG.
func (l *Layout) PNG() ([]byte, error) {
	img, err := l.Image()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
