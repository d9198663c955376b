// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package contentaddr derives stable artifact names and URL paths from
// publication identifiers.
//
// The path of a word cloud is a pure function of the publication id and the
// configured base path, never of the rendered content. Re-rendering a
// publication therefore overwrites the previous artifact instead of creating
// a new version:
//
//	contentaddr.DerivePath("vox", "/img/")
//	// "/img/" + md5("vox") + ".png"
//
// Any consumer that resolves artifact URLs must reproduce this package
// exactly, including the base path normalization rules.
package contentaddr

import (
	"crypto/md5"
	"encoding/hex"
	"net/url"
	"strings"
)

// Extension is appended to every hashed artifact name.
const Extension = ".png"

// Hash returns the lowercase hex MD5 digest of the publication id.
func Hash(publicationID string) string {
	sum := md5.Sum([]byte(publicationID))
	return hex.EncodeToString(sum[:])
}

// FileName returns the artifact object name for a publication.
//
// This is also the blob name used by the artifact sinks.
func FileName(publicationID string) string {
	return Hash(publicationID) + Extension
}

// NormalizeBase canonicalizes a base path.
//
// Description:
//
//	Empty input maps to "/". Any other value is split on "/", empty
//	segments are discarded, and the rest is rejoined wrapped in exactly
//	one leading and one trailing slash.
//
// Examples:
//
//	""          -> "/"
//	"img"       -> "/img/"
//	"//img//a/" -> "/img/a/"
//	"///"       -> "/"
func NormalizeBase(base string) string {
	if base == "" || base == "/" {
		return "/"
	}
	var segments []string
	for _, s := range strings.Split(base, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	if len(segments) == 0 {
		return "/"
	}
	return "/" + strings.Join(segments, "/") + "/"
}

// DerivePath returns the artifact path for a publication under base.
//
// Description:
//
//	Resolves the hashed file name against the normalized base using RFC 3986
//	reference resolution. The trailing slash added by NormalizeBase makes the
//	file a child of the last segment instead of a replacement for it.
//
// Inputs:
//
//	publicationID - Stable publication identifier.
//	base - Base URL path; may be empty.
//
// Outputs:
//
//	string - "<normalized base><md5 hex>.png"
func DerivePath(publicationID, base string) string {
	baseURL := &url.URL{Path: NormalizeBase(base)}
	ref := &url.URL{Path: FileName(publicationID)}
	return baseURL.ResolveReference(ref).Path
}
