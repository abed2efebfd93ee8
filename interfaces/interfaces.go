/*
 * Davplayer is a music player for WebDAV directories.
 * Copyright (C) 2020 Tero Vierimaa
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 */

// Package interfaces contains interfaces that multiple packages use and communicate with.
package interfaces

import (
	"context"

	"tryffel.net/go/davplayer/models"
)

// Playlist resolves tracks against the current catalog view. Indices are only valid until
// sort or filter changes, so callers must not cache them.
type Playlist interface {
	// Len returns number of tracks in view.
	Len() int
	// TrackAt returns track in view index or models.ErrIndexOutOfRange.
	TrackAt(index int) (*models.Track, error)
	// IndexOf returns view index of track with given path, or -1 if track is not visible.
	IndexOf(path string) int
}

// Catalog contains remote track listing and its sorted and filtered view.
type Catalog interface {
	Playlist
	// Refresh loads listing if it is not loaded yet.
	Refresh(ctx context.Context) ([]*models.Track, error)
	// Reload discards cached listing and loads it again.
	Reload(ctx context.Context) ([]*models.Track, error)
	SetSort(sort models.Sort) error
	GetSort() models.Sort
	SetFilter(text string)
	GetFilter() string
	// IsLoaded returns true once listing has succeeded.
	IsLoaded() bool
	// Tracks returns all tracks in listing order, regardless of filter.
	Tracks() []*models.Track
	// View returns copy of whole view.
	View() []*models.Track
	// ViewAt returns zero-based page of view. Pages beyond last page are empty.
	ViewAt(page, pageSize int) []*models.Track
	// AddChangedCallback adds function that is called after view has changed.
	AddChangedCallback(cb func())
}
