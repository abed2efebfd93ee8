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

package catalog

import (
	"sort"
	"strings"

	"tryffel.net/go/davplayer/models"
)

// buildView filters tracks and sorts the result. Tracks are never modified and returned slice is new.
func buildView(tracks []*models.Track, order models.Sort, filter string) []*models.Track {
	view := filterTracks(tracks, filter)
	sortTracks(view, order)
	return view
}

// filterTracks returns tracks whose name contains text, case-insensitively. Empty text matches every track.
func filterTracks(tracks []*models.Track, text string) []*models.Track {
	out := make([]*models.Track, 0, len(tracks))
	if text == "" {
		return append(out, tracks...)
	}
	needle := strings.ToLower(text)
	for _, v := range tracks {
		if strings.Contains(strings.ToLower(v.Name), needle) {
			out = append(out, v)
		}
	}
	return out
}

// sortTracks sorts tracks in place. Sort is stable in both directions: descending only inverts
// the comparator, so equal tracks keep their relative order.
func sortTracks(tracks []*models.Track, order models.Sort) {
	less := lessFunc(order.Key)
	if order.Direction == models.SortDesc {
		sort.SliceStable(tracks, func(i, j int) bool {
			return less(tracks[j], tracks[i])
		})
	} else {
		sort.SliceStable(tracks, func(i, j int) bool {
			return less(tracks[i], tracks[j])
		})
	}
}

func lessFunc(key models.SortKey) func(a, b *models.Track) bool {
	switch key {
	case models.SortByLastModified:
		return func(a, b *models.Track) bool {
			return a.LastModified.Before(b.LastModified)
		}
	default:
		// ordinal, case-sensitive
		return func(a, b *models.Track) bool {
			return a.Name < b.Name
		}
	}
}

// pageOf returns page from view. Invalid paging and pages past the end return empty slice.
func pageOf(view []*models.Track, paging models.Paging) []*models.Track {
	// checked before Offset, which overflows for huge pages
	if paging.Page < 0 || paging.PageSize <= 0 || paging.Page >= paging.TotalPages(len(view)) {
		return []*models.Track{}
	}
	start := paging.Offset()
	end := start + paging.PageSize
	if end > len(view) {
		end = len(view)
	}
	out := make([]*models.Track, end-start)
	copy(out, view[start:end])
	return out
}
