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

// Package models contains data types shared between catalog, player and remote store.
package models

import (
	"time"
)

// LastModifiedLayout is the layout tracks' modification time is displayed with.
const LastModifiedLayout = "2006-01-02 15:04:05"

// Track is a single remote audio file. Track is never modified after it has been created from a listing.
type Track struct {
	// Path is the remote identifier and unique within a listing.
	Path         string    `json:"path"`
	Name         string    `json:"name"`
	LastModified time.Time `json:"last_modified"`
	ETag         string    `json:"etag"`
	Size         int64     `json:"size"`
	// Mime is content type reported by remote store, if any.
	Mime string `json:"mime"`
}

// LastModifiedString formats modification time in local time.
func (t *Track) LastModifiedString() string {
	if t.LastModified.IsZero() {
		return ""
	}
	return t.LastModified.Local().Format(LastModifiedLayout)
}

func (t *Track) String() string {
	return t.Name
}
