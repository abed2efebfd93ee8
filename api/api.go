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

// Package api contains interface for connecting to remote file store. Subpackages contain implementations.
package api

import (
	"context"

	"tryffel.net/go/davplayer/models"
)

// MediaServer combines minimal interfaces for browsing and playing songs from remote server.
type MediaServer interface {
	Lister
	Fetcher
	RemoteServer
}

// Lister lists audio files in remote directory.
type Lister interface {
	// ListDirectory returns every playable file in configured directory in the order server returned them.
	ListDirectory(ctx context.Context) ([]*models.Track, error)
}

// Fetcher downloads file content.
type Fetcher interface {
	// FetchFile downloads whole file. Implementations must not retry on failure.
	FetchFile(ctx context.Context, path string) ([]byte, error)
}

// RemoteServer contains general methods for getting server connection status
type RemoteServer interface {
	// ConnectionOk returns nil of connection ok, else returns description for failure.
	ConnectionOk(ctx context.Context) error

	// GetId returns unique id for server. If server does not provide one,
	// it can be e.g. hashed from url and user.
	GetId() string
}
