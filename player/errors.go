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

package player

import (
	"errors"
	"fmt"

	"tryffel.net/go/davplayer/interfaces"
)

// ErrSuperseded is returned from Play when another Play or Stop started before this one finished loading.
var ErrSuperseded = errors.New("playback superseded")

// ErrNoSession is returned when action needs a live session and there is none.
var ErrNoSession = errors.New("no playback session")

// EngineConstructionError occurs when audio engine rejects track content.
type EngineConstructionError struct {
	Path   string
	Format interfaces.AudioFormat
	Err    error
}

func (e *EngineConstructionError) Error() string {
	if e.Format == interfaces.AudioFormatNil {
		return fmt.Sprintf("construct engine for '%s': %v", e.Path, e.Err)
	}
	return fmt.Sprintf("construct %s engine for '%s': %v", e.Format, e.Path, e.Err)
}

func (e *EngineConstructionError) Unwrap() error {
	return e.Err
}
