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

package models

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// ErrInvalidSort occurs if sort key or direction is not supported.
var ErrInvalidSort = errors.New("invalid sort")

// ErrIndexOutOfRange occurs when a view index or page is outside current bounds.
var ErrIndexOutOfRange = errors.New("index out of range")

// SortKey is the track field the catalog view is ordered by.
type SortKey string

const (
	SortByName         SortKey = "displayName"
	SortByLastModified SortKey = "lastModified"
)

// SortDirection is either ascending or descending.
type SortDirection string

const (
	SortAsc  SortDirection = "ascending"
	SortDesc SortDirection = "descending"
)

// Sort describes catalog ordering.
type Sort struct {
	Key       SortKey       `json:"key"`
	Direction SortDirection `json:"direction"`
}

// DefaultSort is newest first.
var DefaultSort = Sort{Key: SortByLastModified, Direction: SortDesc}

// ParseSort parses key and direction. Both are matched case-insensitively and
// accept short forms 'name', 'date', 'asc' and 'desc'.
func ParseSort(key, direction string) (Sort, error) {
	s := Sort{}
	switch strings.ToLower(key) {
	case "displayname", "name", "basename":
		s.Key = SortByName
	case "lastmodified", "lastmod", "date":
		s.Key = SortByLastModified
	default:
		return s, fmt.Errorf("%w: key '%s'", ErrInvalidSort, key)
	}

	switch strings.ToLower(direction) {
	case "", "ascending", "asc":
		s.Direction = SortAsc
	case "descending", "desc":
		s.Direction = SortDesc
	default:
		return s, fmt.Errorf("%w: direction '%s'", ErrInvalidSort, direction)
	}
	return s, nil
}

// Valid returns nil if sort can be used for ordering the catalog.
func (s Sort) Valid() error {
	_, err := ParseSort(string(s.Key), string(s.Direction))
	return err
}

// Paging describes a single page in the catalog view. Page is zero-based.
type Paging struct {
	Page     int
	PageSize int
}

// Offset returns index of first item in page.
func (p Paging) Offset() int {
	return p.Page * p.PageSize
}

// TotalPages returns number of pages needed for total items.
func (p Paging) TotalPages(total int) int {
	if p.PageSize <= 0 || total <= 0 {
		return 0
	}
	return (total-1)/p.PageSize + 1
}

// AudioState is the state of a playback session.
type AudioState int

const (
	// AudioStateStopped, no session is live
	AudioStateStopped AudioState = iota
	// AudioStateLoading, track content is being fetched and decoded
	AudioStateLoading
	// AudioStatePlaying, playing song
	AudioStatePlaying
	// AudioStatePaused, session is live but paused
	AudioStatePaused
	// AudioStateEnded, track reached its end
	AudioStateEnded
)

func (a AudioState) String() string {
	switch a {
	case AudioStateStopped:
		return "stopped"
	case AudioStateLoading:
		return "loading"
	case AudioStatePlaying:
		return "playing"
	case AudioStatePaused:
		return "paused"
	case AudioStateEnded:
		return "ended"
	default:
		return fmt.Sprintf("unknown (%d)", int(a))
	}
}

// MarshalText encodes state with its name.
func (a AudioState) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText decodes state from its name.
func (a *AudioState) UnmarshalText(text []byte) error {
	for state := AudioStateStopped; state <= AudioStateEnded; state++ {
		if state.String() == string(text) {
			*a = state
			return nil
		}
	}
	return fmt.Errorf("unknown audio state: '%s'", text)
}

// AudioAction is the action that caused a status update.
type AudioAction int

const (
	// AudioActionTimeUpdate means timed update and no actual action has been taken
	AudioActionTimeUpdate AudioAction = iota
	// AudioActionStop stops playing or paused player
	AudioActionStop
	// AudioActionPlay starts a new session
	AudioActionPlay
	// AudioActionPlayPause pauses or resumes
	AudioActionPlayPause
	// AudioActionNext plays next song in view
	AudioActionNext
	// AudioActionPrevious plays previous song in view
	AudioActionPrevious
	// AudioActionSeek seeks song
	AudioActionSeek
	// AudioActionSetVolume sets volume
	AudioActionSetVolume
	// AudioActionEnded means track reached its end
	AudioActionEnded
	// AudioActionError means session could not be started
	AudioActionError
)

var audioActionNames = map[AudioAction]string{
	AudioActionTimeUpdate: "time-update",
	AudioActionStop:       "stop",
	AudioActionPlay:       "play",
	AudioActionPlayPause:  "play-pause",
	AudioActionNext:       "next",
	AudioActionPrevious:   "previous",
	AudioActionSeek:       "seek",
	AudioActionSetVolume:  "set-volume",
	AudioActionEnded:      "ended",
	AudioActionError:      "error",
}

func (a AudioAction) String() string {
	if name, ok := audioActionNames[a]; ok {
		return name
	}
	return fmt.Sprintf("unknown (%d)", int(a))
}

// MarshalText encodes action with its name.
func (a AudioAction) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText decodes action from its name.
func (a *AudioAction) UnmarshalText(text []byte) error {
	for action, name := range audioActionNames {
		if name == string(text) {
			*a = action
			return nil
		}
	}
	return fmt.Errorf("unknown audio action: '%s'", text)
}

// AudioVolume is volume level in [0,100]
type AudioVolume float64

const (
	AudioVolumeMax = 100
	AudioVolumeMin = 0
)

// InRange returns true if volume is in allowed range
func (a AudioVolume) InRange() bool {
	return a >= AudioVolumeMin && a <= AudioVolumeMax
}

// Clamp returns volume that's in allowed range.
func (a AudioVolume) Clamp() AudioVolume {
	if math.IsNaN(float64(a)) || a < AudioVolumeMin {
		return AudioVolumeMin
	}
	if a > AudioVolumeMax {
		return AudioVolumeMax
	}
	return a
}

// Add adds value to volume. Negative values are allowed. Always returns volume that's in allowed range.
func (a AudioVolume) Add(vol float64) AudioVolume {
	return (a + AudioVolume(vol)).Clamp()
}

// AudioStatus contains audio player status
type AudioStatus struct {
	State  AudioState  `json:"state"`
	Action AudioAction `json:"action"`

	// Index is the position of Track in current catalog view, -1 if none.
	Index int    `json:"index"`
	Track *Track `json:"track,omitempty"`

	Position time.Duration `json:"position"`
	Duration time.Duration `json:"duration"`
	// Progress is Position / Duration in [0,1].
	Progress float64     `json:"progress"`
	Volume   AudioVolume `json:"volume"`
	Error    string      `json:"error,omitempty"`
}
