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

package config

import (
	"time"
)

const (
	AppName      = "Davplayer"
	AppNameLower = "davplayer"
	Version      = "0.3.0"

	// EnvPrefix is prefix for environment variable overrides, e.g. DAVPLAYER_WEBDAV_URL.
	EnvPrefix = "davplayer"
)

// ConfigFile is the config file in use.
var ConfigFile string

// LogFile is the log file in use. Empty if logging to stderr.
var LogFile string

const (
	// AudioSamplingRate is default sampling rate speaker is initialized with.
	AudioSamplingRate = 44100

	// AudioMaxVolume and AudioMinVolume are bounds of volume that user sets.
	AudioMaxVolume = 100
	AudioMinVolume = 0

	// AudioMaxVolumedB and AudioMinVolumedB are bounds of volume for speaker. Linear [0,100] is scaled
	// to these decibels and speaker adjusts volume with AudioVolumeLogBase.
	AudioMaxVolumedB = 0
	AudioMinVolumedB = -8

	AudioVolumeLogBase = 2
)

// AudioBufferPeriod is length of speaker buffer. Longer buffer means less cpu usage and higher latency.
var AudioBufferPeriod = time.Millisecond * 150

// ProgressInterval is how often playback progress is sampled while playing.
var ProgressInterval = time.Millisecond * 100
