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

// Package metrics contains prometheus collectors for catalog, playback and http api.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Catalog metrics
var (
	CatalogRefreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "davplayer_catalog_refresh_total",
			Help: "Total number of remote directory listings",
		},
		[]string{"status"},
	)

	CatalogTracks = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "davplayer_catalog_tracks",
			Help: "Number of tracks in latest listing",
		},
	)
)

// Playback metrics
var (
	PlaybackSessionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "davplayer_playback_sessions_total",
			Help: "Total number of playback sessions by outcome",
		},
		[]string{"outcome"}, // "started", "superseded", "fetch_error", "engine_error"
	)

	TrackFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "davplayer_track_fetch_duration_seconds",
			Help:    "Time to download track content",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	TrackFetchBytes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "davplayer_track_fetch_bytes_total",
			Help: "Total bytes of track content downloaded",
		},
	)

	AutoAdvanceSkipsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "davplayer_auto_advance_skips_total",
			Help: "Tracks skipped by auto-advance because they could not be played",
		},
	)
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "davplayer_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "davplayer_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	WebsocketClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "davplayer_websocket_clients",
			Help: "Number of connected status websocket clients",
		},
	)
)
