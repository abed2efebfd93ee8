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

// Package catalog keeps track listing of remote directory and its sorted, filtered and paginated view.
// View is the only ordering consumers see, and indices are always indices into current view.
package catalog

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
	"tryffel.net/go/davplayer/api"
	"tryffel.net/go/davplayer/interfaces"
	"tryffel.net/go/davplayer/metrics"
	"tryffel.net/go/davplayer/models"
)

var _ interfaces.Catalog = (*Store)(nil)

// Store implements interfaces.Catalog.
type Store struct {
	lock   *sync.RWMutex
	lister api.Lister
	flight singleflight.Group

	// tracks in order remote store listed them
	tracks []*models.Track
	loaded bool

	order  models.Sort
	filter string

	view []*models.Track
	// path -> index in view
	index map[string]int

	changedCallbacks []func()
}

// NewStore creates empty store that lists tracks with lister.
func NewStore(lister api.Lister, order models.Sort) *Store {
	if err := order.Valid(); err != nil {
		logrus.Warningf("catalog: %v, using default sort", err)
		order = models.DefaultSort
	}
	s := &Store{
		lock:   &sync.RWMutex{},
		lister: lister,
		order:  order,
		view:   []*models.Track{},
		index:  map[string]int{},
	}
	return s
}

// Refresh lists remote directory unless tracks are already loaded, in which case cached tracks are returned.
// Concurrent calls share a single listing request. On error store remains empty and refresh can be retried.
func (s *Store) Refresh(ctx context.Context) ([]*models.Track, error) {
	s.lock.RLock()
	if s.loaded {
		tracks := copyTracks(s.tracks)
		s.lock.RUnlock()
		return tracks, nil
	}
	s.lock.RUnlock()
	return s.load(ctx, false)
}

// Reload lists remote directory again and replaces all tracks. If listing fails, previous tracks are kept.
func (s *Store) Reload(ctx context.Context) ([]*models.Track, error) {
	return s.load(ctx, true)
}

func (s *Store) load(ctx context.Context, force bool) ([]*models.Track, error) {
	key := "refresh"
	if force {
		key = "reload"
	}
	result, err, shared := s.flight.Do(key, func() (interface{}, error) {
		if !force {
			s.lock.RLock()
			loaded := s.loaded
			s.lock.RUnlock()
			if loaded {
				return nil, nil
			}
		}

		logrus.Debug("List remote directory")
		tracks, err := s.lister.ListDirectory(ctx)
		if err != nil {
			metrics.CatalogRefreshTotal.WithLabelValues("error").Inc()
			return nil, api.NewRemoteError("list", "", err)
		}
		tracks = uniqueTracks(tracks)
		metrics.CatalogRefreshTotal.WithLabelValues("ok").Inc()
		metrics.CatalogTracks.Set(float64(len(tracks)))

		s.lock.Lock()
		s.tracks = tracks
		s.loaded = true
		s.rebuild()
		s.lock.Unlock()
		logrus.Infof("Loaded %d tracks", len(tracks))
		s.notifyChanged()
		return tracks, nil
	})
	if shared {
		logrus.Debugf("catalog %s shared with concurrent caller", key)
	}
	if err != nil {
		return nil, fmt.Errorf("refresh catalog: %w", err)
	}
	if result == nil {
		// loaded by a previous flight
		s.lock.RLock()
		defer s.lock.RUnlock()
		return copyTracks(s.tracks), nil
	}
	return copyTracks(result.([]*models.Track)), nil
}

// IsLoaded returns true once listing has succeeded.
func (s *Store) IsLoaded() bool {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.loaded
}

// Tracks returns all tracks in listing order.
func (s *Store) Tracks() []*models.Track {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return copyTracks(s.tracks)
}

// SetSort sets view ordering.
func (s *Store) SetSort(order models.Sort) error {
	if err := order.Valid(); err != nil {
		return err
	}
	s.lock.Lock()
	s.order = order
	s.rebuild()
	s.lock.Unlock()
	logrus.Debugf("Sort catalog by %s %s", order.Key, order.Direction)
	s.notifyChanged()
	return nil
}

func (s *Store) GetSort() models.Sort {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.order
}

// SetFilter sets filter text. Empty text disables filtering.
func (s *Store) SetFilter(text string) {
	s.lock.Lock()
	s.filter = text
	s.rebuild()
	s.lock.Unlock()
	logrus.Debugf("Filter catalog with '%s'", text)
	s.notifyChanged()
}

func (s *Store) GetFilter() string {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.filter
}

// View returns copy of current view.
func (s *Store) View() []*models.Track {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return copyTracks(s.view)
}

// ViewAt returns zero-based page of view.
func (s *Store) ViewAt(page, pageSize int) []*models.Track {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return pageOf(s.view, models.Paging{Page: page, PageSize: pageSize})
}

// Len returns number of tracks in view.
func (s *Store) Len() int {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return len(s.view)
}

// TrackAt returns track in view index.
func (s *Store) TrackAt(index int) (*models.Track, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	if index < 0 || index >= len(s.view) {
		return nil, fmt.Errorf("track %d of %d: %w", index, len(s.view), models.ErrIndexOutOfRange)
	}
	return s.view[index], nil
}

// IndexOf returns index of track with path in view, or -1 if track is not in view.
func (s *Store) IndexOf(path string) int {
	s.lock.RLock()
	defer s.lock.RUnlock()
	if i, ok := s.index[path]; ok {
		return i
	}
	return -1
}

// AddChangedCallback adds function that gets called every time view changes.
func (s *Store) AddChangedCallback(cb func()) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.changedCallbacks = append(s.changedCallbacks, cb)
}

func (s *Store) notifyChanged() {
	s.lock.RLock()
	callbacks := make([]func(), len(s.changedCallbacks))
	copy(callbacks, s.changedCallbacks)
	s.lock.RUnlock()
	for _, v := range callbacks {
		v()
	}
}

// rebuild view. Caller must hold write lock.
func (s *Store) rebuild() {
	s.view = buildView(s.tracks, s.order, s.filter)
	s.index = make(map[string]int, len(s.view))
	for i, v := range s.view {
		s.index[v.Path] = i
	}
}

// uniqueTracks drops nil tracks and tracks whose path was already seen, keeping the first one.
func uniqueTracks(tracks []*models.Track) []*models.Track {
	seen := make(map[string]bool, len(tracks))
	out := make([]*models.Track, 0, len(tracks))
	for _, v := range tracks {
		if v == nil {
			continue
		}
		if seen[v.Path] {
			logrus.Warningf("duplicate track path in listing: %s", v.Path)
			continue
		}
		seen[v.Path] = true
		out = append(out, v)
	}
	return out
}

func copyTracks(tracks []*models.Track) []*models.Track {
	out := make([]*models.Track, len(tracks))
	copy(out, tracks)
	return out
}
