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

package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"tryffel.net/go/davplayer/api"
	"tryffel.net/go/davplayer/models"
	"tryffel.net/go/davplayer/player"
)

// trackRow is a single row in track listing.
type trackRow struct {
	// Index is absolute index in view.
	Index        int    `json:"index"`
	Path         string `json:"path"`
	Name         string `json:"name"`
	LastModified string `json:"last_modified"`
	ETag         string `json:"etag"`
	Size         int64  `json:"size"`
	Mime         string `json:"mime,omitempty"`
}

// trackPage is a page of catalog view. Page numbers are 1-based.
type trackPage struct {
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	Total      int         `json:"total"`
	TotalPages int         `json:"total_pages"`
	Sort       models.Sort `json:"sort"`
	Filter     string      `json:"filter"`
	Tracks     []trackRow  `json:"tracks"`
}

type filterRequest struct {
	Text string `json:"text"`
}

type seekRequest struct {
	Fraction *float64 `json:"fraction"`
}

// volumeRequest sets either absolute volume or change to current volume.
type volumeRequest struct {
	Volume *float64 `json:"volume"`
	Delta  *float64 `json:"delta"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.Errorf("encode json response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// writeAPIError maps error to http status code.
func writeAPIError(w http.ResponseWriter, err error) {
	writeError(w, errorStatus(err), err)
}

func errorStatus(err error) int {
	var engineErr *player.EngineConstructionError
	switch {
	case errors.Is(err, models.ErrIndexOutOfRange):
		return http.StatusNotFound
	case errors.Is(err, models.ErrInvalidSort):
		return http.StatusBadRequest
	case errors.Is(err, player.ErrSuperseded), errors.Is(err, player.ErrNoSession):
		return http.StatusConflict
	case errors.As(err, &engineErr):
		return http.StatusUnprocessableEntity
	case api.IsRemoteError(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func decodeBody(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %v", err)
	}
	return nil
}

type healthResponse struct {
	Status        string `json:"status"`
	CatalogLoaded bool   `json:"catalog_loaded"`
	Tracks        int    `json:"tracks"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:        "ok",
		CatalogLoaded: s.catalog.IsLoaded(),
		Tracks:        len(s.catalog.Tracks()),
	})
}

// intParam parses query parameter, returning def if parameter is not set.
func intParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: '%s'", name, raw)
	}
	return val, nil
}

func (s *Server) listTracks(w http.ResponseWriter, r *http.Request) {
	page, err := intParam(r, "page", 1)
	if err == nil && page < 1 {
		err = fmt.Errorf("invalid page: %d", page)
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	size, err := intParam(r, "size", s.opts.PageSize)
	if err == nil && size < 1 {
		err = fmt.Errorf("invalid size: %d", size)
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	paging := models.Paging{Page: page - 1, PageSize: size}
	tracks := s.catalog.ViewAt(paging.Page, paging.PageSize)
	total := s.catalog.Len()
	result := trackPage{
		Page:       page,
		PageSize:   size,
		Total:      total,
		TotalPages: paging.TotalPages(total),
		Sort:       s.catalog.GetSort(),
		Filter:     s.catalog.GetFilter(),
		Tracks:     make([]trackRow, len(tracks)),
	}
	for i, v := range tracks {
		result.Tracks[i] = trackRow{
			Index:        paging.Offset() + i,
			Path:         v.Path,
			Name:         v.Name,
			LastModified: v.LastModifiedString(),
			ETag:         v.ETag,
			Size:         v.Size,
			Mime:         v.Mime,
		}
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) getSort(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.GetSort())
}

func (s *Server) setSort(w http.ResponseWriter, r *http.Request) {
	req := models.Sort{}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	order, err := models.ParseSort(string(req.Key), string(req.Direction))
	if err == nil {
		err = s.catalog.SetSort(order)
	}
	if err != nil {
		writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.catalog.GetSort())
}

func (s *Server) getFilter(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, filterRequest{Text: s.catalog.GetFilter()})
}

func (s *Server) setFilter(w http.ResponseWriter, r *http.Request) {
	req := filterRequest{}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.catalog.SetFilter(req.Text)
	writeJSON(w, http.StatusOK, filterRequest{Text: s.catalog.GetFilter()})
}

func (s *Server) reloadCatalog(w http.ResponseWriter, r *http.Request) {
	tracks, err := s.catalog.Reload(r.Context())
	if err != nil {
		writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"tracks": len(tracks)})
}

func (s *Server) getStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.player.Status())
}

func (s *Server) play(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid index: %v", err))
		return
	}
	err = s.player.Play(s.ctx, index)
	if err != nil {
		writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.player.Status())
}

func (s *Server) pause(w http.ResponseWriter, r *http.Request) {
	s.player.Pause()
	writeJSON(w, http.StatusOK, s.player.Status())
}

func (s *Server) resume(w http.ResponseWriter, r *http.Request) {
	s.player.Resume()
	writeJSON(w, http.StatusOK, s.player.Status())
}

func (s *Server) toggle(w http.ResponseWriter, r *http.Request) {
	s.player.PlayPause()
	writeJSON(w, http.StatusOK, s.player.Status())
}

func (s *Server) stop(w http.ResponseWriter, r *http.Request) {
	s.player.StopMedia()
	writeJSON(w, http.StatusOK, s.player.Status())
}

func (s *Server) next(w http.ResponseWriter, r *http.Request) {
	if err := s.player.Next(s.ctx); err != nil {
		writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.player.Status())
}

func (s *Server) previous(w http.ResponseWriter, r *http.Request) {
	if err := s.player.Previous(s.ctx); err != nil {
		writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.player.Status())
}

func (s *Server) seek(w http.ResponseWriter, r *http.Request) {
	req := seekRequest{}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Fraction == nil {
		writeError(w, http.StatusBadRequest, errors.New("fraction is required"))
		return
	}
	s.player.SeekFraction(*req.Fraction)
	writeJSON(w, http.StatusOK, s.player.Status())
}

func (s *Server) setVolume(w http.ResponseWriter, r *http.Request) {
	req := volumeRequest{}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	switch {
	case req.Volume != nil && req.Delta != nil:
		writeError(w, http.StatusBadRequest, errors.New("volume and delta are mutually exclusive"))
		return
	case req.Volume != nil:
		s.player.SetVolume(models.AudioVolume(*req.Volume))
	case req.Delta != nil:
		s.player.SetVolume(s.player.Status().Volume.Add(*req.Delta))
	default:
		writeError(w, http.StatusBadRequest, errors.New("volume or delta is required"))
		return
	}
	writeJSON(w, http.StatusOK, s.player.Status())
}
