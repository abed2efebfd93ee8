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

// Package webdav implements api.MediaServer for WebDAV directories.
package webdav

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/studio-b12/gowebdav"
	"tryffel.net/go/davplayer/api"
	"tryffel.net/go/davplayer/config"
	"tryffel.net/go/davplayer/interfaces"
	"tryffel.net/go/davplayer/models"
)

// ErrFileTooLarge is returned when file is larger than configured fetch limit.
var ErrFileTooLarge = errors.New("file too large")

// davFile contains properties gowebdav returns in addition to os.FileInfo.
type davFile interface {
	os.FileInfo
	Path() string
	ContentType() string
	ETag() string
}

var _ api.MediaServer = (*WebDav)(nil)

// WebDav is a client for single remote directory.
type WebDav struct {
	client    *gowebdav.Client
	url       string
	username  string
	directory string
	limit     int64
}

// NewWebDav creates new client. ClientId is appended to User-Agent, if set.
func NewWebDav(conf *config.WebDav, clientId string) (*WebDav, error) {
	if conf.Url == "" {
		return nil, errors.New("webdav url cannot be empty")
	}
	w := &WebDav{
		client:    gowebdav.NewClient(conf.Url, conf.Username, conf.Password),
		url:       conf.Url,
		username:  conf.Username,
		directory: conf.Directory,
		limit:     conf.FetchLimit(),
	}
	if w.directory == "" {
		w.directory = "/"
	}
	if conf.TimeoutS > 0 {
		w.client.SetTimeout(conf.Timeout())
	}
	userAgent := fmt.Sprintf("%s/%s", config.AppNameLower, config.Version)
	if clientId != "" {
		userAgent += " (" + clientId + ")"
	}
	w.client.SetHeader("User-Agent", userAgent)
	return w, nil
}

// ConnectionOk checks server responds.
func (w *WebDav) ConnectionOk(ctx context.Context) error {
	err := withContext(ctx, func() error {
		return w.client.Connect()
	})
	if err != nil {
		return api.NewRemoteError("connect", w.url, err)
	}
	return nil
}

// GetId returns hash of url, directory and user.
func (w *WebDav) GetId() string {
	h := sha1.New()
	h.Write([]byte(w.url + "\n" + w.directory + "\n" + w.username))
	return hex.EncodeToString(h.Sum(nil))
}

// ListDirectory lists files in directory. Sub directories and files that are not audio are skipped.
func (w *WebDav) ListDirectory(ctx context.Context) ([]*models.Track, error) {
	var files []os.FileInfo
	err := withContext(ctx, func() error {
		var err error
		files, err = w.client.ReadDir(w.directory)
		return err
	})
	if err != nil {
		return nil, api.NewRemoteError("list", w.directory, err)
	}

	tracks := make([]*models.Track, 0, len(files))
	for _, v := range files {
		if v.IsDir() {
			continue
		}
		track := toTrack(w.directory, v)
		if _, err := interfaces.TrackAudioFormat(track); err != nil {
			logrus.Debugf("skip non-audio file: %v", err)
			continue
		}
		tracks = append(tracks, track)
	}
	logrus.Debugf("listed %d files, %d tracks from %s", len(files), len(tracks), w.directory)
	return tracks, nil
}

// FetchFile downloads whole file to memory.
func (w *WebDav) FetchFile(ctx context.Context, filePath string) ([]byte, error) {
	var data []byte
	err := withContext(ctx, func() error {
		stream, err := w.client.ReadStream(filePath)
		if err != nil {
			return err
		}
		defer stream.Close()
		data, err = readLimited(stream, w.limit)
		return err
	})
	if err != nil {
		return nil, api.NewRemoteError("fetch", filePath, err)
	}
	return data, nil
}

// readLimited reads whole reader. If limit > 0 and reader has more than limit bytes, ErrFileTooLarge is returned.
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: limit %d MiB", ErrFileTooLarge, limit/1024/1024)
	}
	return data, nil
}

// withContext runs fn and returns its error, or context error if context is done first.
// Gowebdav does not accept context, so fn keeps running in the background until it returns.
func withContext(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	done := make(chan error, 1)
	go func() {
		done <- fn()
	}()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func toTrack(directory string, info os.FileInfo) *models.Track {
	track := &models.Track{
		Path:         path.Join(directory, info.Name()),
		Name:         info.Name(),
		LastModified: info.ModTime(),
		Size:         info.Size(),
	}
	if file, ok := info.(davFile); ok {
		if file.Path() != "" {
			track.Path = file.Path()
		}
		track.Mime = file.ContentType()
		track.ETag = strings.Trim(file.ETag(), "\"")
	}
	return track
}
