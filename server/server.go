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

// Package server implements http api and websocket status stream for controlling the player remotely.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"tryffel.net/go/davplayer/config"
	"tryffel.net/go/davplayer/interfaces"
	"tryffel.net/go/davplayer/task"
)

// Options configure server.
type Options struct {
	Listen        string
	PageSize      int
	EnableMetrics bool
}

// OptionsFromConfig returns options from config.AppConfig.
func OptionsFromConfig() Options {
	return Options{
		Listen:        config.AppConfig.Server.Listen,
		PageSize:      config.AppConfig.Player.PageSize,
		EnableMetrics: config.AppConfig.Server.EnableMetrics,
	}
}

// Server serves http api. Server implements task.Tasker.
type Server struct {
	task.Task

	catalog interfaces.Catalog
	player  interfaces.Player
	opts    Options

	router *mux.Router
	hub    *hub
	srv    *http.Server

	lock     sync.Mutex
	listener net.Listener

	// ctx is used for playback started over api, so that closed connection doesn't cancel loading track.
	ctx    context.Context
	cancel context.CancelFunc
}

// NewServer creates new server. Server registers callbacks to catalog and player for pushing
// changes to websocket clients.
func NewServer(catalog interfaces.Catalog, player interfaces.Player, opts Options) *Server {
	if opts.PageSize <= 0 {
		opts.PageSize = 17
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		catalog: catalog,
		player:  player,
		opts:    opts,
		hub:     newHub(),
		ctx:     ctx,
		cancel:  cancel,
	}
	s.Name = "Http server"
	s.router = s.routes()
	s.srv = &http.Server{
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}
	s.Task.SetLoop(s.loop)

	player.AddStatusCallback(s.statusChanged)
	catalog.AddChangedCallback(s.catalogChanged)
	return s
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(logRequests, recordMetrics)

	r.HandleFunc("/health", s.health).Methods("GET")
	if s.opts.EnableMetrics {
		r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	}

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/tracks", s.listTracks).Methods("GET")
	api.HandleFunc("/sort", s.getSort).Methods("GET")
	api.HandleFunc("/sort", s.setSort).Methods("PUT", "POST")
	api.HandleFunc("/filter", s.getFilter).Methods("GET")
	api.HandleFunc("/filter", s.setFilter).Methods("PUT", "POST")
	api.HandleFunc("/catalog/reload", s.reloadCatalog).Methods("POST")

	api.HandleFunc("/status", s.getStatus).Methods("GET")
	api.HandleFunc("/player/play/{index:[0-9]+}", s.play).Methods("POST")
	api.HandleFunc("/player/pause", s.pause).Methods("POST")
	api.HandleFunc("/player/resume", s.resume).Methods("POST")
	api.HandleFunc("/player/toggle", s.toggle).Methods("POST")
	api.HandleFunc("/player/stop", s.stop).Methods("POST")
	api.HandleFunc("/player/next", s.next).Methods("POST")
	api.HandleFunc("/player/previous", s.previous).Methods("POST")
	api.HandleFunc("/player/seek", s.seek).Methods("PUT", "POST")
	api.HandleFunc("/player/volume", s.setVolume).Methods("PUT", "POST")

	api.HandleFunc("/ws", s.serveWs).Methods("GET")
	return r
}

// Handler returns http handler with all routes.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start opens listener and starts serving requests.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.opts.Listen)
	if err != nil {
		return fmt.Errorf("listen %s: %v", s.opts.Listen, err)
	}
	s.lock.Lock()
	s.listener = listener
	s.lock.Unlock()

	err = s.Task.Start()
	if err != nil {
		_ = listener.Close()
		return err
	}
	logrus.Infof("Http server listening on %s", listener.Addr())
	return nil
}

// Addr returns listening address, or nil if server has not been started.
func (s *Server) Addr() net.Addr {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

func (s *Server) loop() {
	s.lock.Lock()
	listener := s.listener
	s.lock.Unlock()

	stop := s.StopChan()
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.srv.Serve(listener)
	}()

	select {
	case <-stop:
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			logrus.Errorf("http server: %v", err)
		}
		return
	}

	s.cancel()
	s.hub.closeAll()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(ctx); err != nil {
		logrus.Warningf("http server shutdown: %v", err)
	}
}
