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
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"tryffel.net/go/davplayer/metrics"
	"tryffel.net/go/davplayer/models"
)

const (
	wsWriteTimeout = 10 * time.Second
	wsPongTimeout  = 60 * time.Second
	wsPingInterval = wsPongTimeout * 9 / 10
	// queued messages per client, oldest queued message is dropped when full
	wsSendBuffer = 32
)

// event is pushed to websocket clients.
type event struct {
	// Type is either 'status' or 'catalog'.
	Type    string              `json:"type"`
	Status  *models.AudioStatus `json:"status,omitempty"`
	Catalog *catalogState       `json:"catalog,omitempty"`
}

// catalogState tells clients to reload visible page.
type catalogState struct {
	Total  int         `json:"total"`
	Sort   models.Sort `json:"sort"`
	Filter string      `json:"filter"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// hub keeps connected clients and broadcasts events to all of them.
type hub struct {
	lock    sync.Mutex
	clients map[*wsClient]bool
	closed  bool
}

func newHub() *hub {
	return &hub{clients: map[*wsClient]bool{}}
}

func (h *hub) add(c *wsClient) bool {
	h.lock.Lock()
	defer h.lock.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = true
	metrics.WebsocketClients.Inc()
	return true
}

func (h *hub) remove(c *wsClient) {
	h.lock.Lock()
	defer h.lock.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
		metrics.WebsocketClients.Dec()
	}
}

// broadcast never blocks. If client buffer is full, oldest queued message is dropped to make
// room for newest.
func (h *hub) broadcast(e event) {
	data, err := json.Marshal(e)
	if err != nil {
		logrus.Errorf("marshal websocket event: %v", err)
		return
	}
	h.lock.Lock()
	defer h.lock.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
			continue
		default:
		}
		// writer may have drained buffer meanwhile
		select {
		case <-c.send:
			logrus.Debug("websocket client buffer full, drop oldest event")
		default:
		}
		select {
		case c.send <- data:
		default:
			logrus.Debug("websocket client buffer full, drop event")
		}
	}
}

func (h *hub) count() int {
	h.lock.Lock()
	defer h.lock.Unlock()
	return len(h.clients)
}

func (h *hub) closeAll() {
	h.lock.Lock()
	h.closed = true
	clients := make([]*wsClient, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.lock.Unlock()
	for _, c := range clients {
		h.remove(c)
	}
}

func (s *Server) statusEvent(status models.AudioStatus) event {
	return event{Type: "status", Status: &status}
}

func (s *Server) catalogEvent() event {
	return event{Type: "catalog", Catalog: &catalogState{
		Total:  s.catalog.Len(),
		Sort:   s.catalog.GetSort(),
		Filter: s.catalog.GetFilter(),
	}}
}

func (s *Server) statusChanged(status models.AudioStatus) {
	s.hub.broadcast(s.statusEvent(status))
}

func (s *Server) catalogChanged() {
	s.hub.broadcast(s.catalogEvent())
}

// serveWs upgrades connection and streams events until client disconnects. Current player and catalog state
// is sent first.
func (s *Server) serveWs(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.Warningf("websocket upgrade: %v", err)
		return
	}
	c := &wsClient{conn: conn, send: make(chan []byte, wsSendBuffer)}
	for _, e := range []event{s.statusEvent(s.player.Status()), s.catalogEvent()} {
		data, err := json.Marshal(e)
		if err == nil {
			c.send <- data
		}
	}
	if !s.hub.add(c) {
		_ = conn.Close()
		return
	}
	logrus.Debugf("websocket client connected: %s", r.RemoteAddr)

	go s.writeWs(c)
	s.readWs(c)
}

// readWs discards incoming messages and returns once connection is closed.
func (s *Server) readWs(c *wsClient) {
	defer func() {
		s.hub.remove(c)
		_ = c.conn.Close()
		logrus.Debug("websocket client disconnected")
	}()
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(wsPongTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(wsPongTimeout))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) writeWs(c *wsClient) {
	ticker := time.NewTicker(wsPingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "server stopped"))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
