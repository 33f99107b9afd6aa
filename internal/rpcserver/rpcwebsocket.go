// Copyright (c) 2025 The bluecarbond developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpcserver

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/decred/dcrd/dcrjson/v4"
	"github.com/gorilla/websocket"

	"github.com/YadnyeshUbhad/bluecarbond/rpc/jsonrpc/types"
	"github.com/YadnyeshUbhad/bluecarbond/txlog"
)

const (
	// websocketSendBufferSize is the number of elements the send
	// channel can queue before blocking.  Note that this only applies
	// to requests handled directly in the websocket client input
	// handler or the async handler since notifications have their own
	// queuing mechanism independent of the send channel buffer.
	websocketSendBufferSize = 50

	// websocketWriteWait is the time allowed to write a message to a
	// websocket client before it is considered dead.
	websocketWriteWait = 10 * time.Second
)

// wsClient provides an abstraction for handling a websocket client.
// The overall data flow is split into a pair of goroutines so each side
// of the connection can proceed independently.  Notifications are
// queued so a slow client cannot block the notification manager.
type wsClient struct {
	conn       *websocket.Conn
	remoteAddr string
	sendChan   chan []byte
	quit       chan struct{}
	quitOnce   sync.Once
}

// newWsClient returns a new websocket client for the passed connection.
func newWsClient(conn *websocket.Conn) *wsClient {
	return &wsClient{
		conn:       conn,
		remoteAddr: conn.RemoteAddr().String(),
		sendChan:   make(chan []byte, websocketSendBufferSize),
		quit:       make(chan struct{}),
	}
}

// queueMessage queues the passed marshalled notification for delivery.
// Messages to a client which has fallen too far behind are dropped
// along with the client itself.
func (c *wsClient) queueMessage(marshalled []byte) bool {
	select {
	case c.sendChan <- marshalled:
		return true
	case <-c.quit:
		return false
	default:
		// The send buffer is full, so the client is either gone or
		// too slow to keep up.  Disconnect it.
		log.Warnf("Websocket client %s send buffer full, "+
			"disconnecting", c.remoteAddr)
		c.close()
		return false
	}
}

// close marks the client as shut down and closes the underlying
// connection.  It is safe to call multiple times.
func (c *wsClient) close() {
	c.quitOnce.Do(func() {
		close(c.quit)
		c.conn.Close()
	})
}

// outHandler delivers queued messages to the websocket connection.  It
// must be run as a goroutine and exits when the client shuts down.
func (c *wsClient) outHandler() {
	for {
		select {
		case marshalled := <-c.sendChan:
			c.conn.SetWriteDeadline(time.Now().Add(websocketWriteWait))
			err := c.conn.WriteMessage(websocket.TextMessage, marshalled)
			if err != nil {
				c.close()
				return
			}
		case <-c.quit:
			return
		}
	}
}

// inHandler reads from the websocket connection until it errors, which
// also detects disconnects.  Inbound messages are discarded since the
// websocket endpoint only streams notifications.
func (c *wsClient) inHandler() {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			c.close()
			return
		}
	}
}

// wsNotificationManager manages the websocket clients connected to the
// RPC server and broadcasts transaction log notifications to them.
type wsNotificationManager struct {
	server *Server

	mtx     sync.Mutex
	clients map[*wsClient]struct{}

	queueChan chan txlog.Entry
	quit      chan struct{}
	wg        sync.WaitGroup
}

// newWsNotificationManager returns a new notification manager ready for
// use.  Use Start to begin processing asynchronous notifications.
func newWsNotificationManager(s *Server) *wsNotificationManager {
	return &wsNotificationManager{
		server:    s,
		clients:   make(map[*wsClient]struct{}),
		queueChan: make(chan txlog.Entry, websocketSendBufferSize),
		quit:      make(chan struct{}),
	}
}

// notifyLogEntry queues a transaction log entry for broadcast to all
// connected websocket clients.  It is registered as a subscriber with
// the transaction log and therefore must not block.
func (m *wsNotificationManager) notifyLogEntry(entry txlog.Entry) {
	select {
	case m.queueChan <- entry:
	case <-m.quit:
	default:
		log.Warnf("Websocket notification queue full, dropping "+
			"entry %s", entry.ID)
	}
}

// notificationHandler marshals queued entries and fans them out to all
// connected clients.  It must be run as a goroutine.
func (m *wsNotificationManager) notificationHandler() {
	defer m.wg.Done()

	for {
		select {
		case entry := <-m.queueChan:
			ntfn := types.NewLogEntryNtfn(wireEntry(entry))
			marshalled, err := dcrjson.MarshalCmd("1.0", nil, ntfn)
			if err != nil {
				log.Errorf("Failed to marshal log entry "+
					"notification: %v", err)
				continue
			}

			m.mtx.Lock()
			for client := range m.clients {
				if !client.queueMessage(marshalled) {
					delete(m.clients, client)
				}
			}
			m.mtx.Unlock()
		case <-m.quit:
			return
		}
	}
}

// Start begins processing queued notifications.
func (m *wsNotificationManager) Start() {
	m.wg.Add(1)
	go m.notificationHandler()
}

// Shutdown disconnects all clients and stops the manager.
func (m *wsNotificationManager) Shutdown() {
	close(m.quit)

	m.mtx.Lock()
	for client := range m.clients {
		client.close()
		delete(m.clients, client)
	}
	m.mtx.Unlock()
	m.wg.Wait()
}

// addClient registers the passed client with the manager, enforcing the
// configured websocket client limit.  It returns false when the limit
// would be exceeded.
func (m *wsNotificationManager) addClient(client *wsClient) bool {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	if len(m.clients)+1 > m.server.cfg.MaxWebsocketClients {
		return false
	}
	m.clients[client] = struct{}{}
	return true
}

// removeClient deregisters the passed client from the manager.
func (m *wsNotificationManager) removeClient(client *wsClient) {
	m.mtx.Lock()
	delete(m.clients, client)
	m.mtx.Unlock()
}

// upgrader upgrades HTTP connections on the /ws endpoint.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// websocketHandler upgrades the connection and services it until the
// client disconnects or the server shuts down.
func (s *Server) websocketHandler(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Errorf("Failed websocket upgrade for %s: %v",
			r.RemoteAddr, err)
		return
	}

	client := newWsClient(conn)
	if !s.ntfnMgr.addClient(client) {
		log.Infof("Max websocket clients exceeded [%d] - "+
			"disconnecting client %s", s.cfg.MaxWebsocketClients,
			client.remoteAddr)
		client.close()
		return
	}
	log.Infof("New websocket client %s", client.remoteAddr)

	go client.outHandler()
	go func() {
		select {
		case <-ctx.Done():
			client.close()
		case <-client.quit:
		}
	}()

	// Block on the read side so the HTTP handler keeps the connection
	// alive until the client goes away.
	client.inHandler()
	s.ntfnMgr.removeClient(client)
	log.Infof("Disconnected websocket client %s", client.remoteAddr)
}
