package core

import (
	"net/http"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/segmentio/encoding/json"
)

const ReloadPath = "/__greetform_reload"

// ReloadKind tells a dev page how much of itself to rebuild.
type ReloadKind string

const (
	// ReloadPage reloads the whole document.
	ReloadPage ReloadKind = "page"
	// ReloadHandler restarts only the WebAssembly form handler, keeping
	// whatever the user typed into the form.
	ReloadHandler ReloadKind = "handler"
)

type ReloadMessage struct {
	Kind  ReloadKind `json:"kind"`
	Files []string   `json:"files,omitempty"`
}

// ClassifyChange picks the reload a set of changed files needs. Only a batch
// made entirely of .wasm files can skip the page reload.
func ClassifyChange(paths []string) ReloadMessage {
	msg := ReloadMessage{Kind: ReloadHandler}
	seen := map[string]bool{}
	for _, p := range paths {
		if filepath.Ext(p) != ".wasm" {
			msg.Kind = ReloadPage
		}
		base := filepath.Base(p)
		if !seen[base] {
			seen[base] = true
			msg.Files = append(msg.Files, base)
		}
	}
	if len(paths) == 0 {
		msg.Kind = ReloadPage
	}
	sort.Strings(msg.Files)
	return msg
}

type LiveReloaderInterface interface {
	Notify(paths []string)
	Handler(http.ResponseWriter, *http.Request)
	Close()
}

const (
	reloadSendBuffer   = 4
	reloadWriteTimeout = 2 * time.Second
)

type reloadClient struct {
	conn *websocket.Conn
	send chan []byte
}

// LiveReloader pushes ReloadMessages to the dev pages connected on
// ReloadPath. Each page has its own writer; a page that falls behind is
// dropped instead of stalling the others.
type LiveReloader struct {
	mu       sync.Mutex
	clients  map[*reloadClient]struct{}
	upgrader websocket.Upgrader
}

var NewLiveReloader = func() LiveReloaderInterface {
	return &LiveReloader{
		clients: make(map[*reloadClient]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

func (lr *LiveReloader) Handler(w http.ResponseWriter, r *http.Request) {
	conn, err := lr.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	c := &reloadClient{conn: conn, send: make(chan []byte, reloadSendBuffer)}
	lr.mu.Lock()
	lr.clients[c] = struct{}{}
	lr.mu.Unlock()

	go lr.writeLoop(c)
	go lr.readLoop(c)
}

// readLoop only watches for the page going away.
func (lr *LiveReloader) readLoop(c *reloadClient) {
	defer lr.drop(c)
	for {
		if _, _, err := c.conn.NextReader(); err != nil {
			return
		}
	}
}

func (lr *LiveReloader) writeLoop(c *reloadClient) {
	defer c.conn.Close()
	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(reloadWriteTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			lr.drop(c)
			return
		}
	}
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(reloadWriteTimeout))
}

func (lr *LiveReloader) drop(c *reloadClient) {
	lr.mu.Lock()
	defer lr.mu.Unlock()
	if _, ok := lr.clients[c]; ok {
		delete(lr.clients, c)
		close(c.send)
	}
}

// Notify classifies the changed files and broadcasts the result.
func (lr *LiveReloader) Notify(paths []string) {
	lr.Broadcast(ClassifyChange(paths))
}

// Broadcast queues msg for every connected page and returns how many pages
// it was queued for.
func (lr *LiveReloader) Broadcast(msg ReloadMessage) int {
	data, err := json.Marshal(msg)
	if err != nil {
		return 0
	}

	lr.mu.Lock()
	defer lr.mu.Unlock()

	sent := 0
	for c := range lr.clients {
		select {
		case c.send <- data:
			sent++
		default:
			delete(lr.clients, c)
			close(c.send)
		}
	}
	return sent
}

// Clients reports how many pages are connected.
func (lr *LiveReloader) Clients() int {
	lr.mu.Lock()
	defer lr.mu.Unlock()
	return len(lr.clients)
}

// Close disconnects every page.
func (lr *LiveReloader) Close() {
	lr.mu.Lock()
	defer lr.mu.Unlock()
	for c := range lr.clients {
		delete(lr.clients, c)
		close(c.send)
	}
}
