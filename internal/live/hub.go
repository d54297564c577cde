// Package live pushes tournament snapshots to connected websocket clients.
package live

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
)

type Message struct {
	Type    string `json:"type"`
	Room    string `json:"room,omitempty"`
	Payload any    `json:"payload"`
}

// Hub tracks clients by room, one room per tournament
type Hub struct {
	rooms   map[string]map[*Client]bool
	stopped bool
	mu      sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		rooms: make(map[string]map[*Client]bool),
	}
}

// Run blocks until ctx is done, then disconnects every client.
// The hub accepts no new clients afterwards.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()
	h.closeAll()
}

// Register adds client to its room. It reports false once the hub has stopped.
func (h *Hub) Register(client *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped {
		return false
	}
	if _, ok := h.rooms[client.Room]; !ok {
		h.rooms[client.Room] = make(map[*Client]bool)
	}
	h.rooms[client.Room][client] = true
	slog.Debug("live client joined", "room", client.Room, "clients", len(h.rooms[client.Room]))
	return true
}

// Unregister removes client and closes its send channel. Unknown clients are ignored.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	clients, ok := h.rooms[client.Room]
	if !ok || !clients[client] {
		return
	}
	client.close()
	delete(clients, client)
	if len(clients) == 0 {
		delete(h.rooms, client.Room)
	}
	slog.Debug("live client left", "room", client.Room, "clients", len(clients))
}

// BroadcastToRoom sends message to every client in room. Slow clients miss it.
func (h *Hub) BroadcastToRoom(room string, message any) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients, ok := h.rooms[room]
	if !ok {
		return
	}

	data, err := json.Marshal(message)
	if err != nil {
		slog.Error("failed to encode live message", "room", room, "error", err)
		return
	}

	for client := range clients {
		if !client.trySend(data) {
			slog.Warn("live client send buffer full, dropping message", "room", room)
		}
	}
}

// RoomSize is the number of clients currently in room
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stopped = true
	for room, clients := range h.rooms {
		for client := range clients {
			client.close()
		}
		delete(h.rooms, room)
	}
}
