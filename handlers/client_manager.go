package handlers

import (
	"sync"
)

// ClientManager manages connected clients
type ClientManager struct {
	clients map[string]*ClientHandler // Map connection ID to ClientHandler
	mutex   sync.RWMutex
}

// NewClientManager creates a new client manager
func NewClientManager() *ClientManager {
	return &ClientManager{
		clients: make(map[string]*ClientHandler),
	}
}

// AddClient adds a client to the manager
func (cm *ClientManager) AddClient(connID string, handler *ClientHandler) {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()
	cm.clients[connID] = handler
}

// RemoveClient removes a client from the manager
func (cm *ClientManager) RemoveClient(connID string) {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()
	delete(cm.clients, connID)
}

// Count returns the number of connected clients
func (cm *ClientManager) Count() int {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()
	return len(cm.clients)
}

// ExecuteOnAllClients executes a function for each connected client
func (cm *ClientManager) ExecuteOnAllClients(action func(*ClientHandler)) {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()

	for _, client := range cm.clients {
		action(client)
	}
}

// CloseAll disconnects every client, used on shutdown
func (cm *ClientManager) CloseAll() {
	cm.ExecuteOnAllClients(func(h *ClientHandler) {
		if h.conn != nil {
			h.conn.Close()
		}
	})
}
