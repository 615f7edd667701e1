package sse

import (
	"fmt"
	"log"
	"sync"
)

// Event represents a Server-Sent Event
type Event struct {
	EventType string `json:"event"`
	Data      string `json:"data"`
}

// Client represents a connected SSE client
type Client struct {
	ID     string
	UserID string
	Events chan Event
}

// Hub manages all SSE client connections
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

// GlobalHub is the singleton SSE Hub instance
var GlobalHub = NewHub()

// NewHub creates a new SSE Hub
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
	}
}

// Register adds a new client to the hub
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.ID] = client
	log.Printf("[SSE] Client registered: id=%s user=%s (total: %d)", client.ID, client.UserID, len(h.clients))
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if client, ok := h.clients[clientID]; ok {
		close(client.Events)
		delete(h.clients, clientID)
		log.Printf("[SSE] Client unregistered: id=%s (total: %d)", clientID, len(h.clients))
	}
}

// Broadcast sends an event to all connected clients
func (h *Hub) Broadcast(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		select {
		case client.Events <- event:
		default:
			log.Printf("[SSE] Client %s buffer full, skipping event", client.ID)
		}
	}
}

// SendToUser sends an event to one user's connections only
func (h *Hub) SendToUser(userID string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		if client.UserID == userID {
			select {
			case client.Events <- event:
			default:
				log.Printf("[SSE] Client %s buffer full, skipping user event", client.ID)
			}
		}
	}
}

// PublishOrderUpdate sends an order change to all connected clients
func PublishOrderUpdate(orderID, status, action string) {
	data := fmt.Sprintf(`{"order_id":"%s","status":"%s","action":"%s"}`, orderID, status, action)
	GlobalHub.Broadcast(Event{
		EventType: "order_update",
		Data:      data,
	})
}

// PublishContractUpdate sends a contract change to all connected clients
func PublishContractUpdate(contractID, status, action string) {
	data := fmt.Sprintf(`{"contract_id":"%s","status":"%s","action":"%s"}`, contractID, status, action)
	GlobalHub.Broadcast(Event{
		EventType: "contract_update",
		Data:      data,
	})
}

// PublishOfferingUpdate sends a listing change to all connected clients
func PublishOfferingUpdate(offeringID, action string) {
	data := fmt.Sprintf(`{"offering_id":"%s","action":"%s"}`, offeringID, action)
	GlobalHub.Broadcast(Event{
		EventType: "offering_update",
		Data:      data,
	})
}

// PublishInventoryAlert tells one owner that an item went low
func PublishInventoryAlert(ownerID, itemID string) {
	data := fmt.Sprintf(`{"item_id":"%s","action":"low_stock"}`, itemID)
	GlobalHub.SendToUser(ownerID, Event{
		EventType: "inventory_alert",
		Data:      data,
	})
}
