package events

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"reachout-backend/models"
)

// Event types pushed to connected dashboard clients.
const (
	EventMatchUpdate        = "match_update"
	EventNotificationUpdate = "notification_update"
	EventRequestUpdate      = "request_update"
	EventSweepReport        = "sweep_report"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub holds every connected dashboard client.
type Hub struct {
	clients map[*websocket.Conn]bool
	mutex   sync.Mutex
}

var hub = Hub{
	clients: make(map[*websocket.Conn]bool),
}

// RegisterClient adds a connection to the broadcast set.
func RegisterClient(conn *websocket.Conn) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	hub.clients[conn] = true
}

// UnregisterClient removes and closes a connection.
func UnregisterClient(conn *websocket.Conn) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	delete(hub.clients, conn)
	conn.Close()
}

// BroadcastMatchUpdate pushes a match create/update to all clients.
func BroadcastMatchUpdate(match models.DonorMatch) {
	broadcast(Message{Event: EventMatchUpdate, Data: match})
}

// BroadcastNotificationUpdate pushes a recorded dispatch attempt.
func BroadcastNotificationUpdate(notif models.Notification) {
	broadcast(Message{Event: EventNotificationUpdate, Data: notif})
}

// BroadcastRequestUpdate pushes a request status change.
func BroadcastRequestUpdate(req models.BloodRequest) {
	broadcast(Message{Event: EventRequestUpdate, Data: req})
}

// BroadcastSweepReport pushes the outcome of an unmatched-request sweep.
func BroadcastSweepReport(report interface{}) {
	broadcast(Message{Event: EventSweepReport, Data: report})
}

func broadcast(msg Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}

	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	for conn := range hub.clients {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			delete(hub.clients, conn)
			conn.Close()
		}
	}
}
