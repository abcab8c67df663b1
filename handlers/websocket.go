package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"slam-backend/models"
	"slam-backend/services"
)

const (
	clientTypeAGV = "agv"
	clientTypeWeb = "web"
)

// ErrNoAgentConnected - a command had no agent connection to go to
var ErrNoAgentConnected = errors.New("no agent connected")

// wsConn - the part of a websocket connection the hub writes to
type wsConn interface {
	WriteJSON(v interface{}) error
	Close() error
	RemoteAddr() net.Addr
}

// Client - one websocket connection
type Client struct {
	Conn       wsConn
	ClientType string // "agv" | "web"
	AgentID    string // agv only

	writeMu sync.Mutex
}

// write - serialized JSON write; the hub and the connection handler both write
func (c *Client) write(msg models.WebSocketMessage) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.Conn.WriteJSON(msg)
}

// ClientManager - websocket hub
type ClientManager struct {
	clients    map[wsConn]*Client
	broadcast  chan models.WebSocketMessage
	register   chan *Client
	unregister chan wsConn
	mutex      sync.RWMutex
}

// NewClientManager - empty hub, call Start to run it
func NewClientManager() *ClientManager {
	return &ClientManager{
		clients:    make(map[wsConn]*Client),
		broadcast:  make(chan models.WebSocketMessage, 256),
		register:   make(chan *Client),
		unregister: make(chan wsConn),
	}
}

// Manager - global hub
var Manager = NewClientManager()

// Start - hub loop
func (manager *ClientManager) Start() {
	log.Println("[Hub] started")
	for {
		select {
		case client := <-manager.register:
			manager.mutex.Lock()
			manager.clients[client.Conn] = client
			manager.mutex.Unlock()
			log.Printf("[Hub] client registered: %s (%s)", client.ClientType, client.Conn.RemoteAddr())

		case conn := <-manager.unregister:
			manager.remove(conn)

		case message := <-manager.broadcast:
			manager.handleBroadcast(message)
		}
	}
}

func (manager *ClientManager) remove(conn wsConn) {
	manager.mutex.Lock()
	defer manager.mutex.Unlock()

	if client, ok := manager.clients[conn]; ok {
		delete(manager.clients, conn)
		_ = conn.Close()
		log.Printf("[Hub] client unregistered: %s (%s)", client.ClientType, conn.RemoteAddr())
	}
}

// targetClientType - which side of the hub receives msgType ("" drops it)
func targetClientType(msgType string) string {
	switch msgType {
	case models.MessageTypeTelemetry,
		models.MessageTypeStatus,
		models.MessageTypeBoundaryUpdate,
		models.MessageTypeAgentPosition,
		models.MessageTypePathGenerated,
		models.MessageTypePathProgress,
		models.MessageTypeSimulationState,
		models.MessageTypeSystemInfo:
		return clientTypeWeb
	case models.MessageTypeCmdVel,
		models.MessageTypeEmergencyStop:
		return clientTypeAGV
	}
	return ""
}

func (manager *ClientManager) handleBroadcast(message models.WebSocketMessage) {
	target := targetClientType(message.Type)
	if target == "" {
		log.Printf("[Hub] no route for message type %q", message.Type)
		return
	}

	var failed []wsConn

	manager.mutex.RLock()
	for conn, client := range manager.clients {
		if client.ClientType != target {
			continue
		}
		if err := client.write(message); err != nil {
			log.Printf("[Hub] send failed (%s): %v", client.ClientType, err)
			failed = append(failed, conn)
		}
	}
	manager.mutex.RUnlock()

	for _, conn := range failed {
		manager.remove(conn)
	}
}

// BroadcastMessage - queues a console update; drops it when the queue is full.
// Agent commands go through SendCommand.
func (manager *ClientManager) BroadcastMessage(msg models.WebSocketMessage) {
	select {
	case manager.broadcast <- msg:
	default:
		log.Printf("[Hub] broadcast queue full, dropped %s", msg.Type)
	}
}

// SendCommand - writes msg to every agent connection now, bypassing the queue.
// Returns the number of agents reached; an error when none was.
func (manager *ClientManager) SendCommand(msg models.WebSocketMessage) (int, error) {
	manager.mutex.RLock()
	var agents []*Client
	for _, client := range manager.clients {
		if client.ClientType == clientTypeAGV {
			agents = append(agents, client)
		}
	}
	manager.mutex.RUnlock()

	if len(agents) == 0 {
		return 0, fmt.Errorf("%s: %w", msg.Type, ErrNoAgentConnected)
	}

	delivered := 0
	var errs []error
	for _, client := range agents {
		if err := client.write(msg); err != nil {
			log.Printf("[Hub] %s to agent %s failed: %v", msg.Type, client.AgentID, err)
			errs = append(errs, fmt.Errorf("agent %s: %w", client.AgentID, err))
			manager.remove(client.Conn)
			continue
		}
		delivered++
	}

	if delivered == 0 {
		return 0, fmt.Errorf("%s not delivered: %w", msg.Type, errors.Join(errs...))
	}
	return delivered, nil
}

// GetClientCount - connections per client type
func (manager *ClientManager) GetClientCount() map[string]int {
	manager.mutex.RLock()
	defer manager.mutex.RUnlock()

	count := map[string]int{
		clientTypeAGV: 0,
		clientTypeWeb: 0,
	}

	for _, client := range manager.clients {
		count[client.ClientType]++
	}

	return count
}

// HandleAGVWebSocket - agent connection: telemetry in, commands out
func HandleAGVWebSocket(c *websocket.Conn) {
	agentID := c.Query("id", "")
	if agentID == "" {
		agentID = "agv-" + uuid.New().String()[:8]
	}

	client := &Client{
		Conn:       c,
		ClientType: clientTypeAGV,
		AgentID:    agentID,
	}

	Manager.register <- client
	if err := slamService.AgentConnected(agentID); err != nil {
		log.Printf("[Hub] agent register failed: %v", err)
	}

	defer func() {
		slamService.AgentDisconnected(agentID)
		Manager.unregister <- c
	}()

	for {
		var msg models.WebSocketMessage
		if err := c.ReadJSON(&msg); err != nil {
			log.Printf("[Hub] agent %s read error: %v", agentID, err)
			break
		}

		if msg.Timestamp == 0 {
			msg.Timestamp = time.Now().UnixMilli()
		}

		if err := HandleAgentMessage(agentID, msg); err != nil {
			log.Printf("[Hub] agent %s: %v", agentID, err)
		}
	}
}

// HandleAgentMessage - routes one message received from an agent
func HandleAgentMessage(agentID string, msg models.WebSocketMessage) error {
	switch msg.Type {
	case models.MessageTypeTelemetry:
		sample, err := services.DecodeTelemetry(agentID, msg)
		if err != nil {
			return err
		}
		telemetryBus.Publish(sample)
		Manager.BroadcastMessage(msg)

	case models.MessageTypeStatus:
		Manager.BroadcastMessage(msg)

	default:
		return fmt.Errorf("unknown message type: %s", msg.Type)
	}
	return nil
}

// HandleWebClientWebSocket - console connection: state updates out, drag and commands in
func HandleWebClientWebSocket(c *websocket.Conn) {
	client := &Client{
		Conn:       c,
		ClientType: clientTypeWeb,
	}

	Manager.register <- client

	defer func() {
		Manager.unregister <- c
	}()

	for _, msg := range consoleSnapshot() {
		if err := client.write(msg); err != nil {
			log.Printf("[Hub] console snapshot failed: %v", err)
			return
		}
	}

	for {
		var msg models.WebSocketMessage
		if err := c.ReadJSON(&msg); err != nil {
			log.Printf("[Hub] console read error: %v", err)
			break
		}

		if msg.Timestamp == 0 {
			msg.Timestamp = time.Now().UnixMilli()
		}

		if err := HandleConsoleMessage(msg); err != nil {
			log.Printf("[Hub] console: %v", err)
		}
	}
}

// consoleSnapshot - messages bringing a fresh console up to date
func consoleSnapshot() []models.WebSocketMessage {
	now := time.Now()
	state := slamService.SimulationState()
	pos := slamService.AgentPosition()

	return []models.WebSocketMessage{
		{
			Type: models.MessageTypeSystemInfo,
			Data: models.SystemInfo{
				ConnectedClients: Manager.GetClientCount(),
				AgentsConnected:  slamService.Agents().Count(),
				ServerTime:       now.Format(time.RFC3339),
			},
			Timestamp: now.UnixMilli(),
		},
		{Type: models.MessageTypeBoundaryUpdate, Data: slamService.Boundary(), Timestamp: now.UnixMilli()},
		{
			Type:      models.MessageTypeAgentPosition,
			Data:      models.AgentPositionData{Connected: pos != nil, Position: pos},
			Timestamp: now.UnixMilli(),
		},
		{
			Type: models.MessageTypeSimulationState,
			Data: models.SimulationStateData{
				RunID:     state.RunID,
				IsRunning: state.IsRunning,
				Revealed:  len(state.RevealedPoints),
				Total:     state.TotalPoints,
			},
			Timestamp: now.UnixMilli(),
		},
	}
}

// HandleConsoleMessage - routes one message received from a console
func HandleConsoleMessage(msg models.WebSocketMessage) error {
	switch msg.Type {
	case models.MessageTypeDragBegin:
		var data models.DragBeginData
		if err := decodeData(msg.Data, &data); err != nil {
			return err
		}
		if !slamService.BeginDrag(data.Corner) {
			log.Printf("[Hub] drag_begin ignored: %q", data.Corner)
		}

	case models.MessageTypeDragMove:
		var data models.DragMoveData
		if err := decodeData(msg.Data, &data); err != nil {
			return err
		}
		slamService.DragTo(data.X, data.Y)

	case models.MessageTypeDragEnd:
		slamService.EndDrag()

	case models.MessageTypeCmdVel:
		slamService.RecordEvent(services.NewMessageEvent(models.EventCommand, "", msg))
		if _, err := Manager.SendCommand(msg); err != nil {
			return err
		}

	case models.MessageTypeEmergencyStop:
		slamService.RecordEvent(services.NewMessageEvent(models.EventEmergencyStop, "", msg))
		n, err := Manager.SendCommand(msg)
		if err != nil {
			log.Printf("🛑 emergency stop NOT delivered: %v", err)
			return err
		}
		log.Printf("🛑 emergency stop relayed to %d agent(s): %+v", n, msg.Data)

	default:
		return fmt.Errorf("unknown message type: %s", msg.Type)
	}
	return nil
}

// decodeData - generic JSON payload → typed struct
func decodeData(data interface{}, v interface{}) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("re-encode payload: %w", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return nil
}
