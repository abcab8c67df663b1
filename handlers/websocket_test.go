package handlers

import (
	"errors"
	"net"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slam-backend/models"
	"slam-backend/services"
)

// recordingConn - in-memory hub connection
type recordingConn struct {
	mu     sync.Mutex
	sent   []models.WebSocketMessage
	err    error
	closed bool
}

func (c *recordingConn) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, v.(models.WebSocketMessage))
	return nil
}

func (c *recordingConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *recordingConn) RemoteAddr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 9000}
}

func (c *recordingConn) types() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []string
	for _, m := range c.sent {
		out = append(out, m.Type)
	}
	return out
}

// useTestManager - fresh, unstarted hub for the duration of a test
func useTestManager(t *testing.T) *ClientManager {
	t.Helper()
	prev := Manager
	Manager = NewClientManager()
	t.Cleanup(func() { Manager = prev })
	return Manager
}

func addClient(m *ClientManager, clientType, agentID string) *recordingConn {
	conn := &recordingConn{}
	m.mutex.Lock()
	m.clients[conn] = &Client{Conn: conn, ClientType: clientType, AgentID: agentID}
	m.mutex.Unlock()
	return conn
}

func TestTargetClientType(t *testing.T) {
	cases := map[string]string{
		models.MessageTypeTelemetry:       clientTypeWeb,
		models.MessageTypeBoundaryUpdate:  clientTypeWeb,
		models.MessageTypeAgentPosition:   clientTypeWeb,
		models.MessageTypePathGenerated:   clientTypeWeb,
		models.MessageTypePathProgress:    clientTypeWeb,
		models.MessageTypeSimulationState: clientTypeWeb,
		models.MessageTypeSystemInfo:      clientTypeWeb,
		models.MessageTypeCmdVel:          clientTypeAGV,
		models.MessageTypeEmergencyStop:   clientTypeAGV,
		models.MessageTypeDragMove:        "",
		"chat":                            "",
	}

	for msgType, want := range cases {
		t.Run(msgType, func(t *testing.T) {
			assert.Equal(t, want, targetClientType(msgType))
		})
	}
}

func TestHandleConsoleMessage_Drag(t *testing.T) {
	newTestApp(t)

	require.NoError(t, HandleConsoleMessage(models.WebSocketMessage{
		Type: models.MessageTypeDragBegin,
		Data: map[string]interface{}{"corner": "tr"},
	}))
	require.NoError(t, HandleConsoleMessage(models.WebSocketMessage{
		Type: models.MessageTypeDragMove,
		Data: map[string]interface{}{"x": 750.0, "y": 50.0},
	}))
	require.NoError(t, HandleConsoleMessage(models.WebSocketMessage{Type: models.MessageTypeDragEnd}))

	assert.Equal(t, models.Boundary{X: 100, Y: 50, Width: 650, Height: 450}, slamService.Boundary())
	_, active := slamService.ActiveDrag()
	assert.False(t, active)
}

func TestHandleConsoleMessage_Errors(t *testing.T) {
	newTestApp(t)

	err := HandleConsoleMessage(models.WebSocketMessage{Type: models.MessageTypeDragMove, Data: "not an object"})
	assert.Error(t, err)

	err = HandleConsoleMessage(models.WebSocketMessage{Type: "chat"})
	assert.Error(t, err)
}

func TestHandleConsoleMessage_EmergencyStopLogged(t *testing.T) {
	useTestManager(t)
	newTestApp(t)

	// recorded even when no agent is there to receive it
	err := HandleConsoleMessage(models.WebSocketMessage{
		Type: models.MessageTypeEmergencyStop,
		Data: models.EmergencyStopCommand{Active: true, Reason: "operator"},
	})
	assert.ErrorIs(t, err, ErrNoAgentConnected)
	eventLog.Flush()

	logs, err := eventLog.GetLogsByEventType(models.EventEmergencyStop, 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.JSONEq(t, `{"active":true,"reason":"operator"}`, logs[0].DataJSON)
}

func TestHandleAgentMessage_Telemetry(t *testing.T) {
	newTestApp(t)

	ch, unsubscribe := telemetryBus.Subscribe(services.DefaultOdomTopic, 1)
	defer unsubscribe()

	err := HandleAgentMessage("agv-1", models.WebSocketMessage{
		Type:  models.MessageTypeTelemetry,
		Topic: services.DefaultOdomTopic,
		Data:  map[string]interface{}{"x": 1.0, "y": -1.0, "z": 0.2},
	})
	require.NoError(t, err)

	sample := <-ch
	assert.Equal(t, "agv-1", sample.AgentID)
	assert.Equal(t, models.RawPosition{X: 1, Y: -1, Z: 0.2}, sample.Position)
}

func TestHandleAgentMessage_Errors(t *testing.T) {
	newTestApp(t)

	err := HandleAgentMessage("agv-1", models.WebSocketMessage{
		Type: models.MessageTypeTelemetry,
		Data: map[string]interface{}{"x": 1.0, "y": 2.0},
	})
	assert.Error(t, err, "telemetry without topic")

	err = HandleAgentMessage("agv-1", models.WebSocketMessage{Type: "chat"})
	assert.Error(t, err)
}

func TestHandleConsoleMessage_EmergencyStopBypassesFullQueue(t *testing.T) {
	m := useTestManager(t)
	newTestApp(t)

	agent := addClient(m, clientTypeAGV, "agv-1")
	console := addClient(m, clientTypeWeb, "")

	// hub not draining: console updates back up until the queue is full
	for i := 0; i < cap(m.broadcast)+10; i++ {
		m.BroadcastMessage(models.WebSocketMessage{Type: models.MessageTypePathProgress})
	}
	require.Len(t, m.broadcast, cap(m.broadcast))

	require.NoError(t, HandleConsoleMessage(models.WebSocketMessage{
		Type: models.MessageTypeEmergencyStop,
		Data: models.EmergencyStopCommand{Active: true, Reason: "operator"},
	}))
	require.NoError(t, HandleConsoleMessage(models.WebSocketMessage{
		Type: models.MessageTypeCmdVel,
		Data: map[string]interface{}{"linear": 0.0, "angular": 0.0},
	}))

	assert.Equal(t, []string{models.MessageTypeEmergencyStop, models.MessageTypeCmdVel}, agent.types())
	assert.Empty(t, console.types())
}

func TestSendCommand(t *testing.T) {
	m := useTestManager(t)
	msg := models.WebSocketMessage{Type: models.MessageTypeEmergencyStop}

	_, err := m.SendCommand(msg)
	assert.ErrorIs(t, err, ErrNoAgentConnected)

	healthy := addClient(m, clientTypeAGV, "agv-1")
	broken := addClient(m, clientTypeAGV, "agv-2")
	broken.err = errors.New("connection reset")

	n, err := m.SendCommand(msg)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{models.MessageTypeEmergencyStop}, healthy.types())
	assert.True(t, broken.closed)
	assert.Equal(t, 1, m.GetClientCount()[clientTypeAGV])

	healthy.err = errors.New("broken pipe")
	_, err = m.SendCommand(msg)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoAgentConnected)
	assert.Zero(t, m.GetClientCount()[clientTypeAGV])
}
