package services

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slam-backend/models"
)

func TestTelemetryBus_PublishSubscribe(t *testing.T) {
	bus := NewTelemetryBus()
	odom, unsubOdom := bus.Subscribe("/odom", 4)
	defer unsubOdom()
	other, unsubOther := bus.Subscribe("/imu", 4)
	defer unsubOther()

	sample := models.TelemetrySample{Topic: "/odom", AgentID: "agv-1", Position: models.RawPosition{X: 1}}
	assert.Equal(t, 1, bus.Publish(sample))

	select {
	case got := <-odom:
		assert.Equal(t, sample, got)
	default:
		t.Fatal("sample not delivered")
	}

	select {
	case got := <-other:
		t.Fatalf("unexpected sample on /imu: %+v", got)
	default:
	}
}

func TestTelemetryBus_DropsWhenFull(t *testing.T) {
	bus := NewTelemetryBus()
	_, unsubscribe := bus.Subscribe("/odom", 1)
	defer unsubscribe()

	assert.Equal(t, 1, bus.Publish(models.TelemetrySample{Topic: "/odom"}))
	assert.Equal(t, 0, bus.Publish(models.TelemetrySample{Topic: "/odom"}))
}

func TestTelemetryBus_Unsubscribe(t *testing.T) {
	bus := NewTelemetryBus()
	ch, unsubscribe := bus.Subscribe("/odom", 1)
	require.Equal(t, 1, bus.SubscriberCount("/odom"))

	unsubscribe()
	unsubscribe()
	assert.Equal(t, 0, bus.SubscriberCount("/odom"))
	assert.Equal(t, 0, bus.Publish(models.TelemetrySample{Topic: "/odom"}))

	_, open := <-ch
	assert.False(t, open)
}

func decodeMessage(t *testing.T, raw string) models.WebSocketMessage {
	t.Helper()
	var msg models.WebSocketMessage
	require.NoError(t, json.Unmarshal([]byte(raw), &msg))
	return msg
}

func TestDecodeTelemetry_Flat(t *testing.T) {
	msg := decodeMessage(t, `{"type":"telemetry","topic":"/odom","data":{"x":1.5,"y":-2,"z":0.3},"timestamp":1700000000000}`)

	sample, err := DecodeTelemetry("agv-1", msg)
	require.NoError(t, err)
	assert.Equal(t, "/odom", sample.Topic)
	assert.Equal(t, "agv-1", sample.AgentID)
	assert.Equal(t, models.RawPosition{X: 1.5, Y: -2, Z: 0.3}, sample.Position)
	assert.Equal(t, time.UnixMilli(1700000000000), sample.Received)
}

func TestDecodeTelemetry_NestedPose(t *testing.T) {
	msg := decodeMessage(t, `{"type":"telemetry","topic":"/odom","data":{"pose":{"pose":{"position":{"x":4,"y":5,"z":6}}}}}`)

	sample, err := DecodeTelemetry("agv-2", msg)
	require.NoError(t, err)
	assert.Equal(t, models.RawPosition{X: 4, Y: 5, Z: 6}, sample.Position)
	assert.False(t, sample.Received.IsZero())
}

func TestDecodeTelemetry_Errors(t *testing.T) {
	cases := map[string]string{
		"no topic":    `{"type":"telemetry","data":{"x":1,"y":2}}`,
		"no position": `{"type":"telemetry","topic":"/odom","data":{"speed":3}}`,
		"only x":      `{"type":"telemetry","topic":"/odom","data":{"x":1}}`,
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeTelemetry("agv-1", decodeMessage(t, raw))
			assert.Error(t, err)
		})
	}
}
