package services

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"slam-backend/models"
)

// DefaultOdomTopic - default agent position topic
const DefaultOdomTopic = "/odom"

// TelemetryBus - in-process publish/subscribe by topic name
type TelemetryBus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[string]map[int]chan models.TelemetrySample
}

// NewTelemetryBus - empty bus
func NewTelemetryBus() *TelemetryBus {
	return &TelemetryBus{
		subs: make(map[string]map[int]chan models.TelemetrySample),
	}
}

// Subscribe - receive channel for topic and its unsubscribe func
func (b *TelemetryBus) Subscribe(topic string, buffer int) (<-chan models.TelemetrySample, func()) {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan models.TelemetrySample, buffer)

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[int]chan models.TelemetrySample)
	}
	b.subs[topic][id] = ch
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs[topic], id)
			if len(b.subs[topic]) == 0 {
				delete(b.subs, topic)
			}
			close(ch)
		})
	}
}

// Publish - fan out sample to topic subscribers without blocking.
// Returns the number of subscribers that accepted the sample.
func (b *TelemetryBus) Publish(sample models.TelemetrySample) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	delivered := 0
	for _, ch := range b.subs[sample.Topic] {
		select {
		case ch <- sample:
			delivered++
		default:
			log.Printf("[Telemetry] subscriber buffer full, dropped sample on %s", sample.Topic)
		}
	}
	return delivered
}

// SubscriberCount - subscribers on topic
func (b *TelemetryBus) SubscriberCount(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[topic])
}

// odometryEnvelope - flat {x,y,z} or nested pose.pose.position
type odometryEnvelope struct {
	X    *float64 `json:"x"`
	Y    *float64 `json:"y"`
	Z    *float64 `json:"z"`
	Pose *struct {
		Pose struct {
			Position models.RawPosition `json:"position"`
		} `json:"pose"`
	} `json:"pose"`
}

// DecodeTelemetry - telemetry message → sample
func DecodeTelemetry(agentID string, msg models.WebSocketMessage) (models.TelemetrySample, error) {
	if msg.Topic == "" {
		return models.TelemetrySample{}, fmt.Errorf("telemetry message without topic")
	}

	raw, err := json.Marshal(msg.Data)
	if err != nil {
		return models.TelemetrySample{}, fmt.Errorf("re-encode telemetry data: %w", err)
	}

	var env odometryEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return models.TelemetrySample{}, fmt.Errorf("decode telemetry data: %w", err)
	}

	var pos models.RawPosition
	switch {
	case env.Pose != nil:
		pos = env.Pose.Pose.Position
	case env.X != nil && env.Y != nil:
		pos.X, pos.Y = *env.X, *env.Y
		if env.Z != nil {
			pos.Z = *env.Z
		}
	default:
		return models.TelemetrySample{}, fmt.Errorf("telemetry data on %s has no position", msg.Topic)
	}

	received := time.Now()
	if msg.Timestamp > 0 {
		received = time.UnixMilli(msg.Timestamp)
	}

	return models.TelemetrySample{
		Topic:    msg.Topic,
		AgentID:  agentID,
		Position: pos,
		Received: received,
	}, nil
}
