package services

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"gorm.io/gorm"

	"slam-backend/models"
)

// LogBuffer - console events batched into the database
type LogBuffer struct {
	db        *gorm.DB
	logs      []models.ConsoleLog
	mu        sync.Mutex
	flushSize int           // batch size that triggers an immediate flush
	flushTime time.Duration // periodic flush interval
	stopChan  chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
}

// NewLogBuffer - starts the periodic flusher
func NewLogBuffer(conn *gorm.DB, flushSize int, flushInterval time.Duration) *LogBuffer {
	if flushSize <= 0 {
		flushSize = 50
	}
	if flushInterval <= 0 {
		flushInterval = 10 * time.Second
	}

	lb := &LogBuffer{
		db:        conn,
		logs:      make([]models.ConsoleLog, 0, flushSize*2),
		flushSize: flushSize,
		flushTime: flushInterval,
		stopChan:  make(chan struct{}),
	}

	lb.wg.Add(1)
	go lb.autoFlush()

	log.Printf("✅ event log ready (flushSize: %d, flushInterval: %v)", flushSize, flushInterval)
	return lb
}

// autoFlush - periodic flush, final flush on stop
func (lb *LogBuffer) autoFlush() {
	defer lb.wg.Done()

	ticker := time.NewTicker(lb.flushTime)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			lb.Flush()
		case <-lb.stopChan:
			lb.Flush()
			return
		}
	}
}

// Add - buffers an entry, flushing when the batch is full
func (lb *LogBuffer) Add(entry models.ConsoleLog) {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	lb.mu.Lock()
	lb.logs = append(lb.logs, entry)
	size := len(lb.logs)
	lb.mu.Unlock()

	if size >= lb.flushSize {
		go lb.Flush()
	}
}

// Pending - buffered, not yet flushed entries
func (lb *LogBuffer) Pending() int {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	return len(lb.logs)
}

// Flush - writes every buffered entry
func (lb *LogBuffer) Flush() {
	lb.mu.Lock()
	if len(lb.logs) == 0 {
		lb.mu.Unlock()
		return
	}

	toSave := make([]models.ConsoleLog, len(lb.logs))
	copy(toSave, lb.logs)
	lb.logs = lb.logs[:0]
	lb.mu.Unlock()

	if lb.db == nil {
		return
	}
	if err := lb.db.CreateInBatches(toSave, 100).Error; err != nil {
		log.Printf("❌ event log flush failed: %v", err)
		return
	}
	log.Printf("💾 %d events saved", len(toSave))
}

// Stop - final flush, stops the flusher
func (lb *LogBuffer) Stop() {
	lb.stopOnce.Do(func() {
		close(lb.stopChan)
		lb.wg.Wait()
		log.Println("🛑 event log stopped")
	})
}

// ========================================
// Event constructors
// ========================================

// NewConsoleEvent - entry carrying the boundary and selection at event time
func NewConsoleEvent(eventType string, b models.Boundary, cfg models.PathConfig) models.ConsoleLog {
	return models.ConsoleLog{
		CreatedAt:      time.Now(),
		EventType:      eventType,
		BoundaryX:      b.X,
		BoundaryY:      b.Y,
		BoundaryWidth:  b.Width,
		BoundaryHeight: b.Height,
		Algorithm:      string(cfg.Algorithm),
		StartCorner:    string(cfg.StartCorner),
	}
}

// WithAgent - attaches the agent canvas position
func WithAgent(entry models.ConsoleLog, agent *models.AgentPosition) models.ConsoleLog {
	if agent != nil {
		x, y := agent.X, agent.Y
		entry.AgentX = &x
		entry.AgentY = &y
	}
	return entry
}

// NewMessageEvent - entry for a relayed websocket message
func NewMessageEvent(eventType, agentID string, msg models.WebSocketMessage) models.ConsoleLog {
	data, _ := json.Marshal(msg.Data)
	return models.ConsoleLog{
		CreatedAt: time.Now(),
		EventType: eventType,
		AgentID:   agentID,
		DataJSON:  string(data),
	}
}

// ========================================
// Queries
// ========================================

// GetRecentLogs - newest first
func (lb *LogBuffer) GetRecentLogs(limit int) ([]models.ConsoleLog, error) {
	var logs []models.ConsoleLog
	err := lb.db.Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}

// GetLogsByTimeRange - entries between start and end, newest first
func (lb *LogBuffer) GetLogsByTimeRange(start, end time.Time, limit int) ([]models.ConsoleLog, error) {
	var logs []models.ConsoleLog
	query := lb.db.Where("created_at BETWEEN ? AND ?", start, end)

	if limit > 0 {
		query = query.Limit(limit)
	}

	err := query.Order("created_at DESC").Find(&logs).Error
	return logs, err
}

// GetLogsByEventType - entries of one event type, newest first
func (lb *LogBuffer) GetLogsByEventType(eventType string, limit int) ([]models.ConsoleLog, error) {
	var logs []models.ConsoleLog
	err := lb.db.Where("event_type = ?", eventType).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}

// LogStats - totals over a window
type LogStats struct {
	TotalLogs   int64            `json:"total_logs"`
	EventCounts map[string]int64 `json:"event_counts"`
	TimeRange   string           `json:"time_range"`
}

// GetLogStats - counts over the last `hours`
func (lb *LogBuffer) GetLogStats(hours int) (*LogStats, error) {
	since := time.Now().Add(-time.Duration(hours) * time.Hour)

	var total int64
	if err := lb.db.Model(&models.ConsoleLog{}).
		Where("created_at >= ?", since).
		Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count events: %w", err)
	}

	var eventCounts []struct {
		EventType string
		Count     int64
	}
	if err := lb.db.Model(&models.ConsoleLog{}).
		Select("event_type, COUNT(*) as count").
		Where("created_at >= ?", since).
		Group("event_type").
		Scan(&eventCounts).Error; err != nil {
		return nil, fmt.Errorf("count events by type: %w", err)
	}

	counts := make(map[string]int64, len(eventCounts))
	for _, ec := range eventCounts {
		counts[ec.EventType] = ec.Count
	}

	return &LogStats{
		TotalLogs:   total,
		EventCounts: counts,
		TimeRange:   fmt.Sprintf("Last %d hours", hours),
	}, nil
}
