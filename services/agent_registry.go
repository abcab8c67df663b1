package services

import (
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"slam-backend/models"
)

// AgentRegistry - connected agents and their last telemetry
type AgentRegistry struct {
	mu     sync.RWMutex
	agents map[string]*models.AgentInfo
}

// NewAgentRegistry - empty registry
func NewAgentRegistry() *AgentRegistry {
	return &AgentRegistry{
		agents: make(map[string]*models.AgentInfo),
	}
}

// Register - adds an agent connection; a known id gains one more connection
func (r *AgentRegistry) Register(agentID string) (*models.AgentInfo, error) {
	if agentID == "" {
		return nil, fmt.Errorf("agent id is empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if info, exists := r.agents[agentID]; exists {
		info.LastUpdate = now
		info.Connections++
		log.Printf("[Agents] re-registered: %s (%d connections)", agentID, info.Connections)
		return copyInfo(info), nil
	}

	info := &models.AgentInfo{
		ID:           agentID,
		RegisteredAt: now,
		LastUpdate:   now,
		Connections:  1,
	}
	r.agents[agentID] = info
	log.Printf("[Agents] registered: %s", agentID)
	return copyInfo(info), nil
}

// Touch - records a telemetry sample for an agent
func (r *AgentRegistry) Touch(agentID string, pos models.RawPosition) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	info, exists := r.agents[agentID]
	if !exists {
		return fmt.Errorf("agent not found: %s", agentID)
	}
	p := pos
	info.LastPosition = &p
	info.LastUpdate = time.Now()
	info.Samples++
	return nil
}

// Remove - drops one connection of an agent; the agent is unregistered with its last one
func (r *AgentRegistry) Remove(agentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	info, exists := r.agents[agentID]
	if !exists {
		return fmt.Errorf("agent not found: %s", agentID)
	}
	if info.Connections > 1 {
		info.Connections--
		log.Printf("[Agents] connection closed: %s (%d left)", agentID, info.Connections)
		return nil
	}
	delete(r.agents, agentID)
	log.Printf("[Agents] removed: %s", agentID)
	return nil
}

// Get - agent by id
func (r *AgentRegistry) Get(agentID string) (*models.AgentInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	info, exists := r.agents[agentID]
	if !exists {
		return nil, fmt.Errorf("agent not found: %s", agentID)
	}
	return copyInfo(info), nil
}

// All - every agent, sorted by id
func (r *AgentRegistry) All() []models.AgentInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]models.AgentInfo, 0, len(r.agents))
	for _, info := range r.agents {
		result = append(result, *copyInfo(info))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// Count - registered agents
func (r *AgentRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.agents)
}

// IsAlive - heard from within timeout
func (r *AgentRegistry) IsAlive(agentID string, timeout time.Duration) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	info, exists := r.agents[agentID]
	if !exists {
		return false
	}
	return time.Since(info.LastUpdate) < timeout
}

// CleanupOffline - removes agents silent for longer than timeout, returns their ids
func (r *AgentRegistry) CleanupOffline(timeout time.Duration) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed []string
	now := time.Now()
	for id, info := range r.agents {
		if now.Sub(info.LastUpdate) > timeout {
			delete(r.agents, id)
			removed = append(removed, id)
			log.Printf("[Agents] cleanup: %s (offline)", id)
		}
	}
	sort.Strings(removed)
	return removed
}

func copyInfo(info *models.AgentInfo) *models.AgentInfo {
	c := *info
	if info.LastPosition != nil {
		p := *info.LastPosition
		c.LastPosition = &p
	}
	return &c
}
