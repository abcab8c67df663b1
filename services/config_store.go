package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"slam-backend/models"
)

var ErrConfigNotFound = errors.New("config not found")

// ConfigStore - saved boundary/path selections
type ConfigStore struct {
	db *gorm.DB
}

// NewConfigStore - store on conn
func NewConfigStore(conn *gorm.DB) *ConfigStore {
	return &ConfigStore{db: conn}
}

// Save - persists a new config; an empty name gets a timestamped one
func (s *ConfigStore) Save(name string, b models.Boundary, cfg models.PathConfig) (*models.SavedConfig, error) {
	now := time.Now()
	name = strings.TrimSpace(name)
	if name == "" {
		name = fmt.Sprintf("%s-%s", cfg.Algorithm, now.Format("20060102-150405"))
	}

	rec := &models.SavedConfig{
		ID:          uuid.New().String(),
		Name:        name,
		X:           b.X,
		Y:           b.Y,
		Width:       b.Width,
		Height:      b.Height,
		Algorithm:   string(cfg.Algorithm),
		StartCorner: string(cfg.StartCorner),
		CreatedAt:   now,
	}

	if err := s.db.Create(rec).Error; err != nil {
		return nil, fmt.Errorf("save config: %w", err)
	}
	log.Printf("[Store] config saved: %s (%s)", rec.ID, rec.Name)
	return rec, nil
}

// List - newest first
func (s *ConfigStore) List(limit int) ([]models.SavedConfig, error) {
	var recs []models.SavedConfig
	query := s.db.Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("list configs: %w", err)
	}
	return recs, nil
}

// Get - config by id
func (s *ConfigStore) Get(id string) (*models.SavedConfig, error) {
	var rec models.SavedConfig
	err := s.db.Where("id = ?", id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get config: %w", err)
	}
	return &rec, nil
}

// Delete - removes a config by id
func (s *ConfigStore) Delete(id string) error {
	res := s.db.Where("id = ?", id).Delete(&models.SavedConfig{})
	if res.Error != nil {
		return fmt.Errorf("delete config: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrConfigNotFound, id)
	}
	return nil
}
