package services

import (
	"fmt"
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"slam-backend/models"
)

// DB instance
var db *gorm.DB

// InitDatabase - connects with cfg and migrates the console tables
func InitDatabase(cfg Config) error {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return err
	}

	conn, err := OpenDatabase(dialector)
	if err != nil {
		return err
	}
	db = conn

	switch cfg.DBDriver {
	case "mysql":
		log.Printf("✅ MySQL connected: %s@%s:%d/%s", cfg.MySQLUser, cfg.MySQLHost, cfg.MySQLPort, cfg.MySQLDatabase)
	default:
		log.Printf("✅ SQLite opened: %s", cfg.SQLitePath)
	}
	return nil
}

// OpenDatabase - opens and migrates
func OpenDatabase(dialector gorm.Dialector) (*gorm.DB, error) {
	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := conn.AutoMigrate(&models.ConsoleLog{}, &models.SavedConfig{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return conn, nil
}

func dialectorFor(cfg Config) (gorm.Dialector, error) {
	switch cfg.DBDriver {
	case "mysql":
		if cfg.MySQLHost == "" || cfg.MySQLUser == "" || cfg.MySQLPassword == "" || cfg.MySQLDatabase == "" {
			return nil, fmt.Errorf("MySQL requires MYSQL_HOST, MYSQL_USER, MYSQL_PASSWORD, MYSQL_DATABASE")
		}
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			cfg.MySQLUser, cfg.MySQLPassword, cfg.MySQLHost, cfg.MySQLPort, cfg.MySQLDatabase)
		return mysql.Open(dsn), nil
	case "sqlite", "":
		return sqlite.Open(cfg.SQLitePath), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q (mysql|sqlite)", cfg.DBDriver)
	}
}

// GetDB - GORM instance
func GetDB() *gorm.DB {
	return db
}
