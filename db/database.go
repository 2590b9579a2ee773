package db

import (
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql" // MySQL driver

	"tunescout/config"
	"tunescout/logger"
)

var DB *sql.DB

// ConnectDB establishes a connection to the database.
func ConnectDB(cfg *config.Config) error {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

	var err error
	DB, err = sql.Open("mysql", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	if err = DB.Ping(); err != nil {
		DB.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("connected to the database")
	return nil
}

// CloseDB closes the raw connection if one was opened.
func CloseDB() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}

// InitDB creates the schema for tables managed with raw SQL. Tables
// owned by GORM models are migrated separately.
func InitDB() error {
	if err := createPlaylistsTable(); err != nil {
		return err
	}
	logger.Info("database schema initialized")
	return nil
}

func createPlaylistsTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS playlists (
		id INT AUTO_INCREMENT PRIMARY KEY,
		public_id VARCHAR(36) NOT NULL UNIQUE,
		playlist_name VARCHAR(255) NOT NULL,
		description TEXT,
		participant_id VARCHAR(100),
		search_condition VARCHAR(20) NOT NULL,
		query_input TEXT,
		tracks JSON NOT NULL,
		track_count INT NOT NULL DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		INDEX idx_participant (participant_id),
		INDEX idx_condition (search_condition)
	);
	`
	if _, err := DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create playlists table: %w", err)
	}
	return nil
}
