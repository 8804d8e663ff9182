package database

import (
	"database/sql"
	"time"

	_ "github.com/lib/pq"

	"github.com/haulport/logistics-backend/pkg/config"
)

// NewSQLDB opens a database/sql handle for the reporting read path
func NewSQLDB(cfg *config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
