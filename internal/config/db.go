package config

import (
	"context"
	"database/sql"
	"log"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

var (
	DB   *sql.DB
	dbMu sync.Mutex
)

// ConnectDB initializes the shared DB connection (idempotent).
func ConnectDB(dsn string) *sql.DB {
	dbMu.Lock()
	defer dbMu.Unlock()

	if DB != nil {
		return DB
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		log.Fatalf("failed to open DB: %v", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(10 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("failed to ping DB: %v", err)
	}

	DB = db
	log.Println("connected to MySQL")
	return DB
}

// EnsureDB pings the shared connection, surfacing connectivity loss.
func EnsureDB() error {
	dbMu.Lock()
	defer dbMu.Unlock()

	if DB == nil {
		return sql.ErrConnDone
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	return DB.PingContext(ctx)
}

func CloseDB() {
	dbMu.Lock()
	defer dbMu.Unlock()

	if DB != nil {
		_ = DB.Close()
		DB = nil
	}
}

// EnsureSchema creates the bookings and users tables when absent.
func EnsureSchema(db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS users (
	id CHAR(36) PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	email VARCHAR(255) NOT NULL,
	phone VARCHAR(100) NOT NULL DEFAULT '',
	password_hash VARCHAR(255) NOT NULL,
	role VARCHAR(20) NOT NULL DEFAULT 'guest',
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	UNIQUE KEY uniq_email (email)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,
		`CREATE TABLE IF NOT EXISTS bookings (
	id CHAR(36) PRIMARY KEY,
	user_id CHAR(36) NOT NULL,
	guest_name VARCHAR(255) NOT NULL DEFAULT '',
	guest_email VARCHAR(255) NOT NULL DEFAULT '',
	guest_phone VARCHAR(100) NOT NULL DEFAULT '',
	check_in DATE NOT NULL,
	check_out DATE NOT NULL,
	guest_count INT NOT NULL,
	total_price BIGINT NOT NULL,
	payment_method VARCHAR(20) NOT NULL DEFAULT '',
	status VARCHAR(30) NOT NULL DEFAULT 'draft',
	payment_deadline DATETIME NULL,
	payment_proof_url VARCHAR(512) NOT NULL DEFAULT '',
	special_requests VARCHAR(500) NOT NULL DEFAULT '',
	cancellation_reason VARCHAR(500) NOT NULL DEFAULT '',
	cancelled_at DATETIME NULL,
	refund_amount BIGINT NULL,
	version BIGINT NOT NULL DEFAULT 1,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	KEY idx_user_created (user_id, created_at),
	KEY idx_dates (check_in, check_out),
	KEY idx_status (status)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,
	}
	for _, stmt := range ddl {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
