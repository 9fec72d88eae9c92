// internal/db/db.go
package db

import (
    "database/sql"
    "fmt"
    "log"
    "os"
    "time"

    _ "github.com/lib/pq"
)

var DB *sql.DB

// Init opens the Postgres pool from DATABASE_URL, or from the individual
// DB_* variables when no URL is set, and fails fast if the DB is unreachable.
func Init() {
    dsn := os.Getenv("DATABASE_URL")
    if dsn == "" {
        dsn = fmt.Sprintf(
            "postgres://%s:%s@%s:%s/%s?sslmode=disable",
            os.Getenv("DB_USER"),
            os.Getenv("DB_PASSWORD"),
            os.Getenv("DB_HOST"),
            os.Getenv("DB_PORT"),
            os.Getenv("DB_NAME"),
        )
    }

    var err error
    DB, err = Open(dsn)
    if err != nil {
        log.Fatalf("failed to connect to DB: %v", err)
    }

    log.Println("✅ Connected to database")
}

// Open connects and verifies a Postgres pool for the given DSN.
func Open(dsn string) (*sql.DB, error) {
    conn, err := sql.Open("postgres", dsn)
    if err != nil {
        return nil, err
    }

    conn.SetMaxIdleConns(10)
    conn.SetMaxOpenConns(50)
    conn.SetConnMaxLifetime(time.Hour)

    if err := conn.Ping(); err != nil {
        return nil, err
    }
    return conn, nil
}
