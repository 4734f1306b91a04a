package storage

import (
	"context"
	"database/sql"
	"fmt"

	// import the SQLite driver to register it with the database/sql package.
	_ "github.com/mattn/go-sqlite3"
	// import the PostgreSQL driver to register it with the database/sql package.
	_ "github.com/lib/pq"
)

const createScoresTable = `CREATE TABLE IF NOT EXISTS scores (
	name   TEXT PRIMARY KEY,
	x_wins INTEGER NOT NULL DEFAULT 0,
	o_wins INTEGER NOT NULL DEFAULT 0,
	draws  INTEGER NOT NULL DEFAULT 0
)`

type Storage struct {
	Connection *sql.DB
}

func NewSQLiteStorage(path string) (*Storage, error) {
	return open("sqlite3", path)
}

func NewPostgresStorage(dsn string) (*Storage, error) {
	return open("postgres", dsn)
}

func open(driver, dsn string) (*Storage, error) {
	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("can't open database: %w", err)
	}

	if err = conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("can't connect to database: %w", err)
	}

	return &Storage{Connection: conn}, nil
}

func (that *Storage) Init(ctx context.Context) error {
	_, err := that.Connection.ExecContext(ctx, createScoresTable)
	if err != nil {
		return fmt.Errorf("can't create table: %w", err)
	}

	return nil
}

func (that *Storage) Close() error {
	if err := that.Connection.Close(); err != nil {
		return fmt.Errorf("can't close database: %w", err)
	}

	return nil
}
