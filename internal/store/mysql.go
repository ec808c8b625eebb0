package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-sql-driver/mysql"
)

// MySQLStore keeps one snapshot row per room code.
type MySQLStore struct {
	DB *sql.DB
}

// ConnectMySQL opens, pings and pool-tunes a MySQL connection.
func ConnectMySQL(dsn string) (*sql.DB, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)
	return db, nil
}

// NewMySQLStore wraps db and ensures the snapshot table exists.
func NewMySQLStore(db *sql.DB) (*MySQLStore, error) {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS room_snapshots (
		room_code  VARCHAR(8) PRIMARY KEY,
		state_json MEDIUMTEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`)
	if err != nil {
		return nil, err
	}
	return &MySQLStore{DB: db}, nil
}

func (s *MySQLStore) Save(ctx context.Context, roomCode string, data []byte) error {
	_, err := s.DB.ExecContext(ctx,
		`REPLACE INTO room_snapshots (room_code,state_json,updated_at) VALUES (?,?,?)`,
		roomCode, string(data), time.Now().UTC())
	return err
}

func (s *MySQLStore) Load(ctx context.Context, roomCode string) ([]byte, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT state_json FROM room_snapshots WHERE room_code=?`, roomCode)
	var raw string
	if err := row.Scan(&raw); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return []byte(raw), nil
}

func (s *MySQLStore) Delete(ctx context.Context, roomCode string) error {
	_, err := s.DB.ExecContext(ctx,
		`DELETE FROM room_snapshots WHERE room_code=?`, roomCode)
	return err
}

func (s *MySQLStore) Close() error { return s.DB.Close() }
