package db

import (
	"database/sql"
	"fmt"
	"log"
)

type QueryRower interface {
	QueryRow(query string, args ...any) *sql.Row
}

func HasTable(q QueryRower, table string) bool {
	var name sql.NullString
	err := q.QueryRow(`
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = DATABASE()
		  AND table_name = ?
		LIMIT 1
	`, table).Scan(&name)

	if err != nil {
		return false
	}
	return name.Valid && name.String != ""
}

var schemaTables = []string{"offices", "employees", "destinations", "trips", "clients", "reserved_seats"}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS offices (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		location VARCHAR(255) NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS employees (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		username VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		office_id BIGINT NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS destinations (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS trips (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		destination_id BIGINT NOT NULL,
		departure_date VARCHAR(10) NOT NULL,
		departure_time VARCHAR(5) NOT NULL,
		available_seats INT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS clients (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS reserved_seats (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		trip_id BIGINT NOT NULL,
		employee_id BIGINT NOT NULL,
		seat_number INT NOT NULL,
		client_id BIGINT NOT NULL,
		UNIQUE KEY uniq_trip_seat (trip_id, seat_number)
	)`,
}

// EnsureSchema creates any missing tables. Existing tables are left alone.
func EnsureSchema(db *sql.DB) error {
	for i, stmt := range schemaStatements {
		if !HasTable(db, schemaTables[i]) {
			log.Printf("creating table %s", schemaTables[i])
		}
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
