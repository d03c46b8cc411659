package db

import (
	"database/sql"
	"fmt"

	"github.com/hpungsan/timecapsule/internal/capsule"
)

// LoadAll returns every persisted capsule in insertion order.
func LoadAll(db *sql.DB) ([]capsule.Capsule, error) {
	rows, err := db.Query(`SELECT capsule_id, message, open_date FROM capsules ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query capsules: %w", err)
	}
	defer rows.Close()

	capsules := []capsule.Capsule{}
	for rows.Next() {
		var c capsule.Capsule
		if err := rows.Scan(&c.ID, &c.Message, &c.OpenDate); err != nil {
			return nil, fmt.Errorf("scan capsule: %w", err)
		}
		capsules = append(capsules, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate capsules: %w", err)
	}
	return capsules, nil
}

// ReplaceAll rewrites the whole table with capsules inside one transaction.
func ReplaceAll(db *sql.DB, capsules []capsule.Capsule) (err error) {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.Exec(`DELETE FROM capsules`); err != nil {
		return fmt.Errorf("clear capsules: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO capsules (seq, capsule_id, message, open_date) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, c := range capsules {
		if _, err = stmt.Exec(i+1, c.ID, c.Message, c.OpenDate); err != nil {
			return fmt.Errorf("insert capsule %s: %w", c.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
