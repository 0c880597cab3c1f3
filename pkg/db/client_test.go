package db

import (
	"context"
	"errors"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openTestConn(t *testing.T) *Client {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	return &Client{conn: conn}
}

func TestWithTxCommits(t *testing.T) {
	client := openTestConn(t)
	if err := client.DB().Exec(`CREATE TABLE things (id INTEGER PRIMARY KEY, name TEXT)`).Error; err != nil {
		t.Fatalf("create table: %v", err)
	}

	err := client.WithTx(context.Background(), func(tx *gorm.DB) error {
		return tx.Exec(`INSERT INTO things (name) VALUES ('a')`).Error
	})
	if err != nil {
		t.Fatalf("WithTx: %v", err)
	}

	var count int64
	client.DB().Raw(`SELECT COUNT(*) FROM things`).Scan(&count)
	if count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}
}

func TestWithTxRollsBackOnError(t *testing.T) {
	client := openTestConn(t)
	if err := client.DB().Exec(`CREATE TABLE things (id INTEGER PRIMARY KEY, name TEXT)`).Error; err != nil {
		t.Fatalf("create table: %v", err)
	}

	boom := errors.New("boom")
	err := client.WithTx(context.Background(), func(tx *gorm.DB) error {
		if err := tx.Exec(`INSERT INTO things (name) VALUES ('a')`).Error; err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	var count int64
	client.DB().Raw(`SELECT COUNT(*) FROM things`).Scan(&count)
	if count != 0 {
		t.Fatalf("count = %d, want 0 after rollback", count)
	}
}

func TestIsUniqueViolationTextFallback(t *testing.T) {
	err := errors.New(`UNIQUE constraint failed: wallet_transactions.account_id, wallet_transactions.reference`)
	if !IsUniqueViolation(err, "") {
		t.Fatal("sqlite unique violation should be detected")
	}
	if IsUniqueViolation(nil, "") {
		t.Fatal("nil should not match")
	}
}
