package db

import (
	"bytes"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const (
	sqliteFileName      = "token.sqlite"
	sqliteBusyTimeoutMs = 5000
)

// SQLiteProvider implements IterableProvider on a single key/value table.
type SQLiteProvider struct {
	db *sql.DB
}

// NewSQLiteProvider opens (or creates) <directory>/token.sqlite
func NewSQLiteProvider(directory string) (*SQLiteProvider, error) {
	if err := os.MkdirAll(directory, 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite directory: %w", err)
	}
	path := filepath.Join(filepath.Clean(directory), sqliteFileName)

	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s", path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one connection serializes writers and keeps batches on the same handle
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d", sqliteBusyTimeoutMs)); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS kv (
		k BLOB PRIMARY KEY,
		v BLOB NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create kv table: %w", err)
	}

	return &SQLiteProvider{db: db}, nil
}

func (p *SQLiteProvider) Get(key []byte) ([]byte, error) {
	var value []byte
	err := p.db.QueryRow(`SELECT v FROM kv WHERE k = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if value == nil {
		value = []byte{}
	}
	return value, nil
}

func (p *SQLiteProvider) Put(key, value []byte) error {
	_, err := p.db.Exec(upsertKV, key, nonNil(value))
	return err
}

func (p *SQLiteProvider) Delete(key []byte) error {
	_, err := p.db.Exec(`DELETE FROM kv WHERE k = ?`, key)
	return err
}

func (p *SQLiteProvider) Has(key []byte) (bool, error) {
	var n int
	if err := p.db.QueryRow(`SELECT COUNT(1) FROM kv WHERE k = ?`, key).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (p *SQLiteProvider) Close() error {
	return p.db.Close()
}

func (p *SQLiteProvider) Batch() DatabaseBatch {
	return &SQLiteBatch{db: p.db}
}

// IteratePrefix reads the matching rows first and then runs callback, so callbacks
// may use the provider themselves.
func (p *SQLiteProvider) IteratePrefix(prefix []byte, callback func(key, value []byte) bool) error {
	rows, err := p.db.Query(`SELECT k, v FROM kv WHERE k >= ? ORDER BY k`, nonNil(prefix))
	if err != nil {
		return err
	}
	var keys, values [][]byte
	for rows.Next() {
		var k, v []byte
		if err := rows.Scan(&k, &v); err != nil {
			rows.Close()
			return err
		}
		if !bytes.HasPrefix(k, prefix) {
			break
		}
		keys = append(keys, k)
		values = append(values, v)
	}
	if err := rows.Close(); err != nil {
		return err
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for i := range keys {
		if !callback(keys[i], values[i]) {
			break
		}
	}
	return nil
}

const upsertKV = `INSERT INTO kv (k, v) VALUES (?, ?)
	ON CONFLICT(k) DO UPDATE SET v = excluded.v`

// SQLiteBatch replays its queued operations inside one SQL transaction.
type SQLiteBatch struct {
	db  *sql.DB
	ops []memoryOp
}

func (b *SQLiteBatch) Put(key, value []byte) {
	b.ops = append(b.ops, memoryOp{key: string(key), value: cloneBytes(value)})
}

func (b *SQLiteBatch) Delete(key []byte) {
	b.ops = append(b.ops, memoryOp{key: string(key), delete: true})
}

func (b *SQLiteBatch) Write() error {
	tx, err := b.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	for _, op := range b.ops {
		if op.delete {
			_, err = tx.Exec(`DELETE FROM kv WHERE k = ?`, []byte(op.key))
		} else {
			_, err = tx.Exec(upsertKV, []byte(op.key), nonNil(op.value))
		}
		if err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (b *SQLiteBatch) Reset() {
	b.ops = b.ops[:0]
}

func (b *SQLiteBatch) Close() {
	b.ops = nil
}

// nonNil keeps empty values from being stored as SQL NULL
func nonNil(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return b
}
