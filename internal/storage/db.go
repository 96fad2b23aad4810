package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"ticketdash/internal"
)

// Metadata keys.
const (
	MetaLastFetchPrefix = "last_fetch:"
	MetaLastSnapshot    = "last_snapshot_folder"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS documents (
  fileId TEXT PRIMARY KEY,
  provider TEXT NOT NULL,
  folderId TEXT NOT NULL,
  name TEXT NOT NULL,
  kind TEXT NOT NULL,
  hash TEXT,
  rawRef TEXT,
  status TEXT NOT NULL,
  reason TEXT,
  records INTEGER NOT NULL DEFAULT 0,
  fetchedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_documents_folder ON documents(folderId);

CREATE TABLE IF NOT EXISTS records (
  folderId TEXT NOT NULL,
  seq INTEGER NOT NULL,
  sourceName TEXT,
  companionId TEXT,
  rawJson TEXT NOT NULL,
  PRIMARY KEY(folderId, seq)
);

CREATE TABLE IF NOT EXISTS runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  traceId TEXT NOT NULL,
  folderId TEXT NOT NULL,
  timingsJson TEXT NOT NULL,
  countsJson TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

// DocumentRow is one ledger entry for a file seen in a folder.
type DocumentRow struct {
	FileID   string
	Provider string
	FolderID string
	Name     string
	Kind     internal.FileKind
	Hash     string
	RawRef   string
	Status   internal.DocumentStatus
	Reason   string
	Records  int
}

func (d *DB) UpsertDocument(row DocumentRow) error {
	_, err := d.conn.Exec(`
INSERT INTO documents (fileId, provider, folderId, name, kind, hash, rawRef, status, reason, records)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(fileId) DO UPDATE SET
  provider=excluded.provider,
  folderId=excluded.folderId,
  name=excluded.name,
  kind=excluded.kind,
  hash=excluded.hash,
  rawRef=excluded.rawRef,
  status=excluded.status,
  reason=excluded.reason,
  records=excluded.records,
  fetchedAt=CURRENT_TIMESTAMP
`, row.FileID, row.Provider, row.FolderID, row.Name, string(row.Kind), row.Hash, row.RawRef, string(row.Status), row.Reason, row.Records)
	return err
}

func (d *DB) GetDocument(fileID string) (*DocumentRow, error) {
	var row DocumentRow
	var kind, status string
	var hash, rawRef, reason sql.NullString
	err := d.conn.QueryRow(`
SELECT fileId, provider, folderId, name, kind, hash, rawRef, status, reason, records
FROM documents WHERE fileId = ?
`, fileID).Scan(&row.FileID, &row.Provider, &row.FolderID, &row.Name, &kind, &hash, &rawRef, &status, &reason, &row.Records)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	row.Kind = internal.FileKind(kind)
	row.Status = internal.DocumentStatus(status)
	row.Hash, row.RawRef, row.Reason = hash.String, rawRef.String, reason.String
	return &row, nil
}

// ReplaceSnapshot stores records as the latest snapshot of folderID,
// dropping whatever was stored before.
func (d *DB) ReplaceSnapshot(folderID string, records []internal.RawRecord) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM records WHERE folderId = ?`, folderID); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
INSERT INTO records (folderId, seq, sourceName, companionId, rawJson)
VALUES (?, ?, ?, ?, ?)
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, rec := range records {
		raw, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		if _, err := stmt.Exec(folderID, i, rec.SourceName(), rec.CompanionID(), string(raw)); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(`
INSERT INTO metadata (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updatedAt = CURRENT_TIMESTAMP
`, MetaLastSnapshot, folderID); err != nil {
		return err
	}

	return tx.Commit()
}

// ListSnapshot returns the stored records of folderID in their original order.
func (d *DB) ListSnapshot(folderID string) ([]internal.RawRecord, error) {
	rows, err := d.conn.Query(`SELECT rawJson FROM records WHERE folderId = ? ORDER BY seq ASC`, folderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.RawRecord
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var rec internal.RawRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// InsertRun records a batch report as a run row.
func (d *DB) InsertRun(report internal.BatchReport) error {
	timings := map[string]float64{
		"fetch_ms": float64(report.FinishedAt.Sub(report.StartedAt).Milliseconds()),
	}
	counts := map[string]int{
		"listed":     report.Listed,
		"data_docs":  report.DataDocs,
		"companions": report.Companions,
		"records":    report.Records,
		"skipped":    report.Skipped,
	}
	timingsJSON, _ := json.Marshal(timings)
	countsJSON, _ := json.Marshal(counts)
	_, err := d.conn.Exec(`INSERT INTO runs (traceId, folderId, timingsJson, countsJson) VALUES (?, ?, ?, ?)`,
		report.TraceID, report.FolderID, string(timingsJSON), string(countsJSON))
	return err
}

// ListRuns returns the most recent runs first.
func (d *DB) ListRuns(limit int) ([]internal.RunRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := d.conn.Query(`
SELECT id, traceId, folderId, timingsJson, countsJson, createdAt
FROM runs ORDER BY id DESC LIMIT ?
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.RunRow
	for rows.Next() {
		var row internal.RunRow
		var timingsJSON, countsJSON string
		if err := rows.Scan(&row.ID, &row.TraceID, &row.FolderID, &timingsJSON, &countsJSON, &row.CreatedAt); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(timingsJSON), &row.Timings)
		_ = json.Unmarshal([]byte(countsJSON), &row.Counts)
		out = append(out, row)
	}
	return out, rows.Err()
}

func (d *DB) SetMetadata(key, value string) error {
	_, err := d.conn.Exec(`
INSERT INTO metadata (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updatedAt = CURRENT_TIMESTAMP
`, key, value)
	return err
}

func (d *DB) GetMetadata(key string) (*string, error) {
	var value string
	err := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}

// RecordFetch stores the time folderID was last loaded from the remote store.
func (d *DB) RecordFetch(folderID string, at time.Time) error {
	return d.SetMetadata(MetaLastFetchPrefix+folderID, at.UTC().Format(time.RFC3339))
}

func (d *DB) LastFetch(folderID string) (time.Time, bool, error) {
	v, err := d.GetMetadata(MetaLastFetchPrefix + folderID)
	if err != nil || v == nil {
		return time.Time{}, false, err
	}
	t, err := time.Parse(time.RFC3339, *v)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}
