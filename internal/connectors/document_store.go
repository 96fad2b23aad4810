package connectors

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"

	"ticketdash/internal"
	"ticketdash/internal/storage"
)

// DocumentStore keeps a content-addressed copy of every downloaded data
// document and a ledger row per document.
type DocumentStore struct {
	db     *storage.DB
	rawDir string
}

func NewDocumentStore(db *storage.DB, rawDir string) *DocumentStore {
	return &DocumentStore{db: db, rawDir: rawDir}
}

func (s *DocumentStore) Store(folderID string, file internal.RemoteFile, content []byte, result internal.DocumentResult) error {
	row := storage.DocumentRow{
		FileID:   file.ID,
		Provider: file.Provider,
		FolderID: folderID,
		Name:     file.Name,
		Kind:     internal.KindData,
		Status:   result.Status,
		Reason:   result.Reason,
		Records:  result.Records,
	}

	if content != nil && s.rawDir != "" {
		hashBytes := sha256.Sum256(content)
		row.Hash = hex.EncodeToString(hashBytes[:])

		if err := os.MkdirAll(s.rawDir, 0o755); err != nil {
			return err
		}
		rawPath := filepath.Join(s.rawDir, row.Hash+".json")
		if _, err := os.Stat(rawPath); os.IsNotExist(err) {
			if err := os.WriteFile(rawPath, content, 0o644); err != nil {
				return err
			}
		}
		row.RawRef = rawPath
	}

	if s.db == nil {
		return nil
	}
	return s.db.UpsertDocument(row)
}
