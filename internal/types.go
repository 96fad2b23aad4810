package internal

import "time"

// System attributes stamped on every record by the fetch service.
const (
	FieldSourceName  = "_json_filename"
	FieldCompanionID = "_pdf_file_id"
)

// MissingText is what a null value coerces to; selection lists treat it as unset.
const MissingText = "nan"

type FileKind string

const (
	KindData      FileKind = "data"
	KindCompanion FileKind = "companion"
	KindOther     FileKind = "other"
)

type RemoteFile struct {
	ID       string
	Name     string
	Provider string
}

type DocumentStatus string

const (
	DocumentOK      DocumentStatus = "ok"
	DocumentSkipped DocumentStatus = "skipped"
)

// DocumentResult is the outcome of ingesting one data document.
type DocumentResult struct {
	FileID      string         `json:"fileId"`
	Name        string         `json:"name"`
	Status      DocumentStatus `json:"status"`
	Reason      string         `json:"reason,omitempty"`
	Records     int            `json:"records"`
	CompanionID string         `json:"companionId,omitempty"`
}

type BatchReport struct {
	TraceID    string           `json:"traceId"`
	FolderID   string           `json:"folderId"`
	StartedAt  time.Time        `json:"startedAt"`
	FinishedAt time.Time        `json:"finishedAt"`
	Listed     int              `json:"listed"`
	DataDocs   int              `json:"dataDocs"`
	Companions int              `json:"companions"`
	Records    int              `json:"records"`
	Skipped    int              `json:"skipped"`
	Documents  []DocumentResult `json:"documents"`
}

// Batch is everything pulled from one folder in one pass.
type Batch struct {
	FolderID  string
	FetchedAt time.Time
	Records   []RawRecord
	Report    BatchReport
}

type RunRow struct {
	ID        int
	TraceID   string
	FolderID  string
	Timings   map[string]float64
	Counts    map[string]int
	CreatedAt string
}
