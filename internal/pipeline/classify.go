package pipeline

import (
	"strings"

	"ticketdash/internal"
	"ticketdash/internal/config"
	"ticketdash/internal/util"
)

// ClassifyFile sorts a folder entry by the markers in its name. A name
// carrying both markers counts as data.
func ClassifyFile(name string, schema config.Schema) internal.FileKind {
	lower := strings.ToLower(name)
	if m := strings.ToLower(schema.DataMarker); m != "" && strings.Contains(lower, m) {
		return internal.KindData
	}
	if m := strings.ToLower(schema.CompanionMarker); m != "" && strings.Contains(lower, m) {
		return internal.KindCompanion
	}
	return internal.KindOther
}

// CompanionIndex maps a file key to the companion document id. When two
// companions share a key the later one in listing order wins.
type CompanionIndex map[string]string

func BuildCompanionIndex(files []internal.RemoteFile, schema config.Schema) CompanionIndex {
	idx := CompanionIndex{}
	for _, f := range files {
		if ClassifyFile(f.Name, schema) != internal.KindCompanion {
			continue
		}
		idx[util.FileKey(f.Name)] = f.ID
	}
	return idx
}

func (idx CompanionIndex) Lookup(dataName string) (string, bool) {
	id, ok := idx[util.FileKey(dataName)]
	return id, ok
}
