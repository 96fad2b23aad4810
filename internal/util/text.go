package util

import (
	"encoding/json"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"ticketdash/internal"
)

var reNonAlnum = regexp.MustCompile(`[^a-zA-Z0-9]`)

// FileKey reduces a file name to the key used to pair data documents with
// their companions: extension dropped, ASCII letters and digits only, lowercase.
func FileKey(name string) string {
	base := name
	if ext := filepath.Ext(name); ext != "" && ext != name {
		base = strings.TrimSuffix(name, ext)
	}
	return strings.ToLower(reNonAlnum.ReplaceAllString(base, ""))
}

// ToText renders a decoded JSON value the way it is shown and searched.
func ToText(v any) string {
	switch t := v.(type) {
	case nil:
		return internal.MissingText
	case string:
		return t
	case json.Number:
		if d, err := decimal.NewFromString(t.String()); err == nil {
			return d.String()
		}
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		if t {
			return "True"
		}
		return "False"
	default:
		blob, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(blob)
	}
}

// IsUnset reports whether a coerced value carries no information.
func IsUnset(s string) bool {
	return s == "" || s == internal.MissingText
}

var reUnsafeFileChars = regexp.MustCompile(`[^\p{L}\p{N}._-]+`)

// SafeFileName replaces characters that do not belong in a download name.
func SafeFileName(s string) string {
	return reUnsafeFileChars.ReplaceAllString(s, "_")
}
