package intake

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Batch file formats.
const (
	FormatJSON  = "json"  // a single JSON array of reports
	FormatJSONL = "jsonl" // one JSON report per line
)

// Batch file entry:
//
//	{"title": "Pothole", "description": "Deep pothole on Elm St",
//	 "location": "123 Elm St", "created_at": "2026-01-15T10:00:00Z"}
//
// "hours_elapsed" may replace "created_at". Text is returned as written;
// callers sanitize what they store.
type entry struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Location     string   `json:"location"`
	CreatedAt    string   `json:"created_at"`
	HoursElapsed *float64 `json:"hours_elapsed"`
}

// LoadFile reads a batch of reports. The format comes from the extension
// (.json, .jsonl, .ndjson) or, failing that, from the first non-space byte.
func LoadFile(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading reports: %w", err)
	}
	return Parse(bytes.NewReader(data), DetectFormat(path, data))
}

// DetectFormat guesses the batch format of a file.
func DetectFormat(path string, data []byte) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl", ".ndjson":
		return FormatJSONL
	case ".json":
		return FormatJSON
	}
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		return FormatJSON
	}
	return FormatJSONL
}

// Parse decodes reports in the given format. Records are neither sanitized
// nor validated; callers decide how to treat incomplete ones.
func Parse(r io.Reader, format string) ([]Record, error) {
	switch format {
	case FormatJSON:
		return parseJSON(r)
	case FormatJSONL:
		return parseJSONL(r)
	default:
		return nil, fmt.Errorf("unknown report format %q", format)
	}
}

func parseJSON(r io.Reader) ([]Record, error) {
	var entries []entry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decoding reports: %w", err)
	}

	records := make([]Record, 0, len(entries))
	for i, e := range entries {
		rec, err := e.record()
		if err != nil {
			return nil, fmt.Errorf("report %d: %w", i+1, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseJSONL(r io.Reader) ([]Record, error) {
	var records []Record

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var e entry
		if err := json.Unmarshal(line, &e); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		rec, err := e.record()
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		records = append(records, rec)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning reports: %w", err)
	}
	return records, nil
}

func (e entry) record() (Record, error) {
	created, err := ParseTimestamp(e.CreatedAt)
	if err != nil {
		return Record{}, err
	}
	return Record{
		Title:        e.Title,
		Description:  e.Description,
		Location:     e.Location,
		CreatedAt:    created,
		HoursElapsed: e.HoursElapsed,
	}, nil
}
