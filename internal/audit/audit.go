package audit

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/slinkshare/slink/internal/privilege"
)

const timestampLayout = "2006-01-02T15:04:05.000000Z"

// Entry represents a single audit log entry.
type Entry struct {
	Timestamp string `json:"ts"`       // RFC3339 with microseconds.
	Operator  string `json:"operator"` // user:group of the invoking process.
	Operation string `json:"op"`

	Identifier   string `json:"identifier,omitempty"`
	Filename     string `json:"filename,omitempty"`
	Digest       string `json:"digest,omitempty"`        // For add.
	Recipient    string `json:"recipient,omitempty"`     // For share/unshare.
	Token        string `json:"token,omitempty"`         // For share.
	RemovedCount int    `json:"removed_count,omitempty"` // For remove/clean.
}

// New returns an entry for op with the operator filled in.
func New(op string) Entry {
	return Entry{Operator: privilege.Current().String(), Operation: op}
}

// Log appends entry to the log at path. An empty path disables logging.
func Log(path string, entry Entry) {
	if path == "" {
		return
	}
	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().UTC().Format(timestampLayout)
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return
	}
	defer f.Close()

	_, _ = f.Write(append(data, '\n'))
}

// ReadEntries reads every entry from the log at path. A missing log has no
// entries.
func ReadEntries(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return ParseEntries(data), nil
}

// ParseEntries parses JSON Lines data, skipping malformed lines.
func ParseEntries(data []byte) []Entry {
	var entries []Entry
	for _, line := range bytes.Split(data, []byte{'\n'}) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		var entry Entry
		if err := json.Unmarshal(line, &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries
}
