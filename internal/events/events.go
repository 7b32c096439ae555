// Package events reads observation events and documents from JSONL files.
package events

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/cognicore/cooccur/pkg/cooccur/logging"
)

// Event is one JSONL record. Interaction lines carry Observation and Item
// (Count defaults to 1); document lines carry ID and Text.
type Event struct {
	Observation string   `json:"observation"`
	Item        string   `json:"item"`
	Count       *float64 `json:"count,omitempty"`
	ID          string   `json:"id"`
	Text        string   `json:"text"`
}

// IsDocument reports whether the event is a text document.
func (e Event) IsDocument() bool { return e.Text != "" }

// Weight is the interaction count, 1 when absent.
func (e Event) Weight() float64 {
	if e.Count == nil {
		return 1
	}
	return *e.Count
}

// LoadJSONL loads events from a JSONL file, skipping malformed lines with a
// warning on log (which may be nil). A file with no valid events is an error.
func LoadJSONL(path string, log *logging.Logger) ([]Event, error) {
	log = logging.OrNoop(log)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", path, err)
	}

	var items []Event
	lines := strings.Split(string(data), "\n")

	for i, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var ev Event
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			log.Warn("skipping malformed JSON", "line", i+1, "path", path, "error", err)
			continue
		}
		if !ev.IsDocument() && (ev.Observation == "" || ev.Item == "") {
			log.Warn("skipping incomplete event", "line", i+1, "path", path)
			continue
		}
		items = append(items, ev)
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("no valid events found in %s", path)
	}

	return items, nil
}

// LoadFrequencies reads a JSON object mapping keys to counts.
func LoadFrequencies(path string) (map[string]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", path, err)
	}
	var freq map[string]float64
	if err := json.Unmarshal(data, &freq); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return freq, nil
}
