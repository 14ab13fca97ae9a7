package questions

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"golang.org/x/mod/semver"
)

// supportedMajor is the only bank format major version this build reads.
const supportedMajor = "v1"

//go:embed default.json
var defaultBank []byte

type fileBank struct {
	Version   string         `json:"version"`
	Questions []fileQuestion `json:"questions"`
}

type fileQuestion struct {
	ID      json.RawMessage `json:"id"`
	Text    string          `json:"text"`
	Options []string        `json:"options"`
}

// Default returns the bank compiled into the binary.
func Default() (*Bank, error) {
	return Parse(defaultBank)
}

// Load reads and validates the bank at path. An empty path selects the
// built-in bank.
func Load(path string) (*Bank, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read question bank: %w", err)
	}
	b, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("question bank %s: %w", path, err)
	}
	return b, nil
}

// Parse validates raw JSON against the bank schema and builds a Bank.
func Parse(data []byte) (*Bank, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	sch, err := compiledSchema()
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	if err := sch.Validate(doc); err != nil {
		// An empty questions array is the most common authoring mistake;
		// report it with the sentinel so callers can tell it apart.
		if m, ok := doc.(map[string]any); ok {
			if qs, ok := m["questions"].([]any); ok && len(qs) == 0 {
				return nil, ErrEmptyBank
			}
		}
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}

	var fb fileBank
	if err := json.Unmarshal(data, &fb); err != nil {
		return nil, fmt.Errorf("decode question bank: %w", err)
	}

	if fb.Version != "" {
		if !semver.IsValid(fb.Version) {
			return nil, fmt.Errorf("invalid bank version %q", fb.Version)
		}
		if major := semver.Major(fb.Version); major != supportedMajor {
			return nil, fmt.Errorf("unsupported bank version %s (want %s.x)", fb.Version, supportedMajor)
		}
	}

	qs := make([]Question, 0, len(fb.Questions))
	for i, fq := range fb.Questions {
		id, err := decodeID(fq.ID)
		if err != nil {
			return nil, fmt.Errorf("question %d: %w", i, err)
		}
		qs = append(qs, Question{ID: id, Text: fq.Text, Options: fq.Options})
	}
	return newBank(fb.Version, qs)
}

// decodeID accepts either a JSON string or a JSON integer and returns its
// string form; answer sets are keyed by this string.
func decodeID(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if s == "" {
			return "", fmt.Errorf("empty id")
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("id must be a string or integer: %w", err)
	}
	return strings.TrimSpace(n.String()), nil
}
