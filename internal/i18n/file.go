// Package i18n implements the localized string lookup used for user-facing
// replies and the staff info card. Translations live in JSON files, one per
// language, where each entry carries the translated text under
// "defaultMessage" plus an optional translator-facing "description":
//
//	{
//	  "common.welcome": {
//	    "defaultMessage": "Hi! Describe your problem...",
//	    "description": "First reply in a new private conversation"
//	  }
//	}
//
// The language is taken from the file name stem ("en.json" -> "en").
package i18n

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Entry is one translated message.
type Entry struct {
	DefaultMessage string `json:"defaultMessage"`
	Description    string `json:"description,omitempty"`
}

// Table maps message keys to their translation for a single language.
type Table map[string]Entry

// ParseFile reads one locale file and returns its language tag (the file
// name stem) and the parsed table. Non-.json files are rejected.
func ParseFile(path string) (string, Table, error) {
	if ext := filepath.Ext(path); ext != ".json" {
		return "", nil, fmt.Errorf("locale file %s: extension must be .json", path)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", nil, err
	}
	var table Table
	if err := json.Unmarshal(raw, &table); err != nil {
		return "", nil, fmt.Errorf("locale file %s: %w", path, err)
	}
	lang := strings.TrimSuffix(filepath.Base(path), ".json")
	return lang, table, nil
}
