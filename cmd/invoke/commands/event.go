package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadEvent reads an invocation event from a JSON or YAML file. YAML fixtures
// are converted to JSON; a "body" given as a mapping is encoded to a string
// the way the gateway delivers it.
func LoadEvent(path string) (json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read event: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yamlToJSON(data)
	default:
		if !json.Valid(data) {
			return nil, fmt.Errorf("event %s is not valid JSON", path)
		}
		return json.RawMessage(data), nil
	}
}

func yamlToJSON(data []byte) (json.RawMessage, error) {
	var event map[string]any
	if err := yaml.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("failed to parse YAML event: %w", err)
	}
	if event == nil {
		return nil, fmt.Errorf("event is empty")
	}

	// Gateway events carry the body as a JSON string
	if _, isProxy := event["httpMethod"]; isProxy {
		if body, ok := event["body"].(map[string]any); ok {
			encoded, err := json.Marshal(body)
			if err != nil {
				return nil, fmt.Errorf("failed to encode body: %w", err)
			}
			event["body"] = string(encoded)
		}
	}

	out, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to encode event: %w", err)
	}
	return out, nil
}
