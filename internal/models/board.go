package models

import (
	"encoding/json"
	"fmt"
)

// Board is a single activity board as sent by the client. The payload is opaque:
// it is forwarded to the completion service exactly as received.
type Board = json.RawMessage

// IndentBoards renders boards as two-space indented JSON for prompt embedding.
func IndentBoards(boards []Board) (string, error) {
	if boards == nil {
		boards = []Board{}
	}
	out, err := json.MarshalIndent(boards, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal boards: %w", err)
	}
	return string(out), nil
}
