package store

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/roach88/threadboard/internal/comment"
)

// marshalForest converts a forest to the JSON TEXT kept in the comments slot.
// HTML escaping is disabled so text round-trips byte for byte with what
// other writers of the same slot produce.
func marshalForest(f comment.Forest) (string, error) {
	if f == nil {
		f = comment.Forest{}
	}
	return marshalJSON(f)
}

// unmarshalForest parses the comments slot and normalizes nil reply lists.
func unmarshalForest(data string) (comment.Forest, error) {
	var f comment.Forest
	if err := json.Unmarshal([]byte(data), &f); err != nil {
		return nil, fmt.Errorf("unmarshal forest: %w", err)
	}
	return comment.Normalize(f), nil
}

func marshalDraft(d comment.Draft) (string, error) {
	return marshalJSON(d)
}

func unmarshalDraft(data string) (comment.Draft, error) {
	var d comment.Draft
	if err := json.Unmarshal([]byte(data), &d); err != nil {
		return comment.Draft{}, fmt.Errorf("unmarshal draft: %w", err)
	}
	return d, nil
}

func marshalJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("marshal %T: %w", v, err)
	}
	return string(bytes.TrimSuffix(buf.Bytes(), []byte{'\n'})), nil
}
