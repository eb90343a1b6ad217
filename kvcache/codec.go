package kvcache

import (
	"encoding/json"
	"strings"
)

// structuredMarker prefixes every value that Encode serialized as JSON.
// It begins with a control byte, so message text and other human-entered
// strings never collide with it by accident.
const structuredMarker = "\x01json\x01"

// Encode converts a value into the textual wire form stored in the cache.
//
// Plain strings pass through unchanged. Everything else is JSON-marshalled
// and prefixed with an internal marker. A plain string that itself begins
// with the marker is escaped by storing it as a marked JSON string, which
// keeps Decode(Encode(v)) exact for every input.
func Encode(v any) (string, error) {
	if s, ok := v.(string); ok && !strings.HasPrefix(s, structuredMarker) {
		return s, nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}

	return structuredMarker + string(data), nil
}

// Decode converts stored text back into a value. Marked text is parsed as
// JSON; unmarked text is returned verbatim as a string. Decode never fails:
// a marked payload that does not parse is surfaced as the raw stored text so
// callers can still observe it.
func Decode(s string) any {
	if !strings.HasPrefix(s, structuredMarker) {
		return s
	}

	var v any
	if err := json.Unmarshal([]byte(s[len(structuredMarker):]), &v); err != nil {
		return s
	}

	return v
}
