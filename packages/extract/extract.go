// Package extract implements dot-path value extraction from JSON-shaped
// values, e.g. pulling body.data.user.id out of a response snapshot.
package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

var indexedSegment = regexp.MustCompile(`^(.*)\[(\d+)\]$`)

// ByPath walks value segment by segment along a dot-separated path such
// as "body.items.1.id" or "body.items[1].id". A bare numeric segment or
// a name[index] suffix indexes into a sequence; any other segment looks
// up a map key. The walk returns nil the moment a segment is missing,
// an index is out of range, or the current value has the wrong shape.
// It never returns an error.
func ByPath(value any, path string) any {
	if path == "" {
		return value
	}
	current := value
	for _, segment := range strings.Split(path, ".") {
		if segment == "" {
			return nil
		}
		if m := indexedSegment.FindStringSubmatch(segment); m != nil {
			if m[1] != "" {
				current = lookupKey(current, m[1])
			}
			idx, _ := strconv.Atoi(m[2])
			current = lookupIndex(current, idx)
		} else if idx, err := strconv.Atoi(segment); err == nil {
			current = lookupIndex(current, idx)
		} else {
			current = lookupKey(current, segment)
		}
		if current == nil {
			return nil
		}
	}
	return current
}

func lookupKey(value any, key string) any {
	switch v := value.(type) {
	case map[string]any:
		return v[key]
	case map[string]string:
		if s, ok := v[key]; ok {
			return s
		}
		return nil
	default:
		return nil
	}
}

func lookupIndex(value any, idx int) any {
	seq, ok := value.([]any)
	if !ok || idx < 0 || idx >= len(seq) {
		return nil
	}
	return seq[idx]
}

// JSONValue parses raw bytes into a JSON-shaped value suitable for
// ByPath. Invalid JSON yields the raw text as a string so header-only
// or plain-text bodies stay addressable as a whole.
func JSONValue(data []byte) any {
	if gjson.ValidBytes(data) {
		return gjson.ParseBytes(data).Value()
	}
	return string(data)
}
