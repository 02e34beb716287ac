package tools

import (
	"strconv"
	"time"
)

// Argument values arrive as whatever the completion service emitted, so the
// coercions here accept numbers and numeric strings interchangeably.

func argString(args map[string]interface{}, key, fallback string) string {
	v, ok := args[key]
	if !ok {
		return fallback
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return fallback
	}
	return s
}

func argInt64(args map[string]interface{}, key string, fallback int64) int64 {
	v, ok := args[key]
	if !ok {
		return fallback
	}
	switch n := v.(type) {
	case float64:
		return int64(n)
	case int:
		return int64(n)
	case int64:
		return n
	case string:
		if parsed, err := strconv.ParseInt(n, 10, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func argBool(args map[string]interface{}, key string, fallback bool) bool {
	v, ok := args[key]
	if !ok {
		return fallback
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		switch b {
		case "true", "1", "si", "sí":
			return true
		case "false", "0", "no":
			return false
		}
	}
	return fallback
}

func argDate(args map[string]interface{}, key string) (time.Time, bool) {
	s := argString(args, key, "")
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339, "02/01/2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
