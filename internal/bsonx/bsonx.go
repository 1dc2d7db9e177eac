// Package bsonx reads loosely typed fields out of raw Mongo documents.
// Each accessor reports whether the field held a usable value so callers
// can substitute placeholders for missing or mistyped data.
package bsonx

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TimeLayout is the wire format for timestamps in listings.
const TimeLayout = "2006-01-02T15:04:05Z"

func ID(doc bson.M) (string, bool) {
	switch v := doc["_id"].(type) {
	case primitive.ObjectID:
		return v.Hex(), true
	case string:
		return v, v != ""
	default:
		return "", false
	}
}

func String(doc bson.M, key string) (string, bool) {
	switch v := doc[key].(type) {
	case string:
		return v, true
	case primitive.ObjectID:
		return v.Hex(), true
	case nil:
		return "", false
	case int32, int64, float64, bool:
		return fmt.Sprint(v), true
	default:
		return "", false
	}
}

func Int(doc bson.M, key string) (int64, bool) {
	switch v := doc[key].(type) {
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}

func Bool(doc bson.M, key string) (bool, bool) {
	v, ok := doc[key].(bool)
	return v, ok
}

// Time renders a date field in TimeLayout. Strings are accepted as stored
// by older writers ("2024-05-01T00:00:00.000Z" or a bare date).
func Time(doc bson.M, key string) (string, bool) {
	switch v := doc[key].(type) {
	case primitive.DateTime:
		return v.Time().UTC().Format(TimeLayout), true
	case time.Time:
		return v.UTC().Format(TimeLayout), true
	case string:
		v = strings.TrimSpace(v)
		if v == "" {
			return "", false
		}
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02"} {
			if t, err := time.Parse(layout, v); err == nil {
				return t.UTC().Format(TimeLayout), true
			}
		}
		return v, true
	default:
		return "", false
	}
}
