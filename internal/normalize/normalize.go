// Package normalize maps the backend's inconsistent response envelopes onto
// one canonical shape. List endpoints have been observed returning a bare
// array, {<resource>: [...]}, {data: [...]}, and {data: {<resource>: [...]}};
// every data-fetching caller goes through here so none of them have to know
// which shape the backend picked today.
package normalize

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"

	"edulist_client/platform/logger"
)

// Resource names the collection key each endpoint family uses.
const (
	Institutes = "institutes"
	Courses    = "courses"
	Reviews    = "reviews"
	Enquiries  = "enquiries"
	Facilities = "facilities"
	Users      = "users"
)

// List maps any observed list-response shape onto a flat record slice.
// The second return is false when no list could be found anywhere in the
// body; the result is then empty, never nil, and never an error. Total by
// design: a malformed body must degrade to "none found", not crash a
// renderer.
//
// Precedence: bare array, then the resource key, then "data" as an array,
// then the resource key nested under "data", and as a last resort the
// lexicographically first field holding an array. The sort makes the
// fallback deterministic; the backend's field order is not.
func List(resource string, raw json.RawMessage) ([]json.RawMessage, bool) {
	if list, ok := asList(raw); ok {
		return list, true
	}

	fields, ok := asObject(raw)
	if !ok {
		return []json.RawMessage{}, false
	}

	if list, ok := asList(fields[resource]); ok {
		return list, true
	}

	if data, present := fields["data"]; present {
		if list, ok := asList(data); ok {
			return list, true
		}
		if nested, ok := asObject(data); ok {
			if list, ok := asList(nested[resource]); ok {
				return list, true
			}
		}
	}

	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if list, ok := asList(fields[key]); ok {
			return list, true
		}
	}

	return []json.RawMessage{}, false
}

// Record unwraps a single-record response. The backend wraps these in
// {data: {...}} or {<singular>: {...}} on some endpoints and returns the
// bare object on others.
func Record(singular string, raw json.RawMessage) json.RawMessage {
	fields, ok := asObject(raw)
	if !ok {
		return raw
	}
	if inner, present := fields["data"]; present {
		if _, ok := asObject(inner); ok {
			return Record(singular, inner)
		}
	}
	if inner, present := fields[singular]; present {
		if _, ok := asObject(inner); ok {
			return inner
		}
	}
	return raw
}

// Into decodes a normalized record list into a typed slice. Records that
// fail to decode are skipped rather than failing the whole list.
func Into[T any](records []json.RawMessage) []T {
	out := make([]T, 0, len(records))
	for _, rec := range records {
		var item T
		if err := json.Unmarshal(rec, &item); err != nil {
			continue
		}
		out = append(out, item)
	}
	return out
}

// Normalizer is the logging wrapper the services use; shape anomalies are
// absorbed but leave an operator trail.
type Normalizer struct {
	log *logger.Logger
}

// NewNormalizer creates a Normalizer backed by the given logger.
func NewNormalizer(log *logger.Logger) *Normalizer {
	return &Normalizer{log: log}
}

// List normalizes a list body, logging when the shape matched nothing.
func (n *Normalizer) List(resource string, raw json.RawMessage) []json.RawMessage {
	list, ok := List(resource, raw)
	if !ok {
		n.log.ShapeAnomaly(resource, summarize(raw))
	}
	return list
}

// Record normalizes a single-record body.
func (n *Normalizer) Record(singular string, raw json.RawMessage) json.RawMessage {
	return Record(singular, raw)
}

func asList(raw json.RawMessage) ([]json.RawMessage, bool) {
	if len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, false
	}
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, false
	}
	if list == nil {
		list = []json.RawMessage{}
	}
	return list, true
}

func asObject(raw json.RawMessage) (map[string]json.RawMessage, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, false
	}
	return fields, true
}

// summarize renders a short diagnostic of an unrecognized body without
// dumping the whole payload into the log.
func summarize(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return "empty body"
	}
	if fields, ok := asObject(trimmed); ok {
		keys := make([]string, 0, len(fields))
		for key := range fields {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		return "object with keys [" + strings.Join(keys, ", ") + "]"
	}
	if len(trimmed) > 64 {
		trimmed = trimmed[:64]
	}
	return "non-object body: " + string(trimmed)
}
