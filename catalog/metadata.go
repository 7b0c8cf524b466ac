package catalog

import (
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Schema describes the key-naming convention that encodes searchable metadata
// into object keys. The convention varies between deployments, so it is
// configuration rather than code: after stripping the tenant prefix, the key
// basename is split on Delimiter and fields are recognized positionally
// (date first, duration last) or by marker (agent).
type Schema struct {
	// Delimiter separates metadata fields inside the basename.
	Delimiter string
	// AgentMarker is the token that precedes (or fuses with) the agent field,
	// e.g. "agent" matches both "..._agent_42_..." and "..._agent42_...".
	AgentMarker string
}

// DefaultSchema matches keys of the shape DATE_..._agent_AGENT_..._DURATION.ext.
func DefaultSchema() Schema {
	return Schema{
		Delimiter:   "_",
		AgentMarker: "agent",
	}
}

// Recording is the structured view derived from one object key. Metadata
// fields that cannot be extracted are nil; the record is still listed.
type Recording struct {
	Key             string     `json:"key"`
	Date            *string    `json:"date"`
	Agent           *string    `json:"agent"`
	DurationSeconds *int       `json:"duration_seconds"`
	Extension       string     `json:"extension"`
	Size            int64      `json:"size"`
	LastModified    *time.Time `json:"last_modified,omitempty"`
}

var datePattern = regexp.MustCompile(`^\d{4}(-\d{2}(-\d{2})?)?$`)

// ParseKey extracts the structured metadata view from a raw object key.
// Parsing is pure and total: it never fails, it only leaves fields nil.
func (s Schema) ParseKey(tenantPrefix, key string) Recording {
	rec := Recording{Key: key}

	remainder := strings.TrimPrefix(key, tenantPrefix)
	base := path.Base(remainder)

	if ext := path.Ext(base); ext != "" {
		rec.Extension = strings.TrimPrefix(ext, ".")
		base = strings.TrimSuffix(base, ext)
	}
	if base == "" {
		return rec
	}

	fields := strings.Split(base, s.Delimiter)

	if datePattern.MatchString(fields[0]) {
		rec.Date = &fields[0]
	}

	agentIdx := -1
	for i, field := range fields {
		if field == s.AgentMarker && i+1 < len(fields) && fields[i+1] != "" {
			rec.Agent = &fields[i+1]
			agentIdx = i + 1
			break
		}
		// Fused variant: "agent42"
		if fused := strings.TrimPrefix(field, s.AgentMarker); fused != field && fused != "" {
			rec.Agent = &fused
			agentIdx = i
			break
		}
	}

	// The field claimed as the agent value is never also the duration.
	if last := len(fields) - 1; last > 0 && last != agentIdx {
		if seconds, err := strconv.Atoi(fields[last]); err == nil && seconds >= 0 {
			rec.DurationSeconds = &seconds
		}
	}

	return rec
}
