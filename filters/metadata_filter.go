package filters

import (
	"fmt"
	"strings"

	"github.com/agentkit/hookflow/hooks"
)

// MatchType selects how MetadataFilter compares a metadata key's value.
type MatchType string

const (
	MatchExists    MatchType = "exists"
	MatchNotExists MatchType = "not_exists"
	MatchEquals    MatchType = "equals"
	MatchNotEquals MatchType = "not_equals"
	MatchContains  MatchType = "contains"
)

// MetadataFilter matches a context metadata key against Value per Type.
type MetadataFilter struct {
	Key   string
	Type  MatchType
	Value interface{}
}

func (f *MetadataFilter) Allow(h hooks.Hook, hctx *hooks.Context) bool {
	v, exists := hctx.Metadata[f.Key]
	switch f.Type {
	case MatchExists:
		return exists
	case MatchNotExists:
		return !exists
	case MatchEquals:
		return exists && v == f.Value
	case MatchNotEquals:
		return !exists || v != f.Value
	case MatchContains:
		if !exists {
			return false
		}
		s, ok := v.(string)
		target, ok2 := f.Value.(string)
		if ok && ok2 {
			return strings.Contains(s, target)
		}
		return fmt.Sprint(v) == fmt.Sprint(f.Value)
	default:
		return false
	}
}
