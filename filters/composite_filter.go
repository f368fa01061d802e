package filters

import "github.com/agentkit/hookflow/hooks"

// CompositeOp selects how CompositeFilter combines its children.
type CompositeOp string

const (
	OpAnd CompositeOp = "and"
	OpOr  CompositeOp = "or"
	OpNot CompositeOp = "not" // exactly one child, negated
)

// CompositeFilter combines children with AND/OR/NOT.
type CompositeFilter struct {
	Op       CompositeOp
	Children []Filter
}

func And(children ...Filter) *CompositeFilter { return &CompositeFilter{Op: OpAnd, Children: children} }
func Or(children ...Filter) *CompositeFilter  { return &CompositeFilter{Op: OpOr, Children: children} }
func Not(child Filter) *CompositeFilter       { return &CompositeFilter{Op: OpNot, Children: []Filter{child}} }

func (f *CompositeFilter) Allow(h hooks.Hook, hctx *hooks.Context) bool {
	switch f.Op {
	case OpAnd:
		for _, c := range f.Children {
			if !c.Allow(h, hctx) {
				return false
			}
		}
		return true
	case OpOr:
		for _, c := range f.Children {
			if c.Allow(h, hctx) {
				return true
			}
		}
		return false
	case OpNot:
		if len(f.Children) != 1 {
			return false
		}
		return !f.Children[0].Allow(h, hctx)
	default:
		return false
	}
}
