package poe

import "github.com/poekit/poekit/protocol"

// toolCallDelta is one element of choices[0].delta.tool_calls. Pointer fields
// distinguish "absent" from "empty": absent fields leave the accumulated
// value untouched.
type toolCallDelta struct {
	Index    int     `json:"index"`
	ID       *string `json:"id"`
	Type     *string `json:"type"`
	Function *struct {
		Name      *string `json:"name"`
		Arguments *string `json:"arguments"`
	} `json:"function"`
}

// partialToolCall is one in-progress accumulator cell.
type partialToolCall struct {
	id   string
	typ  string
	name string
	args string
}

// toolCallAccumulator merges streamed tool-call deltas, keyed by index, into
// complete calls. Owned by a single decoder; not safe for concurrent use.
type toolCallAccumulator struct {
	partials []partialToolCall
	complete bool
}

// maxDeltaIndex caps accumulator growth so a hostile index cannot force an
// arbitrarily large allocation.
const maxDeltaIndex = 1024

// apply merges one delta. Scalar fields are overwritten when present (later
// deltas win); argument fragments are always appended in arrival order.
// A negative index is coerced to 0, matching how the service's zero default
// behaves; an index past maxDeltaIndex is dropped.
func (a *toolCallAccumulator) apply(d toolCallDelta) {
	if d.Index < 0 {
		d.Index = 0
	}
	if d.Index > maxDeltaIndex {
		return
	}
	for len(a.partials) <= d.Index {
		a.partials = append(a.partials, partialToolCall{})
	}
	cell := &a.partials[d.Index]

	if d.ID != nil {
		cell.id = *d.ID
	}
	if d.Type != nil {
		cell.typ = *d.Type
	}
	if d.Function != nil {
		if d.Function.Name != nil {
			cell.name = *d.Function.Name
		}
		if d.Function.Arguments != nil {
			cell.args += *d.Function.Arguments
		}
	}
}

// drainComplete converts every cell with a non-empty id and function name
// into a ToolCall and, if any qualified, resets the accumulator and the
// completeness flag. Cells that never received an id or name are dropped
// with the reset.
func (a *toolCallAccumulator) drainComplete() []protocol.ToolCall {
	var calls []protocol.ToolCall
	for _, cell := range a.partials {
		if cell.id == "" || cell.name == "" {
			continue
		}
		calls = append(calls, protocol.ToolCall{
			ID:   cell.id,
			Type: cell.typ,
			Function: protocol.FunctionCall{
				Name:      cell.name,
				Arguments: cell.args,
			},
		})
	}
	if len(calls) > 0 {
		a.partials = nil
		a.complete = false
	}
	return calls
}
