package admission

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/cel-go/cel"
)

// Filter wraps a compiled CEL program evaluated against each payload before
// capacity checks. When disabled (empty expression), Allow always returns
// true. Evaluation errors deny admission rather than letting unchecked
// payloads through.
type Filter struct {
	prog    cel.Program
	enabled bool
}

// New compiles an admission expression. An empty expression yields a
// disabled filter.
//
// Available variables:
//
//	lane   int     - destination lane index
//	size   int     - payload size in bytes
//	text   string  - payload as a string
//	json   dyn     - parsed JSON payload, or null when not JSON
//	now_ms int     - current wall time in ms
func New(expr string) (Filter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return Filter{enabled: false}, nil
	}
	env, err := cel.NewEnv(
		cel.Variable("lane", cel.IntType),
		cel.Variable("size", cel.IntType),
		cel.Variable("text", cel.StringType),
		cel.Variable("json", cel.DynType),
		cel.Variable("now_ms", cel.IntType),
	)
	if err != nil {
		return Filter{}, err
	}
	ast, iss := env.Parse(expr)
	if iss != nil && iss.Err() != nil {
		return Filter{}, iss.Err()
	}
	checked, iss2 := env.Check(ast)
	if iss2 != nil && iss2.Err() != nil {
		return Filter{}, iss2.Err()
	}
	prog, err := env.Program(checked)
	if err != nil {
		return Filter{}, err
	}
	return Filter{prog: prog, enabled: true}, nil
}

// Enabled reports whether an expression is active.
func (f Filter) Enabled() bool { return f.enabled }

// Allow evaluates the expression for a payload headed to a lane.
func (f Filter) Allow(laneIdx int, payload []byte) bool {
	if !f.enabled {
		return true
	}
	var parsed interface{}
	if len(payload) > 0 && (payload[0] == '{' || payload[0] == '[') {
		if err := json.Unmarshal(payload, &parsed); err != nil {
			parsed = nil
		}
	}
	out, _, err := f.prog.Eval(map[string]interface{}{
		"lane":   laneIdx,
		"size":   len(payload),
		"text":   string(payload),
		"json":   parsed,
		"now_ms": time.Now().UnixMilli(),
	})
	if err != nil {
		return false
	}
	allowed, ok := out.Value().(bool)
	return ok && allowed
}
