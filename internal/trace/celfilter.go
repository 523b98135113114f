package trace

import (
	"strings"

	"github.com/google/cel-go/cel"
)

// Filter wraps a compiled CEL program evaluated against journal entries.
// The zero value (or an empty expression) admits everything.
type Filter struct {
	prog    cel.Program
	enabled bool
}

// NewFilter compiles expr against the trace entry variables: seq, worker,
// channel, kind ("pushed"/"pulled"), count, ts_ms, and now_ms.
func NewFilter(expr string) (Filter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return Filter{}, nil
	}
	env, err := cel.NewEnv(
		cel.Variable("seq", cel.IntType),
		cel.Variable("worker", cel.IntType),
		cel.Variable("channel", cel.IntType),
		cel.Variable("kind", cel.StringType),
		cel.Variable("count", cel.IntType),
		cel.Variable("ts_ms", cel.IntType),
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

// Eval evaluates the expression against one entry. Evaluation errors and
// non-boolean results reject the entry.
func (f Filter) Eval(e Entry) bool {
	if !f.enabled {
		return true
	}
	out, _, err := f.prog.Eval(map[string]any{
		"seq":     int64(e.Seq),
		"worker":  int64(e.Worker),
		"channel": int64(e.Event.Channel),
		"kind":    e.Event.Kind.String(),
		"count":   int64(e.Event.Count),
		"ts_ms":   e.TsMs,
		"now_ms":  NowMs(),
	})
	if err != nil {
		return false
	}
	b, ok := out.Value().(bool)
	return ok && b
}
