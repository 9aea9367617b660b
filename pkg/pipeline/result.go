package pipeline

import (
	"fmt"
	"strings"

	"github.com/hazyhaar/ruea-filter/pkg/table"
)

// State is where a file's processing stopped.
type State int

const (
	Pending State = iota
	Loaded
	Normalized
	Filtered
	Converted
	Written
	Failed
	Skipped
)

var stateNames = [...]string{"pending", "loaded", "normalized", "filtered", "converted", "written", "failed", "skipped"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Phase names the step a failure happened in, as shown in the audit status.
type Phase string

const (
	PhaseRead      Phase = "read"
	PhaseReconcile Phase = "reconcile"
	PhaseWrite     Phase = "write"
)

// Result is the outcome of one input file.
type Result struct {
	File   string
	Path   string
	Family string
	// InputRows and OutputRows are nil when the file never got that far.
	InputRows    *int
	OutputRows   *int
	State        State
	Phase        Phase
	Err          error
	Encoding     string
	Delimiter    string
	DroppedLines int
	Outputs      []string

	filtered *table.Table
}

// OK reports whether the file was processed without error.
func (r *Result) OK() bool {
	return r.State == Written || r.State == Skipped
}

// Status is the audit status: "ok" or "error_<phase>: <message>".
func (r *Result) Status() string {
	if r.Err == nil {
		return "ok"
	}
	msg := strings.ReplaceAll(r.Err.Error(), "\n", " ")
	return fmt.Sprintf("error_%s: %s", r.Phase, msg)
}

func (r *Result) fail(phase Phase, err error) *Result {
	r.State = Failed
	r.Phase = phase
	r.Err = err
	r.OutputRows = nil
	r.filtered = nil
	return r
}

func intPtr(n int) *int { return &n }
