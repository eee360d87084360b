package apply

import (
	"fmt"

	"github.com/aymerick/raymond"

	"github.com/agentmd/agentmd/pkg/plan"
)

// Status is the per-operation outcome recorded in the report.
type Status string

const (
	Succeeded Status = "succeeded"
	Skipped   Status = "skipped"
	Failed    Status = "failed"
)

// Entry records one operation's outcome.
type Entry struct {
	Op     plan.Op
	Status Status
	Detail string
}

// Report is the per-operation outcome list for one apply run. Individual
// failures live here instead of aborting the run.
type Report struct {
	Entries []Entry
}

func (r *Report) add(op plan.Op, status Status, detail string) {
	r.Entries = append(r.Entries, Entry{Op: op, Status: status, Detail: detail})
}

// Counts returns (succeeded, skipped, failed) totals.
func (r *Report) Counts() (int, int, int) {
	var ok, skip, fail int
	for _, e := range r.Entries {
		switch e.Status {
		case Succeeded:
			ok++
		case Skipped:
			skip++
		case Failed:
			fail++
		}
	}
	return ok, skip, fail
}

// Failures returns the failed entries.
func (r *Report) Failures() []Entry {
	var out []Entry
	for _, e := range r.Entries {
		if e.Status == Failed {
			out = append(out, e)
		}
	}
	return out
}

// Markdown renders the migration report document from the apply outcomes
// using the bundled handlebars template. Data goes in as maps: raymond
// resolves map keys directly, which keeps the template free of Go field
// naming.
func (r *Report) Markdown(templateBody, project, version, date, summary string) (string, error) {
	moved := []map[string]interface{}{}
	rewritten := []string{}
	skipped := []string{}
	failed := []string{}
	for _, e := range r.Entries {
		switch {
		case e.Op.Kind == plan.OpMoveTree && e.Status == Succeeded:
			moved = append(moved, map[string]interface{}{
				"from":    e.Op.Path,
				"to":      e.Op.Target,
				"gitMove": e.Detail == "git mv",
			})
		case e.Op.Kind == plan.OpRewriteText && e.Status == Succeeded:
			rewritten = append(rewritten, e.Op.Path)
		case e.Status == Skipped:
			skipped = append(skipped, fmt.Sprintf("%s: %s", e.Op.Path, e.Detail))
		case e.Status == Failed:
			failed = append(failed, fmt.Sprintf("%s: %s", e.Op.Path, e.Detail))
		}
	}
	data := map[string]interface{}{
		"project":   project,
		"version":   version,
		"date":      date,
		"summary":   summary,
		"moved":     moved,
		"rewritten": rewritten,
		"skipped":   skipped,
		"failed":    failed,
	}

	out, err := raymond.Render(templateBody, data)
	if err != nil {
		return "", fmt.Errorf("rendering migration report: %w", err)
	}
	return out, nil
}
