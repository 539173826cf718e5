package canvas

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Delta describes what one action changed. The orchestrator merges the
// deltas of a turn to report the state subset actually changed.
type Delta struct {
	Created      []string `json:"created,omitempty"`
	Updated      []string `json:"updated,omitempty"`
	Removed      []string `json:"removed,omitempty"`
	GlobalFields []string `json:"globalFields,omitempty"`
	Summary      string   `json:"summary,omitempty"`
}

// Empty reports whether the delta records no change.
func (d *Delta) Empty() bool {
	return d == nil ||
		(len(d.Created) == 0 && len(d.Updated) == 0 &&
			len(d.Removed) == 0 && len(d.GlobalFields) == 0)
}

// Merge folds other into d, deduplicating ids. Summaries are joined
// with "; " in arrival order.
func (d *Delta) Merge(other *Delta) {
	if other == nil {
		return
	}
	d.Created = appendUnique(d.Created, other.Created)
	d.Updated = appendUnique(d.Updated, other.Updated)
	d.Removed = appendUnique(d.Removed, other.Removed)
	d.GlobalFields = appendUnique(d.GlobalFields, other.GlobalFields)
	if other.Summary != "" {
		if d.Summary != "" {
			d.Summary += "; " + other.Summary
		} else {
			d.Summary = other.Summary
		}
	}
}

func appendUnique(dst, src []string) []string {
	for _, s := range src {
		found := false
		for _, existing := range dst {
			if existing == s {
				found = true
				break
			}
		}
		if !found {
			dst = append(dst, s)
		}
	}
	return dst
}

// DiffText returns a compact inline description of how a text field
// changed, for the last-action marker. Large edits collapse to a
// character count.
func DiffText(before, after string) string {
	if before == after {
		return "unchanged"
	}
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(before, after, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	var added, removed int
	var parts []string
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			added += len(d.Text)
			if len(d.Text) <= 40 {
				parts = append(parts, "+"+strings.TrimSpace(d.Text))
			}
		case diffmatchpatch.DiffDelete:
			removed += len(d.Text)
			if len(d.Text) <= 40 {
				parts = append(parts, "-"+strings.TrimSpace(d.Text))
			}
		}
	}
	if len(parts) == 0 || added+removed > 120 {
		return summarizeCounts(added, removed)
	}
	return strings.Join(parts, " ")
}

func summarizeCounts(added, removed int) string {
	var b strings.Builder
	if added > 0 {
		fmt.Fprintf(&b, "+%d chars", added)
	}
	if removed > 0 {
		if b.Len() > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "-%d chars", removed)
	}
	return b.String()
}
