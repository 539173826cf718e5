package canvas

import (
	"fmt"
	"strings"
)

// PlanStep is one step of the working plan.
type PlanStep struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Done  bool   `json:"done"`
}

// Plan tracks a multi-step intention across turns.
type Plan struct {
	Steps     []PlanStep `json:"steps"`
	Completed bool       `json:"completed"`
}

// State is the shared canvas state carried across turns. Fields not
// touched by an executed action must survive a turn unchanged.
type State struct {
	Items             []*Item `json:"items"`
	GlobalTitle       string  `json:"globalTitle"`
	GlobalDescription string  `json:"globalDescription"`
	ActiveItemID      string  `json:"activeItemId,omitempty"`
	LastAction        string  `json:"lastAction,omitempty"`
	Plan              *Plan   `json:"plan,omitempty"`
}

// NewState returns an empty state.
func NewState() *State {
	return &State{Items: []*Item{}}
}

// Clone deep-copies the state.
func (s *State) Clone() *State {
	out := &State{
		Items:             make([]*Item, len(s.Items)),
		GlobalTitle:       s.GlobalTitle,
		GlobalDescription: s.GlobalDescription,
		ActiveItemID:      s.ActiveItemID,
		LastAction:        s.LastAction,
	}
	for i, item := range s.Items {
		out.Items[i] = item.Clone()
	}
	if s.Plan != nil {
		p := &Plan{
			Steps:     append([]PlanStep(nil), s.Plan.Steps...),
			Completed: s.Plan.Completed,
		}
		out.Plan = p
	}
	return out
}

// Item returns the item with the given id, or nil.
func (s *State) Item(id string) *Item {
	for _, item := range s.Items {
		if item.ID == id {
			return item
		}
	}
	return nil
}

// RemoveItem deletes the item with the given id, reporting whether it
// was present. Display order of the remaining items is preserved.
func (s *State) RemoveItem(id string) bool {
	for i, item := range s.Items {
		if item.ID == id {
			s.Items = append(s.Items[:i], s.Items[i+1:]...)
			if s.ActiveItemID == id {
				s.ActiveItemID = ""
			}
			return true
		}
	}
	return false
}

// SummaryLines renders one grounding line per item, in display order.
func (s *State) SummaryLines() []string {
	lines := make([]string, 0, len(s.Items))
	for _, item := range s.Items {
		lines = append(lines, item.Summary())
	}
	return lines
}

// PlanSummary renders the plan for grounding context, or "" when no
// plan exists.
func (s *State) PlanSummary() string {
	if s.Plan == nil || len(s.Plan.Steps) == 0 {
		return ""
	}
	var b strings.Builder
	done := 0
	for _, step := range s.Plan.Steps {
		mark := " "
		if step.Done {
			mark = "x"
			done++
		}
		fmt.Fprintf(&b, "[%s] %s\n", mark, step.Title)
	}
	status := fmt.Sprintf("%d/%d steps done", done, len(s.Plan.Steps))
	if s.Plan.Completed {
		status += " (completed)"
	}
	b.WriteString(status)
	return b.String()
}
