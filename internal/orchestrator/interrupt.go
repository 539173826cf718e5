package orchestrator

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"canvassist/internal/auth"
	"canvassist/internal/canvas"
)

// InterruptChooseItem is the only interrupt type: the caller must pick
// a target item or cancel.
const InterruptChooseItem = "choose_item"

// Interrupt is the structured prompt surfaced to the caller while a
// turn is suspended.
type Interrupt struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Content string `json:"content"`
}

// Suspension captures a parked turn. It exists only while the thread is
// suspended and is destroyed on resume or cancel.
type Suspension struct {
	Interrupt   *Interrupt
	Instruction string
	Principal   *auth.Principal
	CreatedAt   time.Time
}

func newChooseItemSuspension(instruction string, p *auth.Principal, snapshot *canvas.State) *Suspension {
	var b strings.Builder
	b.WriteString("Which item do you mean?\n")
	for _, line := range snapshot.SummaryLines() {
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("Reply with the item id, or an empty choice to cancel.")

	return &Suspension{
		Interrupt: &Interrupt{
			ID:      canvas.NewID("int"),
			Type:    InterruptChooseItem,
			Content: b.String(),
		},
		Instruction: instruction,
		Principal:   p,
		CreatedAt:   time.Now(),
	}
}

// itemVerbs are instruction words that suggest an item-affecting
// operation.
var itemVerbs = []string{
	"rename", "delete", "remove", "update", "edit", "change",
	"set ", "clear", "mark", "append", "add ",
}

// targetPronoun matches a bare back-reference to an unnamed target.
var targetPronoun = regexp.MustCompile(`\b(it|this one|that one|this item|that item)\b`)

// needsDisambiguation applies the pre-provider heuristic: an
// item-affecting verb plus a bare back-reference, with no item id in
// the text, no usable last-action marker, and at least one item to
// choose from.
func needsDisambiguation(instruction string, snapshot *canvas.State) bool {
	if len(snapshot.Items) == 0 || snapshot.LastAction != "" {
		return false
	}

	lower := strings.ToLower(instruction)

	hasVerb := false
	for _, verb := range itemVerbs {
		if strings.Contains(lower, verb) {
			hasVerb = true
			break
		}
	}
	if !hasVerb {
		return false
	}
	if !targetPronoun.MatchString(lower) {
		return false
	}

	// An explicit id makes the target unambiguous.
	for _, item := range snapshot.Items {
		if strings.Contains(lower, strings.ToLower(item.ID)) {
			return false
		}
		if item.Name != "" && strings.Contains(lower, strings.ToLower(item.Name)) {
			return false
		}
	}
	return true
}

// resolveText is the grounding note injected after a disambiguation
// choice.
func resolveText(itemID string) string {
	return fmt.Sprintf("The user chose item %s as the target of the previous instruction.", itemID)
}
