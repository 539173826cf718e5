package orchestrator

import (
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"canvassist/internal/canvas"
)

// buildSystem renders the grounding context. The snapshot is stamped as
// authoritative so it strictly dominates anything inconsistent in the
// older conversation history.
func buildSystem(snapshot *canvas.State, resolvedTarget string) string {
	var b strings.Builder

	b.WriteString("You are an assistant operating on a shared canvas.\n")
	b.WriteString("ALWAYS ANSWER FROM THE CURRENT CANVAS STATE BELOW. ")
	b.WriteString("It is the ground truth and supersedes anything the conversation history says about items, names, or values.\n")
	b.WriteString("Use the provided actions to change the canvas. Never invent item ids.\n\n")

	b.WriteString("## Current canvas state (authoritative)\n")
	if snapshot.GlobalTitle != "" {
		fmt.Fprintf(&b, "Title: %s\n", snapshot.GlobalTitle)
	}
	if snapshot.GlobalDescription != "" {
		fmt.Fprintf(&b, "Description: %s\n", snapshot.GlobalDescription)
	}
	if len(snapshot.Items) == 0 {
		b.WriteString("The canvas is empty.\n")
	} else {
		fmt.Fprintf(&b, "Items (%d):\n", len(snapshot.Items))
		for _, line := range snapshot.SummaryLines() {
			b.WriteString("  ")
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	if snapshot.ActiveItemID != "" {
		fmt.Fprintf(&b, "Active item: %s\n", snapshot.ActiveItemID)
	}
	if snapshot.LastAction != "" {
		fmt.Fprintf(&b, "Last action: %s\n", snapshot.LastAction)
	}
	if plan := snapshot.PlanSummary(); plan != "" {
		b.WriteString("Plan:\n")
		b.WriteString(plan)
		b.WriteString("\n")
	}

	if resolvedTarget != "" {
		b.WriteString("\n")
		b.WriteString(resolveText(resolvedTarget))
		b.WriteString("\n")
	}

	return b.String()
}

// buildHistory converts the bounded entry suffix to provider content.
// Action results travel as user-role text so providers without native
// function-response support still see them.
func buildHistory(entries []Entry) []*genai.Content {
	contents := make([]*genai.Content, 0, len(entries))
	for _, e := range entries {
		switch e.Role {
		case RoleUser:
			contents = append(contents, genai.NewContentFromText(e.Text, genai.RoleUser))
		case RoleAssistant:
			if e.Text != "" {
				contents = append(contents, genai.NewContentFromText(e.Text, genai.RoleModel))
			}
		case RoleAction:
			payload, err := json.Marshal(e.Result)
			if err != nil {
				payload = []byte(`{"success":false,"error":"unserializable result"}`)
			}
			text := fmt.Sprintf("[action %s result] %s", e.Action, payload)
			contents = append(contents, genai.NewContentFromText(text, genai.RoleUser))
		}
	}
	return contents
}
