package action

import (
	"fmt"
	"time"

	"google.golang.org/genai"

	"canvassist/internal/auth"
	"canvassist/internal/canvas"
)

func registerProjectActions(c *Catalog) {
	c.MustRegister(&Descriptor{
		Name:        "setProjectField1",
		Description: "Set a project's text field.",
		Required:    auth.PermEditProject,
		Mutating:    true,
		ItemScoped:  true,
		Declaration: &genai.FunctionDeclaration{
			Name:        "setProjectField1",
			Description: "Set a project's text field.",
			Parameters: objectSchema(map[string]*genai.Schema{
				"itemId": itemIDParam(),
				"value":  stringParam("New text value"),
			}, "itemId", "value"),
		},
		Apply: func(st *canvas.State, args map[string]any) (string, *canvas.Delta, error) {
			item, err := requireItem("setProjectField1", st, args, canvas.TypeProject)
			if err != nil {
				return "", nil, err
			}
			value, ok := GetString(args, "value")
			if !ok {
				return "", nil, InvalidArgument("setProjectField1", "value", "required")
			}
			item.Project.Field1 = value

			return fmt.Sprintf("Updated field1 of %q", item.Name), &canvas.Delta{
				Updated: []string{item.ID},
				Summary: fmt.Sprintf("set field1 of project %s", item.ID),
			}, nil
		},
	})

	c.MustRegister(&Descriptor{
		Name:        "setProjectField2",
		Description: "Set a project's select field (A, B, or C).",
		Required:    auth.PermEditProject,
		Mutating:    true,
		ItemScoped:  true,
		Declaration: &genai.FunctionDeclaration{
			Name:        "setProjectField2",
			Description: "Set a project's select field (A, B, or C).",
			Parameters: objectSchema(map[string]*genai.Schema{
				"itemId": itemIDParam(),
				"value":  enumParam("New select value", canvas.Field2Options),
			}, "itemId", "value"),
		},
		Validate: func(args map[string]any) error {
			if v, ok := GetString(args, "value"); ok && !canvas.ValidField2(v) {
				return InvalidArgument("setProjectField2", "value", "must be A, B, or C")
			}
			return nil
		},
		Apply: func(st *canvas.State, args map[string]any) (string, *canvas.Delta, error) {
			item, err := requireItem("setProjectField2", st, args, canvas.TypeProject)
			if err != nil {
				return "", nil, err
			}
			value, err := requireString("setProjectField2", args, "value")
			if err != nil {
				return "", nil, err
			}
			if !canvas.ValidField2(value) {
				return "", nil, InvalidArgument("setProjectField2", "value", "must be A, B, or C")
			}
			item.Project.Field2 = value

			return fmt.Sprintf("Set field2 of %q to %s", item.Name, value), &canvas.Delta{
				Updated: []string{item.ID},
				Summary: fmt.Sprintf("set field2 of project %s to %s", item.ID, value),
			}, nil
		},
	})

	c.MustRegister(&Descriptor{
		Name:        "setProjectField3",
		Description: "Set a project's date field (YYYY-MM-DD).",
		Required:    auth.PermEditProject,
		Mutating:    true,
		ItemScoped:  true,
		Declaration: &genai.FunctionDeclaration{
			Name:        "setProjectField3",
			Description: "Set a project's date field (YYYY-MM-DD).",
			Parameters: objectSchema(map[string]*genai.Schema{
				"itemId": itemIDParam(),
				"value":  stringParam("Date in YYYY-MM-DD form"),
			}, "itemId", "value"),
		},
		Apply: func(st *canvas.State, args map[string]any) (string, *canvas.Delta, error) {
			item, err := requireItem("setProjectField3", st, args, canvas.TypeProject)
			if err != nil {
				return "", nil, err
			}
			value, err := requireString("setProjectField3", args, "value")
			if err != nil {
				return "", nil, err
			}
			if _, perr := time.Parse("2006-01-02", value); perr != nil {
				return "", nil, InvalidArgument("setProjectField3", "value", "must be a YYYY-MM-DD date")
			}
			item.Project.Field3 = value

			return fmt.Sprintf("Set field3 of %q to %s", item.Name, value), &canvas.Delta{
				Updated: []string{item.ID},
				Summary: fmt.Sprintf("set field3 of project %s to %s", item.ID, value),
			}, nil
		},
	})

	c.MustRegister(&Descriptor{
		Name:        "clearProjectField3",
		Description: "Clear a project's date field.",
		Required:    auth.PermEditProject,
		Mutating:    true,
		ItemScoped:  true,
		Declaration: &genai.FunctionDeclaration{
			Name:        "clearProjectField3",
			Description: "Clear a project's date field.",
			Parameters: objectSchema(map[string]*genai.Schema{
				"itemId": itemIDParam(),
			}, "itemId"),
		},
		Apply: func(st *canvas.State, args map[string]any) (string, *canvas.Delta, error) {
			item, err := requireItem("clearProjectField3", st, args, canvas.TypeProject)
			if err != nil {
				return "", nil, err
			}
			item.Project.Field3 = ""

			return fmt.Sprintf("Cleared field3 of %q", item.Name), &canvas.Delta{
				Updated: []string{item.ID},
				Summary: fmt.Sprintf("cleared field3 of project %s", item.ID),
			}, nil
		},
	})

	c.MustRegister(&Descriptor{
		Name:        "addProjectChecklistItem",
		Description: "Add an entry to a project's checklist.",
		Required:    auth.PermEditProject,
		Mutating:    true,
		ItemScoped:  true,
		Declaration: &genai.FunctionDeclaration{
			Name:        "addProjectChecklistItem",
			Description: "Add an entry to a project's checklist.",
			Parameters: objectSchema(map[string]*genai.Schema{
				"itemId": itemIDParam(),
				"text":   stringParam("Checklist entry text"),
			}, "itemId", "text"),
		},
		Apply: func(st *canvas.State, args map[string]any) (string, *canvas.Delta, error) {
			item, err := requireItem("addProjectChecklistItem", st, args, canvas.TypeProject)
			if err != nil {
				return "", nil, err
			}
			text, err := requireString("addProjectChecklistItem", args, "text")
			if err != nil {
				return "", nil, err
			}
			entry := canvas.ChecklistEntry{ID: canvas.NewID("chk"), Text: text}
			item.Project.Field4 = append(item.Project.Field4, entry)

			return fmt.Sprintf("Added checklist entry %q to %q", text, item.Name), &canvas.Delta{
				Updated: []string{item.ID},
				Summary: fmt.Sprintf("added checklist entry %q (%s) to project %s", text, entry.ID, item.ID),
			}, nil
		},
	})

	c.MustRegister(&Descriptor{
		Name:        "setProjectChecklistItem",
		Description: "Update a checklist entry's text or done flag.",
		Required:    auth.PermEditProject,
		Mutating:    true,
		ItemScoped:  true,
		Declaration: &genai.FunctionDeclaration{
			Name:        "setProjectChecklistItem",
			Description: "Update a checklist entry's text or done flag.",
			Parameters: objectSchema(map[string]*genai.Schema{
				"itemId":  itemIDParam(),
				"entryId": stringParam("Identifier of the checklist entry"),
				"text":    stringParam("New entry text (optional)"),
				"done":    boolParam("New done flag (optional)"),
			}, "itemId", "entryId"),
		},
		Apply: func(st *canvas.State, args map[string]any) (string, *canvas.Delta, error) {
			item, err := requireItem("setProjectChecklistItem", st, args, canvas.TypeProject)
			if err != nil {
				return "", nil, err
			}
			entryID, err := requireString("setProjectChecklistItem", args, "entryId")
			if err != nil {
				return "", nil, err
			}

			for i := range item.Project.Field4 {
				entry := &item.Project.Field4[i]
				if entry.ID != entryID {
					continue
				}
				if text, ok := GetString(args, "text"); ok && text != "" {
					entry.Text = text
				}
				if done, ok := GetBool(args, "done"); ok {
					entry.Done = done
				}
				entry.Proposed = false

				return fmt.Sprintf("Updated checklist entry %q in %q", entry.Text, item.Name), &canvas.Delta{
					Updated: []string{item.ID},
					Summary: fmt.Sprintf("updated checklist entry %s in project %s", entryID, item.ID),
				}, nil
			}
			return "", nil, NotFound("setProjectChecklistItem",
				fmt.Sprintf("checklist entry %q does not exist in item %q", entryID, item.ID))
		},
	})

	c.MustRegister(&Descriptor{
		Name:        "removeProjectChecklistItem",
		Description: "Remove an entry from a project's checklist.",
		Required:    auth.PermEditProject,
		Mutating:    true,
		ItemScoped:  true,
		Declaration: &genai.FunctionDeclaration{
			Name:        "removeProjectChecklistItem",
			Description: "Remove an entry from a project's checklist.",
			Parameters: objectSchema(map[string]*genai.Schema{
				"itemId":  itemIDParam(),
				"entryId": stringParam("Identifier of the checklist entry"),
			}, "itemId", "entryId"),
		},
		Apply: func(st *canvas.State, args map[string]any) (string, *canvas.Delta, error) {
			item, err := requireItem("removeProjectChecklistItem", st, args, canvas.TypeProject)
			if err != nil {
				return "", nil, err
			}
			entryID, err := requireString("removeProjectChecklistItem", args, "entryId")
			if err != nil {
				return "", nil, err
			}

			for i, entry := range item.Project.Field4 {
				if entry.ID != entryID {
					continue
				}
				item.Project.Field4 = append(item.Project.Field4[:i], item.Project.Field4[i+1:]...)
				return fmt.Sprintf("Removed checklist entry %q from %q", entry.Text, item.Name), &canvas.Delta{
					Updated: []string{item.ID},
					Summary: fmt.Sprintf("removed checklist entry %s from project %s", entryID, item.ID),
				}, nil
			}
			return "", nil, NotFound("removeProjectChecklistItem",
				fmt.Sprintf("checklist entry %q does not exist in item %q", entryID, item.ID))
		},
	})
}
