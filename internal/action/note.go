package action

import (
	"fmt"

	"google.golang.org/genai"

	"canvassist/internal/auth"
	"canvassist/internal/canvas"
)

func registerNoteActions(c *Catalog) {
	c.MustRegister(&Descriptor{
		Name:        "setNoteField1",
		Description: "Replace a note's text.",
		Required:    auth.PermEditNote,
		Mutating:    true,
		ItemScoped:  true,
		Declaration: &genai.FunctionDeclaration{
			Name:        "setNoteField1",
			Description: "Replace a note's text.",
			Parameters: objectSchema(map[string]*genai.Schema{
				"itemId": itemIDParam(),
				"value":  stringParam("New note text"),
			}, "itemId", "value"),
		},
		Apply: func(st *canvas.State, args map[string]any) (string, *canvas.Delta, error) {
			item, err := requireItem("setNoteField1", st, args, canvas.TypeNote)
			if err != nil {
				return "", nil, err
			}
			value, ok := GetString(args, "value")
			if !ok {
				return "", nil, InvalidArgument("setNoteField1", "value", "required")
			}
			before := item.Note.Field1
			item.Note.Field1 = value

			return fmt.Sprintf("Updated note %q", item.Name), &canvas.Delta{
				Updated: []string{item.ID},
				Summary: fmt.Sprintf("edited note %s (%s)", item.ID, canvas.DiffText(before, value)),
			}, nil
		},
	})

	c.MustRegister(&Descriptor{
		Name:        "appendNoteField1",
		Description: "Append text to a note, on a new line when the note is not empty.",
		Required:    auth.PermEditNote,
		Mutating:    true,
		ItemScoped:  true,
		Declaration: &genai.FunctionDeclaration{
			Name:        "appendNoteField1",
			Description: "Append text to a note, on a new line when the note is not empty.",
			Parameters: objectSchema(map[string]*genai.Schema{
				"itemId": itemIDParam(),
				"value":  stringParam("Text to append"),
			}, "itemId", "value"),
		},
		Apply: func(st *canvas.State, args map[string]any) (string, *canvas.Delta, error) {
			item, err := requireItem("appendNoteField1", st, args, canvas.TypeNote)
			if err != nil {
				return "", nil, err
			}
			value, err := requireString("appendNoteField1", args, "value")
			if err != nil {
				return "", nil, err
			}
			if item.Note.Field1 == "" {
				item.Note.Field1 = value
			} else {
				item.Note.Field1 += "\n" + value
			}

			return fmt.Sprintf("Appended to note %q", item.Name), &canvas.Delta{
				Updated: []string{item.ID},
				Summary: fmt.Sprintf("appended to note %s (+%d chars)", item.ID, len(value)),
			}, nil
		},
	})

	c.MustRegister(&Descriptor{
		Name:        "clearNoteField1",
		Description: "Clear a note's text.",
		Required:    auth.PermEditNote,
		Mutating:    true,
		ItemScoped:  true,
		Declaration: &genai.FunctionDeclaration{
			Name:        "clearNoteField1",
			Description: "Clear a note's text.",
			Parameters: objectSchema(map[string]*genai.Schema{
				"itemId": itemIDParam(),
			}, "itemId"),
		},
		Apply: func(st *canvas.State, args map[string]any) (string, *canvas.Delta, error) {
			item, err := requireItem("clearNoteField1", st, args, canvas.TypeNote)
			if err != nil {
				return "", nil, err
			}
			item.Note.Field1 = ""

			return fmt.Sprintf("Cleared note %q", item.Name), &canvas.Delta{
				Updated: []string{item.ID},
				Summary: fmt.Sprintf("cleared note %s", item.ID),
			}, nil
		},
	})
}
