package action

import (
	"fmt"

	"google.golang.org/genai"

	"canvassist/internal/auth"
	"canvassist/internal/canvas"
)

func registerEntityActions(c *Catalog) {
	c.MustRegister(&Descriptor{
		Name:        "setEntityField1",
		Description: "Set an entity's text field.",
		Required:    auth.PermEditEntity,
		Mutating:    true,
		ItemScoped:  true,
		Declaration: &genai.FunctionDeclaration{
			Name:        "setEntityField1",
			Description: "Set an entity's text field.",
			Parameters: objectSchema(map[string]*genai.Schema{
				"itemId": itemIDParam(),
				"value":  stringParam("New text value"),
			}, "itemId", "value"),
		},
		Apply: func(st *canvas.State, args map[string]any) (string, *canvas.Delta, error) {
			item, err := requireItem("setEntityField1", st, args, canvas.TypeEntity)
			if err != nil {
				return "", nil, err
			}
			value, ok := GetString(args, "value")
			if !ok {
				return "", nil, InvalidArgument("setEntityField1", "value", "required")
			}
			item.Entity.Field1 = value

			return fmt.Sprintf("Updated field1 of %q", item.Name), &canvas.Delta{
				Updated: []string{item.ID},
				Summary: fmt.Sprintf("set field1 of entity %s", item.ID),
			}, nil
		},
	})

	c.MustRegister(&Descriptor{
		Name:        "setEntityField2",
		Description: "Set an entity's select field (A, B, or C).",
		Required:    auth.PermEditEntity,
		Mutating:    true,
		ItemScoped:  true,
		Declaration: &genai.FunctionDeclaration{
			Name:        "setEntityField2",
			Description: "Set an entity's select field (A, B, or C).",
			Parameters: objectSchema(map[string]*genai.Schema{
				"itemId": itemIDParam(),
				"value":  enumParam("New select value", canvas.Field2Options),
			}, "itemId", "value"),
		},
		Apply: func(st *canvas.State, args map[string]any) (string, *canvas.Delta, error) {
			item, err := requireItem("setEntityField2", st, args, canvas.TypeEntity)
			if err != nil {
				return "", nil, err
			}
			value, err := requireString("setEntityField2", args, "value")
			if err != nil {
				return "", nil, err
			}
			if !canvas.ValidField2(value) {
				return "", nil, InvalidArgument("setEntityField2", "value", "must be A, B, or C")
			}
			item.Entity.Field2 = value

			return fmt.Sprintf("Set field2 of %q to %s", item.Name, value), &canvas.Delta{
				Updated: []string{item.ID},
				Summary: fmt.Sprintf("set field2 of entity %s to %s", item.ID, value),
			}, nil
		},
	})

	c.MustRegister(&Descriptor{
		Name:        "addEntityField3",
		Description: "Add a tag to an entity. The tag also joins the entity's option list.",
		Required:    auth.PermEditEntity,
		Mutating:    true,
		ItemScoped:  true,
		Declaration: &genai.FunctionDeclaration{
			Name:        "addEntityField3",
			Description: "Add a tag to an entity. The tag also joins the entity's option list.",
			Parameters: objectSchema(map[string]*genai.Schema{
				"itemId": itemIDParam(),
				"tag":    stringParam("Tag to add"),
			}, "itemId", "tag"),
		},
		Apply: func(st *canvas.State, args map[string]any) (string, *canvas.Delta, error) {
			item, err := requireItem("addEntityField3", st, args, canvas.TypeEntity)
			if err != nil {
				return "", nil, err
			}
			tag, err := requireString("addEntityField3", args, "tag")
			if err != nil {
				return "", nil, err
			}

			if !containsString(item.Entity.Field3, tag) {
				item.Entity.Field3 = append(item.Entity.Field3, tag)
			}
			if !containsString(item.Entity.Field3Options, tag) {
				item.Entity.Field3Options = append(item.Entity.Field3Options, tag)
			}

			return fmt.Sprintf("Added tag %q to %q", tag, item.Name), &canvas.Delta{
				Updated: []string{item.ID},
				Summary: fmt.Sprintf("added tag %q to entity %s", tag, item.ID),
			}, nil
		},
	})

	c.MustRegister(&Descriptor{
		Name:        "removeEntityField3",
		Description: "Remove a tag from an entity. The option list keeps the tag.",
		Required:    auth.PermEditEntity,
		Mutating:    true,
		ItemScoped:  true,
		Declaration: &genai.FunctionDeclaration{
			Name:        "removeEntityField3",
			Description: "Remove a tag from an entity. The option list keeps the tag.",
			Parameters: objectSchema(map[string]*genai.Schema{
				"itemId": itemIDParam(),
				"tag":    stringParam("Tag to remove"),
			}, "itemId", "tag"),
		},
		Apply: func(st *canvas.State, args map[string]any) (string, *canvas.Delta, error) {
			item, err := requireItem("removeEntityField3", st, args, canvas.TypeEntity)
			if err != nil {
				return "", nil, err
			}
			tag, err := requireString("removeEntityField3", args, "tag")
			if err != nil {
				return "", nil, err
			}

			for i, existing := range item.Entity.Field3 {
				if existing == tag {
					item.Entity.Field3 = append(item.Entity.Field3[:i], item.Entity.Field3[i+1:]...)
					return fmt.Sprintf("Removed tag %q from %q", tag, item.Name), &canvas.Delta{
						Updated: []string{item.ID},
						Summary: fmt.Sprintf("removed tag %q from entity %s", tag, item.ID),
					}, nil
				}
			}
			return "", nil, NotFound("removeEntityField3",
				fmt.Sprintf("tag %q is not set on item %q", tag, item.ID))
		},
	})
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
