package action

import (
	"fmt"

	"google.golang.org/genai"

	"canvassist/internal/auth"
	"canvassist/internal/canvas"
)

func registerGlobalActions(c *Catalog) {
	c.MustRegister(&Descriptor{
		Name:        "setGlobalTitle",
		Description: "Set the canvas title.",
		Required:    auth.PermWriteCanvas,
		Mutating:    true,
		Declaration: &genai.FunctionDeclaration{
			Name:        "setGlobalTitle",
			Description: "Set the canvas title.",
			Parameters: objectSchema(map[string]*genai.Schema{
				"title": stringParam("New canvas title"),
			}, "title"),
		},
		Apply: func(st *canvas.State, args map[string]any) (string, *canvas.Delta, error) {
			title, err := requireString("setGlobalTitle", args, "title")
			if err != nil {
				return "", nil, err
			}
			st.GlobalTitle = title
			return fmt.Sprintf("Canvas title set to %q", title), &canvas.Delta{
				GlobalFields: []string{"globalTitle"},
				Summary:      fmt.Sprintf("set canvas title to %q", title),
			}, nil
		},
	})

	c.MustRegister(&Descriptor{
		Name:        "setGlobalDescription",
		Description: "Set the canvas description.",
		Required:    auth.PermWriteCanvas,
		Mutating:    true,
		Declaration: &genai.FunctionDeclaration{
			Name:        "setGlobalDescription",
			Description: "Set the canvas description.",
			Parameters: objectSchema(map[string]*genai.Schema{
				"description": stringParam("New canvas description"),
			}, "description"),
		},
		Apply: func(st *canvas.State, args map[string]any) (string, *canvas.Delta, error) {
			desc, ok := GetString(args, "description")
			if !ok {
				return "", nil, InvalidArgument("setGlobalDescription", "description", "required")
			}
			st.GlobalDescription = desc
			return "Canvas description updated", &canvas.Delta{
				GlobalFields: []string{"globalDescription"},
				Summary:      "set canvas description",
			}, nil
		},
	})
}

func registerItemActions(c *Catalog) {
	c.MustRegister(&Descriptor{
		Name:        "createItem",
		Description: "Create a new item of the given type on the canvas.",
		Required:    auth.PermWriteCanvas,
		Mutating:    true,
		Declaration: &genai.FunctionDeclaration{
			Name:        "createItem",
			Description: "Create a new item of the given type on the canvas.",
			Parameters: objectSchema(map[string]*genai.Schema{
				"type": enumParam("Item type", []string{"project", "entity", "note", "chart"}),
				"name": stringParam("Display name for the new item"),
			}, "type"),
		},
		Validate: func(args map[string]any) error {
			t, ok := GetString(args, "type")
			if !ok || !canvas.ValidItemType(canvas.ItemType(t)) {
				return InvalidArgument("createItem", "type", "must be project, entity, note, or chart")
			}
			return nil
		},
		Apply: func(st *canvas.State, args map[string]any) (string, *canvas.Delta, error) {
			t, _ := GetString(args, "type")
			name := GetStringDefault(args, "name", "")

			item, err := canvas.NewItem(canvas.ItemType(t), name)
			if err != nil {
				return "", nil, InvalidArgument("createItem", "type", err.Error())
			}
			st.Items = append(st.Items, item)
			st.ActiveItemID = item.ID

			return fmt.Sprintf("Created %s %q (%s)", item.Type, item.Name, item.ID), &canvas.Delta{
				Created: []string{item.ID},
				Summary: fmt.Sprintf("created %s %q (%s)", item.Type, item.Name, item.ID),
			}, nil
		},
	})

	c.MustRegister(&Descriptor{
		Name:        "deleteItem",
		Description: "Delete an item and everything inside it.",
		Required:    auth.PermDeleteCanvas,
		Mutating:    true,
		ItemScoped:  true,
		Declaration: &genai.FunctionDeclaration{
			Name:        "deleteItem",
			Description: "Delete an item and everything inside it.",
			Parameters: objectSchema(map[string]*genai.Schema{
				"itemId": itemIDParam(),
			}, "itemId"),
		},
		Apply: func(st *canvas.State, args map[string]any) (string, *canvas.Delta, error) {
			id, ok := GetString(args, "itemId")
			if !ok || id == "" {
				return "", nil, InvalidArgument("deleteItem", "itemId", "required")
			}
			item := st.Item(id)
			if item == nil {
				return "", nil, NotFound("deleteItem", fmt.Sprintf("item %q does not exist", id))
			}
			name := item.Name
			st.RemoveItem(id)

			return fmt.Sprintf("Deleted %q (%s)", name, id), &canvas.Delta{
				Removed: []string{id},
				Summary: fmt.Sprintf("deleted item %q (%s)", name, id),
			}, nil
		},
	})

	c.MustRegister(&Descriptor{
		Name:        "setItemName",
		Description: "Rename an item.",
		Required:    auth.PermWriteCanvas,
		Mutating:    true,
		ItemScoped:  true,
		Declaration: &genai.FunctionDeclaration{
			Name:        "setItemName",
			Description: "Rename an item.",
			Parameters: objectSchema(map[string]*genai.Schema{
				"itemId": itemIDParam(),
				"name":   stringParam("New display name"),
			}, "itemId", "name"),
		},
		Apply: func(st *canvas.State, args map[string]any) (string, *canvas.Delta, error) {
			item, err := requireItem("setItemName", st, args, "")
			if err != nil {
				return "", nil, err
			}
			name, err := requireString("setItemName", args, "name")
			if err != nil {
				return "", nil, err
			}
			old := item.Name
			item.Name = name

			return fmt.Sprintf("Renamed %q to %q", old, name), &canvas.Delta{
				Updated: []string{item.ID},
				Summary: fmt.Sprintf("renamed item %s from %q to %q", item.ID, old, name),
			}, nil
		},
	})

	c.MustRegister(&Descriptor{
		Name:        "setItemDescription",
		Description: "Set an item's description.",
		Required:    auth.PermWriteCanvas,
		Mutating:    true,
		ItemScoped:  true,
		Declaration: &genai.FunctionDeclaration{
			Name:        "setItemDescription",
			Description: "Set an item's description.",
			Parameters: objectSchema(map[string]*genai.Schema{
				"itemId":      itemIDParam(),
				"description": stringParam("New description"),
			}, "itemId", "description"),
		},
		Apply: func(st *canvas.State, args map[string]any) (string, *canvas.Delta, error) {
			item, err := requireItem("setItemDescription", st, args, "")
			if err != nil {
				return "", nil, err
			}
			desc, ok := GetString(args, "description")
			if !ok {
				return "", nil, InvalidArgument("setItemDescription", "description", "required")
			}
			item.Description = desc

			return fmt.Sprintf("Updated description of %q", item.Name), &canvas.Delta{
				Updated: []string{item.ID},
				Summary: fmt.Sprintf("set description of item %s", item.ID),
			}, nil
		},
	})

	c.MustRegister(&Descriptor{
		Name:        "setActiveItem",
		Description: "Mark an item as the one currently being discussed.",
		Required:    auth.PermReadCanvas,
		Mutating:    false,
		ItemScoped:  true,
		Declaration: &genai.FunctionDeclaration{
			Name:        "setActiveItem",
			Description: "Mark an item as the one currently being discussed.",
			Parameters: objectSchema(map[string]*genai.Schema{
				"itemId": itemIDParam(),
			}, "itemId"),
		},
		Apply: func(st *canvas.State, args map[string]any) (string, *canvas.Delta, error) {
			item, err := requireItem("setActiveItem", st, args, "")
			if err != nil {
				return "", nil, err
			}
			st.ActiveItemID = item.ID
			return fmt.Sprintf("Now focused on %q (%s)", item.Name, item.ID), &canvas.Delta{
				Summary: fmt.Sprintf("focused on item %q (%s)", item.Name, item.ID),
			}, nil
		},
	})
}
