package action

import (
	"fmt"

	"google.golang.org/genai"

	"canvassist/internal/auth"
	"canvassist/internal/canvas"
	"canvassist/internal/logging"
	"canvassist/internal/permission"
)

// ApplyFunc mutates the working state copy and reports what changed.
// The store discards the copy when an error is returned.
type ApplyFunc func(*canvas.State, map[string]any) (string, *canvas.Delta, error)

// Descriptor defines one action: its identity, required permission,
// provider-facing declaration, validation, and effect. Descriptors are
// registered at startup and never mutated afterwards.
type Descriptor struct {
	Name        string
	Description string
	Required    auth.Permission
	Mutating    bool
	ItemScoped  bool
	Declaration *genai.FunctionDeclaration
	Validate    func(args map[string]any) error
	Apply       ApplyFunc
}

// Catalog holds every registered action in registration order.
type Catalog struct {
	order  []string
	byName map[string]*Descriptor
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{byName: make(map[string]*Descriptor)}
}

// Register adds a descriptor to the catalog.
func (c *Catalog) Register(d *Descriptor) error {
	if d.Name == "" {
		return fmt.Errorf("descriptor has no name")
	}
	if _, exists := c.byName[d.Name]; exists {
		return fmt.Errorf("action %q already registered", d.Name)
	}
	c.byName[d.Name] = d
	c.order = append(c.order, d.Name)
	return nil
}

// MustRegister registers a descriptor and logs on failure.
func (c *Catalog) MustRegister(d *Descriptor) {
	if err := c.Register(d); err != nil {
		logging.Warn("failed to register action", "action", d.Name, "error", err)
	}
}

// Get returns a descriptor by name.
func (c *Catalog) Get(name string) (*Descriptor, bool) {
	d, ok := c.byName[name]
	return d, ok
}

// Names returns every action id in registration order.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Declarations returns the provider declarations for the given action
// ids, preserving order. Unknown ids are skipped.
func (c *Catalog) Declarations(names []string) []*genai.FunctionDeclaration {
	out := make([]*genai.FunctionDeclaration, 0, len(names))
	for _, name := range names {
		if d, ok := c.byName[name]; ok && d.Declaration != nil {
			out = append(out, d.Declaration)
		}
	}
	return out
}

// BuildRegistry fills a permission registry from the catalog.
func (c *Catalog) BuildRegistry() *permission.Registry {
	reg := permission.NewRegistry()
	for _, name := range c.order {
		reg.Register(name, c.byName[name].Required)
	}
	return reg
}

// Validate checks catalog consistency. A descriptor without an effect
// or declaration is a startup configuration error, the only fatal kind.
func (c *Catalog) Validate() error {
	for _, name := range c.order {
		d := c.byName[name]
		if d.Apply == nil {
			return fmt.Errorf("action %q has no executor", name)
		}
		if d.Declaration == nil {
			return fmt.Errorf("action %q has no declaration", name)
		}
	}
	return nil
}

// DefaultCatalog returns the full action catalog.
func DefaultCatalog() *Catalog {
	c := NewCatalog()
	registerGlobalActions(c)
	registerItemActions(c)
	registerProjectActions(c)
	registerEntityActions(c)
	registerNoteActions(c)
	registerChartActions(c)
	registerPlanActions(c)
	return c
}

// Schema helpers shared by the declaration builders.

func stringParam(desc string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeString, Description: desc}
}

func enumParam(desc string, values []string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeString, Description: desc, Enum: values}
}

func numberParam(desc string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeNumber, Description: desc}
}

func boolParam(desc string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeBoolean, Description: desc}
}

func stringListParam(desc string) *genai.Schema {
	return &genai.Schema{
		Type:        genai.TypeArray,
		Description: desc,
		Items:       &genai.Schema{Type: genai.TypeString},
	}
}

func objectSchema(props map[string]*genai.Schema, required ...string) *genai.Schema {
	return &genai.Schema{
		Type:       genai.TypeObject,
		Properties: props,
		Required:   required,
	}
}

func itemIDParam() *genai.Schema {
	return stringParam("Identifier of the target item")
}

// requireString validates that a string argument is present and
// non-empty.
func requireString(actionID string, args map[string]any, key string) (string, error) {
	val, ok := GetString(args, key)
	if !ok || val == "" {
		return "", InvalidArgument(actionID, key, "required")
	}
	return val, nil
}

// requireItem resolves an item-scoped action's target and checks the
// type tag. A missing id is a schema error; an unknown id is a stale
// reference.
func requireItem(actionID string, st *canvas.State, args map[string]any, want canvas.ItemType) (*canvas.Item, error) {
	id, ok := GetString(args, "itemId")
	if !ok || id == "" {
		return nil, InvalidArgument(actionID, "itemId", "required")
	}
	item := st.Item(id)
	if item == nil {
		return nil, NotFound(actionID, fmt.Sprintf("item %q does not exist", id))
	}
	if want != "" && item.Type != want {
		return nil, InvalidArgument(actionID, "itemId",
			fmt.Sprintf("item %q is a %s, not a %s", id, item.Type, want))
	}
	return item, nil
}
