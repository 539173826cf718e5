// Package canvas holds the shared cross-turn state: typed items,
// global fields, the last-action marker, and the plan.
package canvas

import (
	"fmt"

	"github.com/google/uuid"
)

// ItemType is the closed set of item kinds.
type ItemType string

const (
	TypeProject ItemType = "project"
	TypeEntity  ItemType = "entity"
	TypeNote    ItemType = "note"
	TypeChart   ItemType = "chart"
)

// ValidItemType reports whether t is one of the four item kinds.
func ValidItemType(t ItemType) bool {
	switch t {
	case TypeProject, TypeEntity, TypeNote, TypeChart:
		return true
	}
	return false
}

// ChecklistEntry is one row of a project checklist. IDs are assigned at
// creation and never reused.
type ChecklistEntry struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Done     bool   `json:"done"`
	Proposed bool   `json:"proposed"`
}

// Metric is one chart data point. Value is nil while unset; when set it
// lies in [0, 100].
type Metric struct {
	ID    string   `json:"id"`
	Label string   `json:"label"`
	Value *float64 `json:"value,omitempty"`
}

// ProjectPayload is the project item payload.
type ProjectPayload struct {
	Field1 string           `json:"field1"`
	Field2 string           `json:"field2"`
	Field3 string           `json:"field3"`
	Field4 []ChecklistEntry `json:"field4"`
}

// EntityPayload is the entity item payload.
type EntityPayload struct {
	Field1        string   `json:"field1"`
	Field2        string   `json:"field2"`
	Field3        []string `json:"field3"`
	Field3Options []string `json:"field3_options"`
}

// NotePayload is the note item payload.
type NotePayload struct {
	Field1 string `json:"field1"`
}

// ChartPayload is the chart item payload.
type ChartPayload struct {
	Field1 []Metric `json:"field1"`
}

// Item is one canvas entry. Exactly one payload pointer is non-nil and
// it matches Type.
type Item struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Type        ItemType `json:"type"`

	Project *ProjectPayload `json:"project,omitempty"`
	Entity  *EntityPayload  `json:"entity,omitempty"`
	Note    *NotePayload    `json:"note,omitempty"`
	Chart   *ChartPayload   `json:"chart,omitempty"`
}

// Field2Options enumerates the valid values for the project and entity
// enum field.
var Field2Options = []string{"A", "B", "C"}

// ValidField2 reports whether v is a valid enum value.
func ValidField2(v string) bool {
	for _, opt := range Field2Options {
		if v == opt {
			return true
		}
	}
	return false
}

// NewItem creates an item of the given type with creation-time defaults
// and a fresh id.
func NewItem(t ItemType, name string) (*Item, error) {
	if !ValidItemType(t) {
		return nil, fmt.Errorf("unknown item type %q", t)
	}

	item := &Item{
		ID:   NewID(idPrefix(t)),
		Name: name,
		Type: t,
	}
	if item.Name == "" {
		item.Name = fmt.Sprintf("New %s", t)
	}

	switch t {
	case TypeProject:
		item.Project = &ProjectPayload{Field2: "A", Field4: []ChecklistEntry{}}
	case TypeEntity:
		item.Entity = &EntityPayload{Field2: "A", Field3: []string{}, Field3Options: []string{}}
	case TypeNote:
		item.Note = &NotePayload{}
	case TypeChart:
		item.Chart = &ChartPayload{Field1: []Metric{}}
	}

	return item, nil
}

// Clone deep-copies the item.
func (i *Item) Clone() *Item {
	out := *i
	if i.Project != nil {
		p := *i.Project
		p.Field4 = append([]ChecklistEntry(nil), i.Project.Field4...)
		out.Project = &p
	}
	if i.Entity != nil {
		e := *i.Entity
		e.Field3 = append([]string(nil), i.Entity.Field3...)
		e.Field3Options = append([]string(nil), i.Entity.Field3Options...)
		out.Entity = &e
	}
	if i.Note != nil {
		n := *i.Note
		out.Note = &n
	}
	if i.Chart != nil {
		c := *i.Chart
		c.Field1 = make([]Metric, len(i.Chart.Field1))
		for j, m := range i.Chart.Field1 {
			c.Field1[j] = m
			if m.Value != nil {
				v := *m.Value
				c.Field1[j].Value = &v
			}
		}
		out.Chart = &c
	}
	return &out
}

// Summary returns the one-line grounding description of the item.
func (i *Item) Summary() string {
	return fmt.Sprintf("id=%s • name=%s • type=%s", i.ID, i.Name, i.Type)
}

func idPrefix(t ItemType) string {
	switch t {
	case TypeProject:
		return "prj"
	case TypeEntity:
		return "ent"
	case TypeNote:
		return "note"
	case TypeChart:
		return "cht"
	}
	return "itm"
}

// NewID returns a short unique id with the given prefix.
func NewID(prefix string) string {
	return prefix + "_" + uuid.NewString()[:8]
}
