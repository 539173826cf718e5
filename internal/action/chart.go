package action

import (
	"fmt"

	"google.golang.org/genai"

	"canvassist/internal/auth"
	"canvassist/internal/canvas"
)

func findMetric(p *canvas.ChartPayload, id string) *canvas.Metric {
	for i := range p.Field1 {
		if p.Field1[i].ID == id {
			return &p.Field1[i]
		}
	}
	return nil
}

func registerChartActions(c *Catalog) {
	c.MustRegister(&Descriptor{
		Name:        "addChartField1",
		Description: "Add a metric to a chart, optionally with an initial value.",
		Required:    auth.PermEditChart,
		Mutating:    true,
		ItemScoped:  true,
		Declaration: &genai.FunctionDeclaration{
			Name:        "addChartField1",
			Description: "Add a metric to a chart, optionally with an initial value.",
			Parameters: objectSchema(map[string]*genai.Schema{
				"itemId": itemIDParam(),
				"label":  stringParam("Metric label"),
				"value":  numberParam("Initial value between 0 and 100 (optional)"),
			}, "itemId", "label"),
		},
		Apply: func(st *canvas.State, args map[string]any) (string, *canvas.Delta, error) {
			item, err := requireItem("addChartField1", st, args, canvas.TypeChart)
			if err != nil {
				return "", nil, err
			}
			label, err := requireString("addChartField1", args, "label")
			if err != nil {
				return "", nil, err
			}

			metric := canvas.Metric{ID: canvas.NewID("mtr"), Label: label}
			if v, ok := GetFloat(args, "value"); ok {
				if v < 0 || v > 100 {
					return "", nil, InvalidArgument("addChartField1", "value", "must be between 0 and 100")
				}
				metric.Value = &v
			}
			item.Chart.Field1 = append(item.Chart.Field1, metric)

			return fmt.Sprintf("Added metric %q to %q", label, item.Name), &canvas.Delta{
				Updated: []string{item.ID},
				Summary: fmt.Sprintf("added metric %q (%s) to chart %s", label, metric.ID, item.ID),
			}, nil
		},
	})

	c.MustRegister(&Descriptor{
		Name:        "setChartField1Label",
		Description: "Rename a chart metric.",
		Required:    auth.PermEditChart,
		Mutating:    true,
		ItemScoped:  true,
		Declaration: &genai.FunctionDeclaration{
			Name:        "setChartField1Label",
			Description: "Rename a chart metric.",
			Parameters: objectSchema(map[string]*genai.Schema{
				"itemId":   itemIDParam(),
				"metricId": stringParam("Identifier of the metric"),
				"label":    stringParam("New label"),
			}, "itemId", "metricId", "label"),
		},
		Apply: func(st *canvas.State, args map[string]any) (string, *canvas.Delta, error) {
			item, err := requireItem("setChartField1Label", st, args, canvas.TypeChart)
			if err != nil {
				return "", nil, err
			}
			metricID, err := requireString("setChartField1Label", args, "metricId")
			if err != nil {
				return "", nil, err
			}
			label, err := requireString("setChartField1Label", args, "label")
			if err != nil {
				return "", nil, err
			}

			metric := findMetric(item.Chart, metricID)
			if metric == nil {
				return "", nil, NotFound("setChartField1Label",
					fmt.Sprintf("metric %q does not exist in item %q", metricID, item.ID))
			}
			metric.Label = label

			return fmt.Sprintf("Renamed metric to %q in %q", label, item.Name), &canvas.Delta{
				Updated: []string{item.ID},
				Summary: fmt.Sprintf("renamed metric %s in chart %s to %q", metricID, item.ID, label),
			}, nil
		},
	})

	c.MustRegister(&Descriptor{
		Name:        "setChartField1Value",
		Description: "Set a chart metric's value (0 to 100).",
		Required:    auth.PermEditChart,
		Mutating:    true,
		ItemScoped:  true,
		Declaration: &genai.FunctionDeclaration{
			Name:        "setChartField1Value",
			Description: "Set a chart metric's value (0 to 100).",
			Parameters: objectSchema(map[string]*genai.Schema{
				"itemId":   itemIDParam(),
				"metricId": stringParam("Identifier of the metric"),
				"value":    numberParam("New value between 0 and 100"),
			}, "itemId", "metricId", "value"),
		},
		Apply: func(st *canvas.State, args map[string]any) (string, *canvas.Delta, error) {
			item, err := requireItem("setChartField1Value", st, args, canvas.TypeChart)
			if err != nil {
				return "", nil, err
			}
			metricID, err := requireString("setChartField1Value", args, "metricId")
			if err != nil {
				return "", nil, err
			}
			value, ok := GetFloat(args, "value")
			if !ok {
				return "", nil, InvalidArgument("setChartField1Value", "value", "required")
			}
			if value < 0 || value > 100 {
				return "", nil, InvalidArgument("setChartField1Value", "value", "must be between 0 and 100")
			}

			metric := findMetric(item.Chart, metricID)
			if metric == nil {
				return "", nil, NotFound("setChartField1Value",
					fmt.Sprintf("metric %q does not exist in item %q", metricID, item.ID))
			}
			metric.Value = &value

			return fmt.Sprintf("Set %q to %.0f in %q", metric.Label, value, item.Name), &canvas.Delta{
				Updated: []string{item.ID},
				Summary: fmt.Sprintf("set metric %s in chart %s to %.0f", metricID, item.ID, value),
			}, nil
		},
	})

	c.MustRegister(&Descriptor{
		Name:        "clearChartField1Value",
		Description: "Clear a chart metric's value.",
		Required:    auth.PermEditChart,
		Mutating:    true,
		ItemScoped:  true,
		Declaration: &genai.FunctionDeclaration{
			Name:        "clearChartField1Value",
			Description: "Clear a chart metric's value.",
			Parameters: objectSchema(map[string]*genai.Schema{
				"itemId":   itemIDParam(),
				"metricId": stringParam("Identifier of the metric"),
			}, "itemId", "metricId"),
		},
		Apply: func(st *canvas.State, args map[string]any) (string, *canvas.Delta, error) {
			item, err := requireItem("clearChartField1Value", st, args, canvas.TypeChart)
			if err != nil {
				return "", nil, err
			}
			metricID, err := requireString("clearChartField1Value", args, "metricId")
			if err != nil {
				return "", nil, err
			}

			metric := findMetric(item.Chart, metricID)
			if metric == nil {
				return "", nil, NotFound("clearChartField1Value",
					fmt.Sprintf("metric %q does not exist in item %q", metricID, item.ID))
			}
			metric.Value = nil

			return fmt.Sprintf("Cleared %q in %q", metric.Label, item.Name), &canvas.Delta{
				Updated: []string{item.ID},
				Summary: fmt.Sprintf("cleared metric %s in chart %s", metricID, item.ID),
			}, nil
		},
	})

	c.MustRegister(&Descriptor{
		Name:        "removeChartField1",
		Description: "Remove a metric from a chart.",
		Required:    auth.PermEditChart,
		Mutating:    true,
		ItemScoped:  true,
		Declaration: &genai.FunctionDeclaration{
			Name:        "removeChartField1",
			Description: "Remove a metric from a chart.",
			Parameters: objectSchema(map[string]*genai.Schema{
				"itemId":   itemIDParam(),
				"metricId": stringParam("Identifier of the metric"),
			}, "itemId", "metricId"),
		},
		Apply: func(st *canvas.State, args map[string]any) (string, *canvas.Delta, error) {
			item, err := requireItem("removeChartField1", st, args, canvas.TypeChart)
			if err != nil {
				return "", nil, err
			}
			metricID, err := requireString("removeChartField1", args, "metricId")
			if err != nil {
				return "", nil, err
			}

			for i, metric := range item.Chart.Field1 {
				if metric.ID != metricID {
					continue
				}
				item.Chart.Field1 = append(item.Chart.Field1[:i], item.Chart.Field1[i+1:]...)
				return fmt.Sprintf("Removed metric %q from %q", metric.Label, item.Name), &canvas.Delta{
					Updated: []string{item.ID},
					Summary: fmt.Sprintf("removed metric %s from chart %s", metricID, item.ID),
				}, nil
			}
			return "", nil, NotFound("removeChartField1",
				fmt.Sprintf("metric %q does not exist in item %q", metricID, item.ID))
		},
	})
}
