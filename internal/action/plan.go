package action

import (
	"fmt"

	"google.golang.org/genai"

	"canvassist/internal/auth"
	"canvassist/internal/canvas"
)

func registerPlanActions(c *Catalog) {
	c.MustRegister(&Descriptor{
		Name:        "setPlan",
		Description: "Replace the working plan with a new list of steps.",
		Required:    auth.PermCreatePlan,
		Mutating:    true,
		Declaration: &genai.FunctionDeclaration{
			Name:        "setPlan",
			Description: "Replace the working plan with a new list of steps.",
			Parameters: objectSchema(map[string]*genai.Schema{
				"steps": stringListParam("Ordered step titles"),
			}, "steps"),
		},
		Apply: func(st *canvas.State, args map[string]any) (string, *canvas.Delta, error) {
			titles, ok := GetStringSlice(args, "steps")
			if !ok || len(titles) == 0 {
				return "", nil, InvalidArgument("setPlan", "steps", "at least one step is required")
			}

			plan := &canvas.Plan{Steps: make([]canvas.PlanStep, len(titles))}
			for i, title := range titles {
				plan.Steps[i] = canvas.PlanStep{ID: canvas.NewID("stp"), Title: title}
			}
			st.Plan = plan

			return fmt.Sprintf("Plan set with %d steps", len(titles)), &canvas.Delta{
				GlobalFields: []string{"plan"},
				Summary:      fmt.Sprintf("set a plan with %d steps", len(titles)),
			}, nil
		},
	})

	c.MustRegister(&Descriptor{
		Name:        "updatePlanProgress",
		Description: "Mark a plan step as done or not done.",
		Required:    auth.PermExecutePlan,
		Mutating:    true,
		Declaration: &genai.FunctionDeclaration{
			Name:        "updatePlanProgress",
			Description: "Mark a plan step as done or not done.",
			Parameters: objectSchema(map[string]*genai.Schema{
				"stepId": stringParam("Identifier of the plan step"),
				"done":   boolParam("New done flag"),
			}, "stepId", "done"),
		},
		Apply: func(st *canvas.State, args map[string]any) (string, *canvas.Delta, error) {
			if st.Plan == nil {
				return "", nil, NotFound("updatePlanProgress", "no plan exists")
			}
			stepID, err := requireString("updatePlanProgress", args, "stepId")
			if err != nil {
				return "", nil, err
			}
			done, ok := GetBool(args, "done")
			if !ok {
				return "", nil, InvalidArgument("updatePlanProgress", "done", "required")
			}

			for i := range st.Plan.Steps {
				step := &st.Plan.Steps[i]
				if step.ID != stepID {
					continue
				}
				step.Done = done
				verb := "reopened"
				if done {
					verb = "completed"
				}
				return fmt.Sprintf("Step %q %s", step.Title, verb), &canvas.Delta{
					GlobalFields: []string{"plan"},
					Summary:      fmt.Sprintf("%s plan step %q", verb, step.Title),
				}, nil
			}
			return "", nil, NotFound("updatePlanProgress",
				fmt.Sprintf("plan step %q does not exist", stepID))
		},
	})

	c.MustRegister(&Descriptor{
		Name:        "completePlan",
		Description: "Mark the whole plan as completed.",
		Required:    auth.PermManagePlan,
		Mutating:    true,
		Declaration: &genai.FunctionDeclaration{
			Name:        "completePlan",
			Description: "Mark the whole plan as completed.",
			Parameters:  objectSchema(map[string]*genai.Schema{}),
		},
		Apply: func(st *canvas.State, args map[string]any) (string, *canvas.Delta, error) {
			if st.Plan == nil {
				return "", nil, NotFound("completePlan", "no plan exists")
			}
			for i := range st.Plan.Steps {
				st.Plan.Steps[i].Done = true
			}
			st.Plan.Completed = true

			return "Plan marked as completed", &canvas.Delta{
				GlobalFields: []string{"plan"},
				Summary:      "completed the plan",
			}, nil
		},
	})
}
