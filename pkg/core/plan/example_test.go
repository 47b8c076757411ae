package plan_test

import (
	"fmt"

	"github.com/matzehuels/handscript/pkg/core/plan"
)

func ExamplePlanDocument() {
	pages := []string{"Kinetic Energy\nQ1. Define momentum\nCompute 3/4 of the total"}

	p := plan.PlanDocument(pages, nil, 42)

	for _, l := range p.Pages[0].Lines {
		fmt.Printf("%d %-26q question=%v heading=%v fraction=%v indent=%v\n",
			l.LineNumber, l.Content, l.IsQuestionNumber, l.IsHeading, l.IsFraction, l.Indent)
	}
	// Output:
	// 1 "Kinetic Energy"           question=false heading=true fraction=false indent=25
	// 2 "Q1. Define momentum"      question=true heading=false fraction=false indent=5
	// 3 "Compute 3/4 of the total" question=false heading=true fraction=true indent=25
}
