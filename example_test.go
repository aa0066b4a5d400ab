package sahayak_test

import (
	"context"
	"fmt"
	"log"

	sahayak "github.com/opencivic/sahayak"
	"github.com/opencivic/sahayak/pkg/domain"
	"github.com/opencivic/sahayak/pkg/rules"
	"github.com/opencivic/sahayak/pkg/scheme"
)

// ExampleNew_catalog demonstrates driving a full application with an
// in-code catalog. This is useful for testing and embedded scenarios
// where no catalog file exists on disk.
func ExampleNew_catalog() {
	// 1. Define a scheme: the questions to ask and the rules to check.
	catalog := scheme.NewStatic([]scheme.Scheme{{
		Name:        "pm_kisan",
		DisplayName: "PM-KISAN",
		Slots: []scheme.Slot{
			{Key: "occupation", Type: domain.SlotTypeString, Prompt: "What is your occupation?"},
			{Key: "land_acres", Type: domain.SlotTypeFloat, Prompt: "How many acres of land do you own?"},
		},
		Rules: rules.RuleSet{
			Mandatory: []rules.Rule{
				{Field: "occupation", Operator: rules.OpIn, Value: []any{"Farmer"}, Label: "Must be a farmer"},
			},
		},
	}})

	// 2. Initialize the engine. The catalog path is empty because the
	// catalog is provided directly.
	engine, err := sahayak.New(context.Background(), "", sahayak.WithCatalog(catalog))
	if err != nil {
		log.Fatal(err)
	}

	// 3. Walk one caller through the application.
	ctx := context.Background()
	turns := []string{"start_apply:pm_kisan", "Farmer", "2", "submit"}
	for _, input := range turns {
		result, err := engine.HandleInput(ctx, "caller-1", input)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(result.CurrentState)
	}

	// Output:
	// CollectingSlots
	// CollectingSlots
	// EligibleConfirmed
	// Completed
}
