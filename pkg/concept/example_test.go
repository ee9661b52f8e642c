package concept_test

import (
	"fmt"

	"github.com/matzehuels/tiergraph/pkg/concept"
)

func ExampleClassifyTransition() {
	for _, tag := range []string{"L1-L2", "L2-L1", "L2-L2", "L1-L3", "L9"} {
		fmt.Println(tag, concept.ClassifyTransition(tag).Verdict)
	}
	// Output:
	// L1-L2 valid
	// L2-L1 reverse
	// L2-L2 same-layer
	// L1-L3 skip-layer
	// L9 unrecognized
}
