package ai

import "github.com/poiesic/grocer/core"

// CategoryNames lists the category values a model may answer with, in aisle order.
func CategoryNames() []string {
	names := make([]string, len(core.DisplayOrder))
	for i, c := range core.DisplayOrder {
		names[i] = string(c)
	}
	return names
}
