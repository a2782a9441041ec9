package main

import (
	"fmt"
	"strings"

	"github.com/poiesic/grocer/core"
)

// formatEntry renders one list line: name, quantity, aisle and storage guidance.
func formatEntry(e *core.GroceryEntry) string {
	var b strings.Builder
	b.WriteString(e.Name)
	if e.Quantity != nil {
		fmt.Fprintf(&b, " (%s)", *e.Quantity)
	}
	fmt.Fprintf(&b, " [%s]", e.Category.DisplayName())
	if e.Confidence == core.ConfidenceLow {
		b.WriteString(" ?")
	}
	if shelf := formatShelfLife(e.ShelfLifeDaysMin, e.ShelfLifeDaysMax); shelf != "" {
		fmt.Fprintf(&b, " %s", shelf)
	}
	if e.StorageAdvice != nil {
		fmt.Fprintf(&b, " - %s", *e.StorageAdvice)
	}
	return b.String()
}

func formatKnowledge(r *core.KnowledgeRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s, source %s", r.Category.DisplayName(), r.Source)
	if shelf := formatShelfLife(r.ShelfLifeDaysMin, r.ShelfLifeDaysMax); shelf != "" {
		fmt.Fprintf(&b, ", %s", shelf)
	}
	if r.StorageAdvice != nil {
		fmt.Fprintf(&b, ", %s", *r.StorageAdvice)
	}
	fmt.Fprintf(&b, " (updated %s)", r.UpdatedAt.Format("2006-01-02"))
	return b.String()
}

func formatShelfLife(lo, hi *int) string {
	switch {
	case lo != nil && hi != nil && *lo != *hi:
		return fmt.Sprintf("%d-%d days", *lo, *hi)
	case lo != nil:
		return fmt.Sprintf("%d days", *lo)
	case hi != nil:
		return fmt.Sprintf("%d days", *hi)
	}
	return ""
}
