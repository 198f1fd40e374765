package services

import (
	"context"
	"fmt"
)

// ensureContext guards against nil contexts from callers in tests.
func ensureContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

// formatPrice renders a minor-unit price as a decimal string, e.g. 1250 -> "12.50".
func formatPrice(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
