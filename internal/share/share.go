// Package share turns a generated diet into a plain-text message for
// platform share actions.
package share

import (
	"context"
	"fmt"
	"strings"

	"diet-wizard/internal/diet"
)

const (
	// Title accompanies every shared message.
	Title = "Minha Dieta"
	// NoSupplements replaces the supplement list when the diet has none.
	NoSupplements = "Nenhum suplemento recomendado."
)

// Message is what a Sharer receives.
type Message struct {
	Message string
	Title   string
}

// Sharer performs the platform-level share. Its outcome has no effect on wizard state.
type Sharer interface {
	Share(ctx context.Context, msg Message) error
}

// Format renders the diet summary. It returns false for a missing or empty plan.
func Format(plan *diet.Plan) (string, bool) {
	if plan.IsEmpty() {
		return "", false
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Dieta: %s\n", plan.Name)
	fmt.Fprintf(&b, "- Objetivo: %s\n", plan.Objective)

	for _, meal := range plan.Meals {
		b.WriteString("\n")
		fmt.Fprintf(&b, "- Refeição: %s\n", meal.Name)
		fmt.Fprintf(&b, "- Horário: %s\n", meal.Time)
		fmt.Fprintf(&b, "- Alimentos: %s\n", strings.Join(meal.Foods, ", "))
	}

	b.WriteString("\n")
	if len(plan.Supplements) == 0 {
		fmt.Fprintf(&b, "- Dica de suplementos: %s", NoSupplements)
	} else {
		b.WriteString("- Dica de suplementos:")
		for _, s := range plan.Supplements {
			fmt.Fprintf(&b, "\n- %s", s)
		}
	}

	return b.String(), true
}

// Share formats the plan and hands it to the sharer. A missing or empty plan
// is a no-op and the sharer is not called.
func Share(ctx context.Context, s Sharer, plan *diet.Plan) error {
	text, ok := Format(plan)
	if !ok {
		return nil
	}
	if err := s.Share(ctx, Message{Message: text, Title: Title}); err != nil {
		return fmt.Errorf("failed to share diet: %w", err)
	}
	return nil
}
