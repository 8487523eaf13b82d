package history

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"diet-wizard/internal/database"
	"diet-wizard/internal/diet"
)

func TestRepository(t *testing.T) {
	ctx := context.Background()

	db, err := database.NewDB(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	repo := NewRepository(db.SQL)

	for i := 1; i <= 3; i++ {
		plan := &diet.Plan{
			Name:        fmt.Sprintf("Dieta %d", i),
			Objective:   "Emagrecer",
			Meals:       []diet.Meal{{Name: "Café", Time: "08:00", Foods: []string{"Ovo", "Pão"}}},
			Supplements: []string{},
		}
		if err := repo.Save(ctx, "42", fmt.Sprintf("session-%d", i), plan); err != nil {
			t.Fatalf("Failed to save diet %d: %v", i, err)
		}
	}
	if err := repo.Save(ctx, "7", "other", &diet.Plan{Name: "Outra"}); err != nil {
		t.Fatalf("Failed to save diet for another user: %v", err)
	}

	t.Run("ListRecent", func(t *testing.T) {
		entries, err := repo.ListRecent(ctx, "42", 2)
		if err != nil {
			t.Fatalf("Failed to list diets: %v", err)
		}
		if len(entries) != 2 {
			t.Fatalf("Expected 2 entries, got %d", len(entries))
		}
		if entries[0].Plan.Name != "Dieta 3" || entries[1].Plan.Name != "Dieta 2" {
			t.Errorf("Expected newest first, got '%s', '%s'", entries[0].Plan.Name, entries[1].Plan.Name)
		}
		if got := entries[0].Plan.Meals[0].Foods; len(got) != 2 || got[1] != "Pão" {
			t.Errorf("Expected foods to round-trip, got %v", got)
		}
		if entries[0].SessionID != "session-3" {
			t.Errorf("Expected session id 'session-3', got '%s'", entries[0].SessionID)
		}
	})

	t.Run("SessionSavedOnce", func(t *testing.T) {
		plan := &diet.Plan{Name: "Dieta Única", Objective: "Definição"}
		for i := 0; i < 2; i++ {
			if err := repo.Save(ctx, "9", "session-dup", plan); err != nil {
				t.Fatalf("Save %d failed: %v", i+1, err)
			}
		}

		entries, err := repo.ListRecent(ctx, "9", 5)
		if err != nil {
			t.Fatalf("Failed to list diets: %v", err)
		}
		if len(entries) != 1 {
			t.Errorf("Expected 1 entry for the session, got %d", len(entries))
		}
	})

	t.Run("UnknownUser", func(t *testing.T) {
		entries, err := repo.ListRecent(ctx, "nobody", 5)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if len(entries) != 0 {
			t.Errorf("Expected no entries, got %d", len(entries))
		}
	})
}
