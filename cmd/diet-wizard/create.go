package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"diet-wizard/internal/config"
	"diet-wizard/internal/database"
	"diet-wizard/internal/diet"
	"diet-wizard/internal/history"
	"diet-wizard/internal/metrics"
	"diet-wizard/internal/nutrition"
	"diet-wizard/internal/share"
	"diet-wizard/internal/telemetry"
	"diet-wizard/internal/wizard"

	"github.com/spf13/cobra"
)

var createOpts struct {
	stepOne wizard.StepOne
	stepTwo wizard.StepTwo
	user    string
	asJSON  bool
	noSave  bool
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Request a diet for the given profile",
	Example: `  diet-wizard create --name Ana --weight 60 --height 1.65 --age 30 \
    --gender Feminino --level Sedentário --objective Emagrecer`,
	RunE: runCreate,
}

func init() {
	f := createCmd.Flags()
	f.StringVar(&createOpts.stepOne.Name, "name", "", "Name")
	f.StringVar(&createOpts.stepOne.Weight, "weight", "", "Current weight, e.g. 75.5")
	f.StringVar(&createOpts.stepOne.Height, "height", "", "Current height, e.g. 1.75")
	f.StringVar(&createOpts.stepOne.Age, "age", "", "Current age, e.g. 25")
	f.StringVar(&createOpts.stepTwo.Gender, "gender", "", "Gender: Masculino or Feminino")
	f.StringVar(&createOpts.stepTwo.Level, "level", "", "Physical activity level")
	f.StringVar(&createOpts.stepTwo.Objective, "objective", "", "Objective, e.g. Emagrecer")
	f.StringVar(&createOpts.user, "user", "cli", "History owner for the generated diet")
	f.BoolVar(&createOpts.asJSON, "json", false, "Print the diet as JSON")
	f.BoolVar(&createOpts.noSave, "no-save", false, "Do not store the diet in history")
}

func runCreate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.NewFromEnv()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.RequireDietAPI(); err != nil {
		return err
	}

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	controller := nutrition.NewController(
		diet.NewClient(cfg),
		cfg.DietAPITimeout,
		metrics.NewStore(db.SQL),
		telemetry.FetchObserver{},
	)

	store, err := fillStore(createOpts.stepOne, createOpts.stepTwo)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.DietAPITimeout+5*time.Second)
	defer cancel()

	outcome := controller.Fetch(ctx, store)
	if outcome.Status != nutrition.StatusSucceeded {
		fmt.Fprintln(cmd.ErrOrStderr(), nutrition.FailureMessage)
		if outcome.Err != nil {
			return fmt.Errorf("diet request failed (%s): %w", outcome.ErrorKind(), outcome.Err)
		}
		return errors.New("diet request did not finish in time")
	}

	if !createOpts.noSave {
		if err := history.NewRepository(db.SQL).Save(ctx, createOpts.user, store.SessionID(), outcome.Plan); err != nil {
			log.Printf("Warning: failed to save diet: %v", err)
		}
	}

	return printPlan(cmd.OutOrStdout(), outcome.Plan, createOpts.asJSON)
}

// fillStore validates both wizard pages and loads them into a fresh store.
func fillStore(one wizard.StepOne, two wizard.StepTwo) (*wizard.Store, error) {
	if err := wizard.ValidateStepOne(one); err != nil {
		return nil, err
	}
	if err := wizard.ValidateStepTwo(two); err != nil {
		return nil, err
	}

	store := wizard.NewStore()
	store.Reset()
	store.SetPageOne(one)
	store.SetPageTwo(two)
	return store, nil
}

func printPlan(w io.Writer, plan *diet.Plan, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(plan)
	}
	text, ok := share.Format(plan)
	if !ok {
		return errors.New("diet is empty")
	}
	_, err := fmt.Fprintln(w, text)
	return err
}
