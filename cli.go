package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"meallens/internal/models"
	"meallens/internal/services"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(app *App) *cli.App {
	return &cli.App{
		Name:  "meallens",
		Usage: "Meal photo calorie tracker",
		Commands: []*cli.Command{
			analyzeCmd(app),
			logCmd(app),
			mealCmd(app),
			itemCmd(app),
			settingsCmd(app),
			versionCmd(app),
		},
	}
}

// analyzeCmd runs a photo through the pipeline and the AI client.
func analyzeCmd(app *App) *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "Analyze a food photo and optionally log it as a meal",
		ArgsUsage: "<photo>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "save", Usage: "Save the recognized items as a meal"},
			&cli.StringFlag{Name: "type", Usage: "Meal type (Breakfast|Lunch|Dinner|Snack), inferred from the clock when omitted"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("expected exactly one photo path")
			}

			items, err := app.AnalyzePhoto(c.Context, c.Args().First())
			if err != nil {
				return err
			}
			if err := outputJSON(map[string]any{"items": items}); err != nil {
				return err
			}

			if !c.Bool("save") {
				return nil
			}
			if len(items) == 0 {
				return fmt.Errorf("no food recognized, nothing to save")
			}
			id, err := app.SaveAnalyzedMeal(c.Context, items, time.Now(), models.MealType(c.String("type")))
			if err != nil {
				return err
			}
			return outputJSON(map[string]any{"mealId": id})
		},
	}
}

// logCmd shows logged meals for a day or a date range.
func logCmd(app *App) *cli.Command {
	return &cli.Command{
		Name:  "log",
		Usage: "Show logged meals and calorie totals",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "date", Usage: "Day to show (YYYY-MM-DD), defaults to today"},
			&cli.StringFlag{Name: "from", Usage: "Range start (YYYY-MM-DD)"},
			&cli.StringFlag{Name: "to", Usage: "Range end (YYYY-MM-DD)"},
		},
		Action: func(c *cli.Context) error {
			if c.String("from") != "" || c.String("to") != "" {
				meals, err := app.Services.Meals.MealsByDateRange(c.Context, c.String("from"), c.String("to"))
				if err != nil {
					return err
				}
				return outputJSON(map[string]any{"meals": meals})
			}

			date := c.String("date")
			if date == "" {
				date = time.Now().Format("2006-01-02")
			}
			summary, err := app.Services.Meals.DailySummary(c.Context, date)
			if err != nil {
				return err
			}
			meals, err := app.Services.Meals.MealsByDate(c.Context, date)
			if err != nil {
				return err
			}
			for i := range meals {
				items, err := app.Services.Meals.FoodItemsForMeal(c.Context, meals[i].ID)
				if err != nil {
					return err
				}
				meals[i].Items = items
			}
			return outputJSON(map[string]any{"summary": summary, "meals": meals})
		},
	}
}

func mealCmd(app *App) *cli.Command {
	return &cli.Command{
		Name:  "meal",
		Usage: "Inspect or delete a logged meal",
		Subcommands: []*cli.Command{
			{
				Name:      "show",
				Usage:     "Show one meal with its food items",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return fmt.Errorf("expected exactly one meal id")
					}
					meal, err := app.Services.Meals.GetMeal(c.Context, c.Args().First())
					if err != nil {
						return err
					}
					if meal == nil {
						return fmt.Errorf("meal not found: %s", c.Args().First())
					}
					items, err := app.Services.Meals.FoodItemsForMeal(c.Context, meal.ID)
					if err != nil {
						return err
					}
					meal.Items = items
					return outputJSON(meal)
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete a meal and all its food items",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return fmt.Errorf("expected exactly one meal id")
					}
					return app.Services.Meals.DeleteMeal(c.Context, c.Args().First())
				},
			},
		},
	}
}

func itemCmd(app *App) *cli.Command {
	return &cli.Command{
		Name:  "item",
		Usage: "Edit or remove a food item",
		Subcommands: []*cli.Command{
			{
				Name:      "update",
				Usage:     "Update fields of a food item (meal total is recomputed)",
				ArgsUsage: "<id>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Usage: "New name"},
					&cli.IntFlag{Name: "grams", Usage: "New portion in grams"},
					&cli.IntFlag{Name: "calories", Usage: "New calorie estimate"},
					&cli.StringFlag{Name: "confidence", Usage: "New confidence (high|medium|low)"},
				},
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return fmt.Errorf("expected exactly one item id")
					}
					var update services.FoodItemUpdate
					if c.IsSet("name") {
						name := c.String("name")
						update.Name = &name
					}
					if c.IsSet("grams") {
						grams := c.Int("grams")
						update.Grams = &grams
					}
					if c.IsSet("calories") {
						calories := c.Int("calories")
						update.Calories = &calories
					}
					if c.IsSet("confidence") {
						confidence := models.Confidence(c.String("confidence"))
						update.Confidence = &confidence
					}
					return app.Services.Meals.UpdateFoodItem(c.Context, c.Args().First(), update)
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete a food item (an emptied meal is removed too)",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return fmt.Errorf("expected exactly one item id")
					}
					return app.Services.Meals.DeleteFoodItem(c.Context, c.Args().First())
				},
			},
		},
	}
}

func settingsCmd(app *App) *cli.Command {
	return &cli.Command{
		Name:  "settings",
		Usage: "Manage the API key and stored data",
		Subcommands: []*cli.Command{
			{
				Name:      "set-key",
				Usage:     "Store the AI provider API key (encrypted at rest)",
				ArgsUsage: "<key>",
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return fmt.Errorf("expected exactly one API key")
					}
					return app.Services.Settings.SaveEncryptedAPIKey(c.Context, c.Args().First())
				},
			},
			{
				Name:  "get-key",
				Usage: "Print the stored API key",
				Action: func(c *cli.Context) error {
					key, ok, err := app.Services.Settings.DecryptedAPIKey(c.Context)
					if err != nil {
						return err
					}
					if !ok {
						return fmt.Errorf("no API key stored")
					}
					fmt.Println(key)
					return nil
				},
			},
			{
				Name:  "reset",
				Usage: "Delete all stored data (factory reset)",
				Action: func(c *cli.Context) error {
					return app.Services.Settings.ClearAllData(c.Context)
				},
			},
		},
	}
}

func versionCmd(app *App) *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Track update notifications",
		Subcommands: []*cli.Command{
			{
				Name:      "check",
				Usage:     "Report whether an available version should be announced",
				ArgsUsage: "<version>",
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return fmt.Errorf("expected exactly one version")
					}
					now := time.Now()
					if err := app.Services.Versions.RecordCheck(c.Context, now); err != nil {
						return err
					}
					notify, err := app.Services.Versions.ShouldNotify(c.Context, c.Args().First(), now)
					if err != nil {
						return err
					}
					return outputJSON(map[string]any{"version": c.Args().First(), "notify": notify})
				},
			},
			{
				Name:      "dismiss",
				Usage:     "Dismiss the notification for a version",
				ArgsUsage: "<version>",
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return fmt.Errorf("expected exactly one version")
					}
					return app.Services.Versions.DismissVersion(c.Context, c.Args().First(), time.Now())
				},
			},
		},
	}
}

func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
