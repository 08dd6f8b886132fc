package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/keirin-edge/internal/config"
	"github.com/yourusername/keirin-edge/internal/database"
	"github.com/yourusername/keirin-edge/internal/logger"
	"github.com/yourusername/keirin-edge/internal/metrics"
	"github.com/yourusername/keirin-edge/internal/models"
	"github.com/yourusername/keirin-edge/internal/repository"
	"github.com/yourusername/keirin-edge/internal/service"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configFile string
	dateFlag   string
	placeFlag  string

	appLogger *logrus.Logger
	cfg       *config.Config
	db        *database.DB
	repos     *repository.Repositories
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.Flags().StringVar(&dateFlag, "date", "", "Race date to analyze (YYYY-MM-DD, default today)")
	rootCmd.Flags().StringVar(&placeFlag, "place", "", "Restrict analysis to one velodrome")
}

var rootCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze race cards and generate wager recommendations",
	Long: `Scores every rider on the selected race cards, classifies each race
into a betting archetype and stores the generated wager tickets.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if err := setupDependencies(cmd.Context()); err != nil {
			return fmt.Errorf("failed to setup dependencies: %w", err)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		defer teardown()
		return runAnalysis(cmd.Context())
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func loadConfig() error {
	var err error
	cfg, err = config.LoadWithDefaults(configFile)
	if err != nil {
		return err
	}

	if secretName := os.Getenv("KEIRIN_EDGE_AWS_SECRET"); secretName != "" {
		region := os.Getenv("AWS_REGION")
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			return fmt.Errorf("failed to load secrets: %w", err)
		}
	}

	return config.Validate(cfg)
}

func setupDependencies(ctx context.Context) error {
	appLogger = logger.NewLogger(cfg.App.LogLevel)
	metrics.InitRegistry()

	var err error
	db, err = database.Initialize(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	repos, err = repository.NewRepositories(db)
	if err != nil {
		return fmt.Errorf("failed to initialize repositories: %w", err)
	}

	return nil
}

func teardown() {
	if db != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		db.Close(ctx)
	}
}

func runAnalysis(ctx context.Context) error {
	date := dateFlag
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	analyzer := service.NewAnalyzer(repos.Race, repos.Recommendation, cfg, appLogger)

	var (
		recs []*models.StrategyRecommendation
		err  error
	)
	if placeFlag != "" {
		recs, err = analyzer.AnalyzePlaceAndDate(ctx, placeFlag, date)
	} else {
		recs, err = analyzer.AnalyzeDate(ctx, date)
	}
	if err != nil {
		return err
	}

	printRecommendations(date, recs)
	return nil
}

func printRecommendations(date string, recs []*models.StrategyRecommendation) {
	fmt.Printf("\nRecommendations for %s (version %s)\n", date, Version)
	fmt.Println("=========================================================================")
	if len(recs) == 0 {
		fmt.Println("No races analyzed.")
		return
	}

	for _, rec := range recs {
		strict := ""
		if rec.StrictPick {
			strict = " [strict]"
		}
		fmt.Printf("%-10s %2dR  %-18s %-4s%s\n",
			rec.Place, rec.RaceNumber, rec.Archetype, rec.Confidence, strict)
		if rec.Reason != "" {
			fmt.Printf("           reason: %s\n", rec.Reason)
		}
		for kind, n := range rec.UnitCounts {
			fmt.Printf("           %s: %d combinations\n", kind, n)
		}
	}
	fmt.Printf("\n%d races analyzed.\n", len(recs))
}
