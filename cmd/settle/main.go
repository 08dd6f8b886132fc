package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/keirin-edge/internal/config"
	"github.com/yourusername/keirin-edge/internal/database"
	"github.com/yourusername/keirin-edge/internal/health"
	"github.com/yourusername/keirin-edge/internal/logger"
	"github.com/yourusername/keirin-edge/internal/metrics"
	"github.com/yourusername/keirin-edge/internal/repository"
	"github.com/yourusername/keirin-edge/internal/resultsource"
	"github.com/yourusername/keirin-edge/internal/scheduler"
	"github.com/yourusername/keirin-edge/internal/service"
	"github.com/yourusername/keirin-edge/internal/settlement"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configFile  string
	sinceDays   int
	syncResults bool
	daemonMode  bool

	appLogger *logrus.Logger
	cfg       *config.Config
	db        *database.DB
	repos     *repository.Repositories
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.Flags().IntVar(&sinceDays, "since-days", 0, "Settle recommendations created in the last N days (default from config)")
	rootCmd.Flags().BoolVar(&syncResults, "sync-results", true, "Fetch official results before settling")
	rootCmd.Flags().BoolVar(&daemonMode, "daemon", false, "Run on the configured schedule instead of once")
}

var rootCmd = &cobra.Command{
	Use:   "settle",
	Short: "Settle stored recommendations against official results",
	Long: `Prices every stored wager ticket against official race results and
records hit and recovery statistics. Runs once by default, or on the
configured cron schedule with --daemon.`,
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
		if daemonMode {
			return runDaemon(cmd.Context())
		}
		return runOnce(cmd.Context())
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

func lookbackDays() int {
	if sinceDays > 0 {
		return sinceDays
	}
	return cfg.Settlement.LookbackDays
}

// settlementJob syncs results and then settles, so the scheduler runs the
// same sequence as a one-shot invocation.
type settlementJob struct {
	settler *service.Settler
	syncer  *resultsource.Syncer
	days    int
	logger  *logrus.Logger
}

func (j *settlementJob) Run(ctx context.Context, since time.Time) (settlement.Summary, error) {
	if j.syncer != nil {
		end := time.Now()
		if _, err := j.syncer.SyncRange(ctx, since, end); err != nil {
			j.logger.WithError(err).Warn("Result sync incomplete, settling with stored outcomes")
		}
	}
	return j.settler.Run(ctx, since)
}

func newJob() *settlementJob {
	job := &settlementJob{
		settler: service.NewSettler(repos.Recommendation, repos.Outcome, repos.Settlement, appLogger),
		days:    lookbackDays(),
		logger:  appLogger,
	}
	if syncResults {
		client := resultsource.NewClientFromConfig(cfg.ResultSource, appLogger)
		job.syncer = resultsource.NewSyncer(client, repos.Outcome, appLogger)
	}
	return job
}

func runOnce(ctx context.Context) error {
	job := newJob()
	since := time.Now().AddDate(0, 0, -job.days)

	summary, err := job.Run(ctx, since)
	if err != nil {
		return err
	}

	printSummary(summary)
	return nil
}

func runDaemon(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	job := newJob()

	sched := scheduler.NewScheduler(job, appLogger)
	if err := sched.ScheduleSettlement(cfg.Settlement.Schedule, job.days); err != nil {
		return err
	}
	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	healthCfg := health.Config{
		ServiceName: cfg.App.Name,
		Version:     Version,
		Port:        cfg.Health.Port,
		Logger:      appLogger,
		DB:          db,
	}
	if cfg.Metrics.Enabled {
		healthCfg.MetricsPath = cfg.Metrics.Path
		healthCfg.Metrics = metrics.Handler()
	}
	healthServer := health.NewServer(healthCfg)
	if err := healthServer.Start(ctx); err != nil {
		return err
	}
	healthServer.SetReady(true)

	appLogger.WithFields(logrus.Fields{
		"schedule": cfg.Settlement.Schedule,
		"next_run": sched.GetNextRun().Format(time.RFC3339),
	}).Info("Settlement daemon running")

	<-ctx.Done()
	return nil
}

func printSummary(summary settlement.Summary) {
	fmt.Printf("\nSettlement summary (version %s)\n", Version)
	fmt.Println("==========================================")
	fmt.Printf("Settled:  %d\n", summary.Settled.Count)
	fmt.Printf("Pending:  %d\n", summary.Pending)
	fmt.Printf("Errors:   %d\n", summary.Errors)
	if summary.Settled.Count > 0 {
		fmt.Printf("Hit rate:      %.1f%%\n", summary.Settled.HitRate())
		fmt.Printf("Recovery rate: %.1f%%\n", summary.Settled.RecoveryRate())
	}

	if len(summary.ByArchetype) > 0 {
		fmt.Println("\nBy archetype:")
		for archetype, stats := range summary.ByArchetype {
			fmt.Printf("  %-20s %3d races  hit %5.1f%%  recovery %6.1f%%\n",
				archetype, stats.Count, stats.HitRate(), stats.RecoveryRate())
		}
	}
}
