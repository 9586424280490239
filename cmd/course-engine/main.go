// Command course-engine converts a single document into a structured course
// from the command line.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/courseforge/course-engine/internal/cache"
	"github.com/courseforge/course-engine/internal/config"
	"github.com/courseforge/course-engine/internal/domain"
	"github.com/courseforge/course-engine/internal/enrich"
	"github.com/courseforge/course-engine/internal/llm"
	"github.com/courseforge/course-engine/internal/observability"
	"github.com/courseforge/course-engine/internal/pipeline"
	"github.com/courseforge/course-engine/internal/planner"
	"github.com/courseforge/course-engine/internal/source"
)

var (
	configPath string
	filePath   string
	docURL     string
	rawText    string
	userID     string
	outputPath string
)

func main() {
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:   "course-engine",
		Short: "Convert technical documents into structured learning courses",
	}

	process := &cobra.Command{
		Use:   "process",
		Short: "Process one document into a course",
		RunE:  runProcess,
	}
	process.Flags().StringVarP(&filePath, "file", "f", "", "path to a local document (pdf or text)")
	process.Flags().StringVarP(&docURL, "url", "u", "", "URL of a remote document")
	process.Flags().StringVarP(&rawText, "text", "t", "", "raw text to process")
	process.Flags().StringVar(&userID, "user", "cli", "user identifier recorded with the course")
	process.Flags().StringVarP(&outputPath, "output", "o", "", "write the course JSON to a file instead of stdout")
	process.Flags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")

	root.AddCommand(process)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runProcess(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := observability.NewLogger(observability.LogConfig{
		Level:       cfg.Observability.LogLevel,
		Format:      "console",
		Output:      os.Stderr,
		ServiceName: "course-engine",
	})

	doc, err := resolveDocument(cmd.Context())
	if err != nil {
		return err
	}

	store, err := buildStore(cfg, logger)
	if err != nil {
		doc.Release()
		return err
	}
	defer store.Close()

	completer := llm.NewClient(llm.Config{
		BaseURL:    cfg.Completion.BaseURL,
		APIKey:     cfg.Completion.APIKey,
		Model:      cfg.Completion.Model,
		Timeout:    cfg.Completion.Timeout,
		MaxRetries: cfg.Completion.MaxRetries,
		BaseDelay:  cfg.Completion.BaseDelay,
	}, logger)

	orch := pipeline.NewOrchestrator(
		planner.NewPlanner(completer, logger),
		enrich.NewEnricher(completer, logger),
		store,
		logger,
		cfg.Pipeline.BatchSize,
	)

	spin := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	spin.Suffix = " generating course..."
	spin.Start()

	course, err := orch.Process(cmd.Context(), doc, userID)
	spin.Stop()
	if err != nil {
		return err
	}

	printSummary(course)
	return writeCourse(course)
}

func resolveDocument(ctx context.Context) (*source.Document, error) {
	switch {
	case filePath != "":
		return source.FromFile(filePath)
	case docURL != "":
		return source.FromURL(ctx, docURL)
	case rawText != "":
		return source.FromText(rawText), nil
	default:
		return nil, fmt.Errorf("one of --file, --url, or --text is required")
	}
}

func buildStore(cfg *config.Config, logger *observability.Logger) (cache.CourseStore, error) {
	switch cfg.Cache.Driver {
	case "redis":
		return cache.NewRedisStore(cache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			PoolSize: cfg.Cache.Redis.PoolSize,
			TTL:      cfg.Cache.TTL,
		})
	case "sqlite":
		return cache.NewSQLiteStore(cfg.Cache.SQLite.Path)
	default:
		return cache.NewMemoryStore(), nil
	}
}

func printSummary(course *domain.Course) {
	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)

	fmt.Fprintln(os.Stderr)
	bold.Fprintf(os.Stderr, "%s\n", course.Title)
	fmt.Fprintf(os.Stderr, "%s\n\n", course.Description)

	for i, mod := range course.Modules {
		green.Fprintf(os.Stderr, "  %d. %s", i+1, mod.Title)
		fmt.Fprintf(os.Stderr, " (%d min, %d cards, %d questions)\n",
			mod.EstimatedTime, len(mod.FlashCards), len(mod.Quiz))
		if mod.Error != "" {
			color.New(color.FgYellow).Fprintf(os.Stderr, "     warning: %s\n", mod.Error)
		}
	}
	fmt.Fprintln(os.Stderr)
}

func writeCourse(course *domain.Course) error {
	payload, err := json.MarshalIndent(course, "", "  ")
	if err != nil {
		return err
	}

	if outputPath == "" {
		fmt.Println(string(payload))
		return nil
	}

	if err := os.WriteFile(outputPath, payload, 0o644); err != nil {
		return err
	}
	color.Green("course written to %s", outputPath)
	return nil
}
