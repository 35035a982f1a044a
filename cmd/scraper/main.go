package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/aluiziolira/go-scrape-offers/config"
	"github.com/aluiziolira/go-scrape-offers/models"
	"github.com/aluiziolira/go-scrape-offers/pipeline"
	"github.com/aluiziolira/go-scrape-offers/scraper"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	exitFailure  = 1
	exitNoOffers = 2

	noOffersMessage = "Нет доступных предложений"
)

func main() {
	os.Exit(run(flag.CommandLine, os.Args[1:]))
}

func run(fs *flag.FlagSet, args []string) int {
	defaultCfg := config.DefaultConfig()

	keywordDefault := defaultCfg.Keyword
	if value, ok := config.EnvString("SCRAPER_KEYWORD"); ok {
		keywordDefault = value
	}
	outputDefault := defaultCfg.OutputFile
	if value, ok := config.EnvString("SCRAPER_OUTPUT"); ok {
		outputDefault = value
	}
	metricsDefault := defaultCfg.MetricsAddr
	if value, ok := config.EnvString("SCRAPER_METRICS_ADDR"); ok {
		metricsDefault = value
	}
	dedupeDefault := defaultCfg.DedupeMaxSize
	if value, ok, err := config.EnvInt("SCRAPER_DEDUPE_SIZE"); err != nil {
		fmt.Fprintf(os.Stderr, "invalid SCRAPER_DEDUPE_SIZE: %v\n", err)
		return exitFailure
	} else if ok {
		dedupeDefault = value
	}
	cookies := map[string]string{}
	if value, ok := config.EnvString("SCRAPER_COOKIES"); ok {
		parsed, err := config.ParsePairs(value)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid SCRAPER_COOKIES: %v\n", err)
			return exitFailure
		}
		cookies = parsed
	}
	params := map[string]string{}

	keyword := fs.String("keyword", keywordDefault, "Search keyword")
	baseURL := fs.String("base-url", defaultCfg.BaseURL, "Catalog origin")
	outputFile := fs.String("output", outputDefault, "Output file path")
	outputFormat := fs.String("format", defaultCfg.OutputFormat, "Output format: json, csv, or dual")
	timeoutMs := fs.Int("timeout", 0, "Request timeout in milliseconds (0 disables it)")
	userAgent := fs.String("user-agent", "", "Fixed User-Agent (random browser agent when empty)")
	respectRobots := fs.Bool("respect-robots", false, "Respect robots.txt directives")
	dedupeSize := fs.Int("dedupe-size", dedupeDefault, "Maximum listings remembered for duplicate detection")
	verbose := fs.Bool("v", defaultCfg.Verbose, "Enable verbose logging")
	metricsAddr := fs.String("metrics-addr", metricsDefault, "Prometheus metrics listen address (e.g. :9090)")
	fs.Func("cookie", "Cookie sent with every request, name=value (repeatable)", func(pair string) error {
		return config.AddPair(cookies, pair)
	})
	fs.Func("param", "Extra search query parameter, name=value (repeatable)", func(pair string) error {
		return config.AddPair(params, pair)
	})

	if err := fs.Parse(args); err != nil {
		return exitFailure
	}

	logger, level := newLogger(*verbose)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level.Level())

	cfg := config.DefaultConfig()
	cfg.Keyword = strings.TrimSpace(*keyword)
	cfg.BaseURL = *baseURL
	cfg.OutputFile = *outputFile
	cfg.OutputFormat = strings.ToLower(*outputFormat)
	cfg.Timeout = time.Duration(*timeoutMs) * time.Millisecond
	cfg.UserAgent = *userAgent
	cfg.RespectRobotsTxt = *respectRobots
	cfg.DedupeMaxSize = *dedupeSize
	cfg.Verbose = *verbose
	cfg.MetricsAddr = *metricsAddr
	cfg.Cookies = cookies
	cfg.Params = params
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		return exitFailure
	}

	slog.Info("starting scrape",
		slog.String("base_url", cfg.BaseURL),
		slog.String("keyword", cfg.Keyword),
		slog.String("output", cfg.OutputFile),
	)

	s, err := scraper.NewScraper(cfg)
	if err != nil {
		slog.Error("initialising scraper", slog.Any("error", err))
		return exitFailure
	}

	writer, err := createWriter(cfg.OutputFormat, cfg.OutputFile)
	if err != nil {
		slog.Error("creating writer", slog.Any("error", err))
		return exitFailure
	}

	p, err := pipeline.NewPipeline(writer, cfg)
	if err != nil {
		slog.Error("creating pipeline", slog.Any("error", err))
		return exitFailure
	}
	defer func() {
		if err := p.Close(); err != nil {
			slog.Error("close pipeline", slog.Any("error", err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.MetricsAddr != "" {
		metricsServer := &http.Server{
			Addr:    cfg.MetricsAddr,
			Handler: promhttp.HandlerFor(s.Metrics.Registry, promhttp.HandlerOpts{}),
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server failed", slog.Any("error", err))
			}
		}()
		slog.Info("metrics server enabled", slog.String("addr", cfg.MetricsAddr))
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				slog.Error("metrics server shutdown failed", slog.Any("error", err))
			}
		}()
	}

	result, err := s.Run(ctx, p)
	if scraper.IsNoResult(err) {
		slog.Error(noOffersMessage, slog.Any("error", err))
		return exitNoOffers
	}
	if err != nil {
		slog.Error("scraping failed", slog.Any("error", err))
		return exitFailure
	}

	if err := writer.Validate(); err != nil {
		slog.Error("output validation failed", slog.Any("error", err))
		return exitFailure
	}

	printSummary(result, cfg.OutputFile, p.GetMetrics())
	return 0
}

func createWriter(format, filename string) (pipeline.OutputWriter, error) {
	switch format {
	case "json":
		return pipeline.NewJSONWriter(filename)
	case "csv":
		return pipeline.NewCSVWriter(filename)
	case "dual":
		csvFilename := strings.TrimSuffix(filename, filepath.Ext(filename)) + ".csv"
		if csvFilename == filename {
			return nil, fmt.Errorf("dual output needs a JSON file name, got %s", filename)
		}
		return pipeline.NewDualWriter(csvFilename, filename)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

func printSummary(result *models.ScrapeResult, outputFile string, metrics map[string]interface{}) {
	separator := "--------------------------------------------------"
	fmt.Println("\n" + separator)
	fmt.Println("Scrape complete")

	if result.Record != nil {
		fmt.Printf("  Keyword:       %s\n", result.Record.Keyword)
		fmt.Printf("  Price:         %d\n", result.Record.Price)
		fmt.Printf("  Link:          %s\n", result.Record.Link)
	}
	fmt.Printf("  Requests:      %d\n", result.RequestCount)
	fmt.Printf("  Models:        %d\n", result.ModelCount)
	fmt.Printf("  Offers:        %d\n", result.OfferCount)
	fmt.Printf("  Skipped:       %d\n", result.SkippedListings)
	if len(result.ErrorsByType) > 0 {
		fmt.Printf("  Error types:   %v\n", result.ErrorsByType)
	}
	if valErrors, ok := metrics["validation_errors"].(map[string]int); ok && len(valErrors) > 0 {
		fmt.Printf("  Validation:    %v\n", valErrors)
	}
	fmt.Printf("  Duration:      %v\n", result.EndTime.Sub(result.StartTime))
	fmt.Printf("  Output file:   %s\n", outputFile)
	fmt.Println(separator)
}

func newLogger(verbose bool) (*slog.Logger, *slog.LevelVar) {
	level := &slog.LevelVar{}
	if verbose {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if isTerminal(os.Stderr) {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}

	return slog.New(handler), level
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
