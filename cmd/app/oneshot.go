package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"StockDash/internal/di"
	"StockDash/internal/domain/models"
	"StockDash/internal/usecase"

	"github.com/spf13/cobra"
)

var (
	tablePage    int
	tableSort    string
	newsName     string
	newsRefresh  bool
	historyLimit int
)

var tableCmd = &cobra.Command{
	Use:   "table <kr|us>",
	Short: "Print one page of the recommendation table",
	Args:  cobra.ExactArgs(1),
	RunE: withServices(func(ctx context.Context, s *di.Services, args []string) (interface{}, error) {
		country, err := countryArg(args[0])
		if err != nil {
			return nil, err
		}
		return s.Views.AssembleTable(ctx, country, tablePage, models.NormalizeSortMode(tableSort), true)
	}),
}

var newsCmd = &cobra.Command{
	Use:   "news <kr|us> <ticker>",
	Short: "Aggregate news for one ticker",
	Args:  cobra.ExactArgs(2),
	RunE: withServices(func(ctx context.Context, s *di.Services, args []string) (interface{}, error) {
		country, err := countryArg(args[0])
		if err != nil {
			return nil, err
		}
		return s.News.Aggregate(ctx, usecase.NewsParams{Country: country, Ticker: args[1], Name: newsName, Refresh: newsRefresh})
	}),
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <price|consolidated> <kr|us> <ticker>",
	Short: "Run one anonymous analysis request",
	Args:  cobra.ExactArgs(3),
	RunE: withServices(func(ctx context.Context, s *di.Services, args []string) (interface{}, error) {
		kind := models.AnalysisKind(args[0])
		if !kind.Valid() {
			return nil, fmt.Errorf("unknown analysis kind %q", args[0])
		}
		country, err := countryArg(args[1])
		if err != nil {
			return nil, err
		}
		if historyLimit > 0 {
			return s.Analysis.History(ctx, country, args[2], historyLimit)
		}
		return s.Analysis.Analyze(ctx, nil, kind, country, args[2])
	}),
}

func init() {
	tableCmd.Flags().IntVar(&tablePage, "page", 1, "page number")
	tableCmd.Flags().StringVar(&tableSort, "sort", string(models.SortInitial), "change ranking mode: initial, gainers, losers")
	newsCmd.Flags().StringVar(&newsName, "name", "", "display name used for the crawler lookup")
	newsCmd.Flags().BoolVar(&newsRefresh, "refresh", false, "bypass the news cache")
	analyzeCmd.Flags().IntVar(&historyLimit, "history", 0, "print the last N stored attempts instead of analyzing")
}

func countryArg(s string) (string, error) {
	if s != models.CountryKR && s != models.CountryUS {
		return "", fmt.Errorf("country must be kr or us, got %q", s)
	}
	return s, nil
}

// withServices wires the use cases, runs fn and prints its result as JSON.
func withServices(fn func(ctx context.Context, s *di.Services, args []string) (interface{}, error)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		s, cleanup, err := di.InitializeServices(cfg)
		if err != nil {
			return fmt.Errorf("initialization failed: %w", err)
		}
		defer cleanup()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		s.Pipeline.Start(ctx)

		out, err := fn(ctx, s, args)
		if err != nil {
			return err
		}
		return printJSON(out)
	}
}
