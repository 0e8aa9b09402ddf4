package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/tribureau/internal/demo"
	"github.com/okian/tribureau/internal/domain/model"
	"github.com/okian/tribureau/pkg/logger"
	"github.com/spf13/cobra"
)

const (
	defaultTimeout    = 10 * time.Second
	defaultRunTimeout = 10 * time.Minute
)

var (
	baseURL    string
	users      int
	workers    int
	timeout    time.Duration
	runTimeout time.Duration
	method     string
	weights    string
	refresh    bool
	verbose    bool
	logFormat  string
)

// rootCmd drives a running tribureau server end to end.
var rootCmd = &cobra.Command{
	Use:   "credit-demo",
	Short: "Exercise a running tribureau server",
	Long: `Create users, fetch their reports from every bureau concurrently,
aggregate the results and check every response for consistency.

Examples:
  credit-demo --users 100 --workers 16
  credit-demo --method custom --weights experian=1,equifax=1,transunion=2
  credit-demo --refresh --url http://localhost:8080`,
	SilenceUsage: true,
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		return logger.InitWithFormat(logFormat, cmd.ErrOrStderr())
	},
	RunE: runDemo,
}

func init() {
	rootCmd.Flags().StringVar(&baseURL, "url", demo.DefaultBaseURL, "Base URL of the service")
	rootCmd.Flags().IntVarP(&users, "users", "n", demo.DefaultUsers, "Number of users to create")
	rootCmd.Flags().IntVarP(&workers, "workers", "w", runtime.NumCPU()*2, "Maximum concurrent user pipelines")
	rootCmd.Flags().DurationVar(&timeout, "timeout", defaultTimeout, "Per-request timeout")
	rootCmd.Flags().DurationVar(&runTimeout, "run-timeout", defaultRunTimeout, "Timeout of the whole run")
	rootCmd.Flags().StringVarP(&method, "method", "m", "", "Aggregation method (server default when empty)")
	rootCmd.Flags().StringVar(&weights, "weights", "", "Custom weights as source=value pairs, comma separated")
	rootCmd.Flags().BoolVar(&refresh, "refresh", false, "Queue a background refresh for every user")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log every aggregate")
	rootCmd.Flags().StringVar(&logFormat, "log-format", "text", "Log format: text or json")
}

func runDemo(cmd *cobra.Command, _ []string) error {
	cfg := &demo.Config{
		BaseURL: baseURL,
		Users:   users,
		Workers: workers,
		Timeout: timeout,
		Refresh: refresh,
		Verbose: verbose,
	}
	if method != "" {
		m, err := model.ParseMethod(method)
		if err != nil {
			return err
		}
		cfg.Method = m
	}
	w, err := demo.ParseWeights(weights)
	if err != nil {
		return err
	}
	if w != nil && cfg.Method != model.MethodCustom {
		return fmt.Errorf("--weights needs --method custom")
	}
	cfg.Weights = w

	ctx, cancel := context.WithTimeout(cmd.Context(), runTimeout)
	defer cancel()
	_, err = demo.Run(ctx, cfg, cmd.OutOrStdout())
	return err
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
