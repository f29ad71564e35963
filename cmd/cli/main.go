package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/j0lvera/pgbudget/internal/adapter/http/dto"
	"github.com/j0lvera/pgbudget/internal/adapter/http/middleware"
	"github.com/j0lvera/pgbudget/internal/infrastructure/auth"
	"github.com/j0lvera/pgbudget/internal/infrastructure/config"
	"github.com/j0lvera/pgbudget/internal/infrastructure/logger"
	"github.com/j0lvera/pgbudget/internal/infrastructure/postgres"
)

// errInconsistent makes the process exit non-zero without printing twice.
var errInconsistent = errors.New("ledger is inconsistent")

type cliOptions struct {
	baseURL string
	timeout time.Duration
	token   string
	owner   string
	out     io.Writer
}

func main() {
	_ = godotenv.Load()

	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		if !errors.Is(err, errInconsistent) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &cliOptions{out: out}

	rootCmd := &cobra.Command{
		Use:           "pgbudget",
		Short:         "pgbudget CLI tool",
		Long:          `A command line interface for the pgbudget API and database.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(out)

	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "url", envOr("PGBUDGET_URL", "http://localhost:8080"), "Base URL of the pgbudget API")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("PGBUDGET_TOKEN"), "Bearer token")
	rootCmd.PersistentFlags().StringVar(&opts.owner, "owner", os.Getenv("PGBUDGET_OWNER"), "Owner id sent as "+middleware.OwnerHeader+" when no token is given")

	rootCmd.AddCommand(
		newMigrateCmd(opts),
		newTokenCmd(opts),
		newLedgerCmd(opts),
		newBalanceCmd(opts),
		newBudgetCmd(opts),
	)

	return rootCmd
}

func newMigrateCmd(opts *cliOptions) *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migrations",
	}

	run := func(apply func(databaseURL, path string, logger zerolog.Logger) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := logger.New(logger.Config{Level: cfg.LogLevel, Format: "console", Out: opts.out})
			return apply(cfg.DatabaseURL, cfg.MigrationsPath, log)
		}
	}

	migrateCmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE:  run(postgres.RunMigrations),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the last migration",
			Args:  cobra.NoArgs,
			RunE:  run(postgres.RunMigrationsDown),
		},
	)

	return migrateCmd
}

func newTokenCmd(opts *cliOptions) *cobra.Command {
	var (
		secret   string
		duration time.Duration
	)

	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "API tokens",
	}

	issueCmd := &cobra.Command{
		Use:   "issue <owner>",
		Short: "Issue a bearer token for an owner",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				return errors.New("a signing secret is required (--secret or JWT_SECRET)")
			}
			token, err := auth.NewJWTManager(secret, duration).Generate(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(opts.out, token)
			return nil
		},
	}
	issueCmd.Flags().StringVar(&secret, "secret", os.Getenv("JWT_SECRET"), "Signing secret")
	issueCmd.Flags().DurationVar(&duration, "ttl", 24*time.Hour, "Token lifetime")

	tokenCmd.AddCommand(issueCmd)
	return tokenCmd
}

func newLedgerCmd(opts *cliOptions) *cobra.Command {
	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}

	consistencyCmd := &cobra.Command{
		Use:   "consistency <ledger>",
		Short: "Check that a ledger's debits and credits net to zero",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result dto.ConsistencyResponse
			if err := opts.get("/ledgers/"+url.PathEscape(args[0])+"/consistency", &result); err != nil {
				return err
			}

			if !result.Consistent {
				fmt.Fprintf(opts.out, "Consistency check FAILED\nAssets: %s\nLiabilities: %s\nDifference: %s\n",
					result.AssetLikeTotal, result.LiabilityLikeTotal, result.Difference)
				return errInconsistent
			}

			fmt.Fprintf(opts.out, "Consistency check PASSED\nAssets: %s\nLiabilities: %s\n",
				result.AssetLikeTotal, result.LiabilityLikeTotal)
			return nil
		},
	}

	balancesCmd := &cobra.Command{
		Use:   "balances <ledger>",
		Short: "List the current balance of every account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var balances []dto.BalanceResponse
			if err := opts.get("/ledgers/"+url.PathEscape(args[0])+"/balances", &balances); err != nil {
				return err
			}

			w := tabwriter.NewWriter(opts.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ACCOUNT\tNAME\tTYPE\tBALANCE")
			for _, b := range balances {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", b.AccountID, truncate(b.Name, 32), b.Type, b.Balance)
			}
			return w.Flush()
		},
	}

	ledgerCmd.AddCommand(consistencyCmd, balancesCmd)
	return ledgerCmd
}

func newBalanceCmd(opts *cliOptions) *cobra.Command {
	balanceCmd := &cobra.Command{
		Use:   "balance",
		Short: "Balance operations",
	}

	rebuildCmd := &cobra.Command{
		Use:   "rebuild <account>",
		Short: "Replay an account's history into a fresh snapshot chain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result dto.RebuildResponse
			if err := opts.do(http.MethodPost, "/accounts/"+url.PathEscape(args[0])+"/balance/rebuild", &result); err != nil {
				return err
			}
			return printJSON(opts.out, result)
		},
	}

	balanceCmd.AddCommand(rebuildCmd)
	return balanceCmd
}

func newBudgetCmd(opts *cliOptions) *cobra.Command {
	var start, end string

	budgetCmd := &cobra.Command{
		Use:   "budget",
		Short: "Budget views",
	}

	statusCmd := &cobra.Command{
		Use:   "status <ledger>",
		Short: "Show budgeted, activity and balance per category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			if start != "" {
				query.Set("start", start)
			}
			if end != "" {
				query.Set("end", end)
			}

			path := "/ledgers/" + url.PathEscape(args[0]) + "/budget"
			if len(query) > 0 {
				path += "?" + query.Encode()
			}

			var rows []dto.CategoryStatusResponse
			if err := opts.get(path, &rows); err != nil {
				return err
			}

			w := tabwriter.NewWriter(opts.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "CATEGORY\tBUDGETED\tACTIVITY\tBALANCE")
			for _, r := range rows {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", truncate(r.CategoryName, 32), r.Budgeted, r.Activity, r.Balance)
			}
			return w.Flush()
		},
	}
	statusCmd.Flags().StringVar(&start, "start", "", "Period start (YYYY-MM-DD)")
	statusCmd.Flags().StringVar(&end, "end", "", "Period end (YYYY-MM-DD)")

	budgetCmd.AddCommand(statusCmd)
	return budgetCmd
}

func (o *cliOptions) get(path string, out any) error {
	return o.do(http.MethodGet, path, out)
}

func (o *cliOptions) do(method, path string, out any) error {
	req, err := http.NewRequest(method, o.baseURL+"/api/v1"+path, nil)
	if err != nil {
		return err
	}
	switch {
	case o.token != "":
		req.Header.Set("Authorization", "Bearer "+o.token)
	case o.owner != "":
		req.Header.Set(middleware.OwnerHeader, o.owner)
	}

	client := &http.Client{Timeout: o.timeout}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 300 {
		var apiErr dto.ErrorResponse
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			if apiErr.Message != "" {
				return fmt.Errorf("request failed (status %d): %s: %s", resp.StatusCode, apiErr.Error, apiErr.Message)
			}
			return fmt.Errorf("request failed (status %d): %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("request failed (status %d): %s", resp.StatusCode, truncate(string(body), 200))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
