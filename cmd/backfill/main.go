// Command backfill runs ingestion jobs once from the command line, outside the server.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/creatorhub/backend/internal/app"
	"github.com/creatorhub/backend/internal/application/ingest"
	"github.com/creatorhub/backend/internal/domain/earnings"
	"github.com/creatorhub/backend/internal/infrastructure/config"
)

const defaultIGBackfillLimit = 200

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "backfill",
		Short: "Run CreatorHub ingestion jobs once",
		Long: `Run ingestion jobs against the configured database without starting the server.

Available subcommands:
  historical - Rebuild monthly earnings from the vendor APIs
  airtable   - Import historical earnings from the Airtable tables
  ig         - Page through a creator's full Instagram media history
  run        - Run any scheduled job by name`,
		SilenceUsage: true,
	}
	root.AddCommand(newHistoricalCmd(), newAirtableCmd(), newIGCmd(), newRunCmd())
	return root
}

func newHistoricalCmd() *cobra.Command {
	var (
		creatorID string
		platforms []string
		from, to  string
	)
	cmd := &cobra.Command{
		Use:   "historical",
		Short: "Rebuild monthly earnings from the vendor APIs",
		Long: `Import LTK, Mavely and ShopMy earnings month by month and overwrite the
monthly ledger rows. The window defaults to backfill.from through backfill.to.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req := ingest.HistoricalRequest{CreatorID: creatorID}
			var err error
			if req.Platforms, err = parsePlatforms(platforms); err != nil {
				return err
			}
			if req.From, err = parseMonth(from); err != nil {
				return fmt.Errorf("--from: %w", err)
			}
			if req.To, err = parseMonth(to); err != nil {
				return fmt.Errorf("--to: %w", err)
			}
			return withContainer(cmd, func(ctx context.Context, c *app.Container) (*ingest.RunReport, error) {
				defaults := c.Services.HistoricalRequest(time.Now().UTC())
				if req.From.IsZero() {
					req.From = defaults.From
				}
				if req.To.IsZero() {
					req.To = defaults.To
				}
				return c.Services.Runner.RunFunc(ctx, ingest.JobHistoricalBackfill, func(ctx context.Context) (*ingest.RunReport, error) {
					return c.Services.Historical.Run(ctx, req)
				})
			})
		},
	}
	cmd.Flags().StringVar(&creatorID, "creator", "", "creator id (default: first owned creator)")
	cmd.Flags().StringSliceVar(&platforms, "platform", nil, "platforms to import: ltk, mavely, shopmy (default: all)")
	cmd.Flags().StringVar(&from, "from", "", "first month, YYYY-MM")
	cmd.Flags().StringVar(&to, "to", "", "last month, YYYY-MM")
	return cmd
}

func newAirtableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "airtable",
		Short: "Import historical earnings from the Airtable tables",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withContainer(cmd, func(ctx context.Context, c *app.Container) (*ingest.RunReport, error) {
				return c.Services.Runner.Run(ctx, ingest.JobAirtableBackfill)
			})
		},
	}
}

func newIGCmd() *cobra.Command {
	var (
		creatorID string
		limit     int
	)
	cmd := &cobra.Command{
		Use:   "ig",
		Short: "Page through a creator's full Instagram media history",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if creatorID == "" {
				return fmt.Errorf("--creator is required")
			}
			return withContainer(cmd, func(ctx context.Context, c *app.Container) (*ingest.RunReport, error) {
				return c.Services.Runner.RunFunc(ctx, ingest.JobIGBackfill, func(ctx context.Context) (*ingest.RunReport, error) {
					return c.Services.Instagram.Backfill(ctx, creatorID, limit)
				})
			})
		},
	}
	cmd.Flags().StringVar(&creatorID, "creator", "", "creator id")
	cmd.Flags().IntVar(&limit, "limit", defaultIGBackfillLimit, "maximum posts to import")
	return cmd
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <job>",
		Short: "Run any scheduled job by name, e.g. shopmy_sync",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd, func(ctx context.Context, c *app.Container) (*ingest.RunReport, error) {
				return c.Services.Runner.Run(ctx, args[0])
			})
		},
	}
}

// withContainer loads configuration, opens the application and prints the run report as JSON.
// The report is printed even when the job fails.
func withContainer(cmd *cobra.Command, fn func(ctx context.Context, c *app.Container) (*ingest.RunReport, error)) error {
	ctx := cmd.Context()
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	obs, err := app.NewObservability(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = obs.Shutdown(context.WithoutCancel(ctx))
	}()

	c, err := app.Open(ctx, cfg, obs)
	if err != nil {
		return err
	}
	defer func() {
		if err := c.Close(); err != nil {
			obs.Logger.Warn("Error closing connections", zap.Error(err))
		}
	}()

	rep, runErr := fn(ctx, c)
	if rep != nil {
		if err := printReport(cmd.OutOrStdout(), rep); err != nil {
			return err
		}
	}
	return runErr
}

func printReport(w io.Writer, rep *ingest.RunReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

// parseMonth parses YYYY-MM; empty means unset
func parseMonth(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("month must be YYYY-MM, got %q", s)
	}
	return t, nil
}

// parsePlatforms keeps the backfill platforms named in values; empty means all
func parsePlatforms(values []string) ([]earnings.Platform, error) {
	if len(values) == 0 {
		return nil, nil
	}
	out := make([]earnings.Platform, 0, len(values))
	for _, v := range values {
		p, err := earnings.ParsePlatform(v)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(ingest.HistoricalPlatforms, p) {
			return nil, fmt.Errorf("platform %s has no historical backfill", p)
		}
		out = append(out, p)
	}
	return out, nil
}
