package main

import (
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zagros-analytics/suitability-cli/internal/fetcher"
	"github.com/zagros-analytics/suitability-cli/internal/store"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download measurement datasets for configured criteria",
	Long:  "Fetches each criterion's dataset URL into the data directory, then optionally imports the rows. Downloads are rate limited and retried.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		log := zap.L().With(zap.String("command", "fetch"))

		doImport, _ := cmd.Flags().GetBool("import")
		only, _ := cmd.Flags().GetString("criterion")

		if err := os.MkdirAll(cfg.Fetch.DataDir, 0o755); err != nil {
			return eris.Wrapf(err, "fetch: create data dir %s", cfg.Fetch.DataDir)
		}

		f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
			UserAgent:  cfg.Fetch.UserAgent,
			Timeout:    time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
			MaxRetries: cfg.Fetch.MaxRetries,
			RatePerSec: cfg.Fetch.RatePerSec,
		})

		var s store.Store
		if doImport {
			opened, err := openStore(ctx)
			if err != nil {
				return err
			}
			s = opened
			defer s.Close()
		}

		fetched := 0
		for _, crit := range cfg.Criteria {
			if only != "" && crit.Name != only {
				continue
			}
			if crit.URL == "" {
				log.Debug("criterion has no dataset URL, skipping", zap.String("criterion", crit.Name))
				continue
			}

			path := filepath.Join(cfg.Fetch.DataDir, crit.Name+".csv")
			n, err := f.DownloadToFile(ctx, crit.URL, path)
			if err != nil {
				return eris.Wrapf(err, "fetch: criterion %s", crit.Name)
			}
			fetched++
			log.Info("dataset downloaded",
				zap.String("criterion", crit.Name),
				zap.String("path", path),
				zap.Int64("bytes", n),
			)

			if doImport {
				file, err := os.Open(path)
				if err != nil {
					return eris.Wrapf(err, "fetch: reopen %s", path)
				}
				rows, err := fetcher.DecodeMeasurements(file)
				file.Close() //nolint:errcheck
				if err != nil {
					return eris.Wrapf(err, "fetch: decode %s", path)
				}
				if err := s.SaveMeasurements(ctx, crit.Name, rows); err != nil {
					return err
				}
				log.Info("dataset imported",
					zap.String("criterion", crit.Name),
					zap.Int("rows", len(rows)),
				)
			}
		}

		if fetched == 0 {
			return eris.New("fetch: no criterion has a dataset URL configured")
		}
		if doImport {
			if _, err := s.RecordRun(ctx, "fetch", cfg.Fetch.DataDir); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	fetchCmd.Flags().Bool("import", false, "import rows into the store after downloading")
	fetchCmd.Flags().String("criterion", "", "fetch only this criterion")
	rootCmd.AddCommand(fetchCmd)
}
