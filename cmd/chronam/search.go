// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/chronam/internal/logging"
	"github.com/pdiddy/chronam/internal/metrics"
	"github.com/pdiddy/chronam/internal/search"
	"github.com/pdiddy/chronam/internal/sink"
	"github.com/pdiddy/chronam/pkg/types"
)

// Progress is logged for every page on the console and every 100 pages
// when writing a file, unless search.progress_every is set.
const fileProgressEvery = 100

var searchCmd = &cobra.Command{
	Use:   "search <phrase>",
	Short: "Search newspaper pages for an exact phrase",
	Long: `Search walks every result page of a Chronicling America phrase search and
emits the matching newspaper pages. Without --write, pages are printed to
the console; with --write, they are saved to <name>.json, or to CSV, YAML
or SQLite with --csv or --format.

Ctrl-C stops the scan cleanly and still reports what was found.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	f := searchCmd.Flags()
	f.IntP("year", "y", 0, "max year: skip pages published after this year")
	f.StringP("write", "w", "", "write to file name (extension added from the format)")
	f.Bool("csv", false, "write CSV instead of JSON (with --write)")
	f.String("format", string(types.OutputJSON), "file format with --write: json, csv, yaml, sqlite")
	f.Int("count", 0, "max number of returned results (0 = no limit)")
	f.String("count-policy", string(types.CountAtMost), "count rule: at-most stops at --count, exceed stops after --count+1")
	f.Int("start-page", 1, "first result page to fetch")
	f.Int("max-pages", 0, "last result page to fetch (0 = all)")
	f.String("base-url", search.DefaultBaseURL, "API base URL")
	f.String("metrics-file", "", "write Prometheus metrics to this textfile after the scan")

	viper.BindPFlag("search.max_year", f.Lookup("year"))
	viper.BindPFlag("search.max_count", f.Lookup("count"))
	viper.BindPFlag("search.count_policy", f.Lookup("count-policy"))
	viper.BindPFlag("search.start_page", f.Lookup("start-page"))
	viper.BindPFlag("search.max_pages", f.Lookup("max-pages"))
	viper.BindPFlag("search.base_url", f.Lookup("base-url"))
	viper.BindPFlag("metrics.textfile", f.Lookup("metrics-file"))

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	start := time.Now()
	stderr := cmd.ErrOrStderr()
	fmt.Fprintf(stderr, "Operation started at: %s\n", start.Format(time.RFC3339))

	phrase := strings.Join(args, " ")
	cfg, err := searchConfig()
	if err != nil {
		return err
	}

	write, _ := cmd.Flags().GetString("write")
	format, _ := cmd.Flags().GetString("format")
	asCSV, _ := cmd.Flags().GetBool("csv")
	out, err := outputConfig(write, format, asCSV)
	if err != nil {
		return err
	}

	q, err := search.NewQuery(phrase, search.WithStartPage(cfg.StartPage), search.WithMaxPages(cfg.MaxPages))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := slog.Default()
	recorder := metrics.NewRecorder()

	client := search.NewClient(cfg)
	client.Logger = logger

	progress := cfg.ProgressEvery
	if progress <= 0 && out.Path() != "" {
		progress = fileProgressEvery
	}
	stream := search.NewStream(client, q,
		search.WithLogger(logger),
		search.WithObserver(recorder),
		search.WithProgressEvery(progress),
		search.WithBreaker(cfg.BreakerThreshold),
	)

	if path := out.Path(); path != "" {
		fmt.Fprintf(stderr, "Writing to file: %s\n", path)
	}
	snk, err := sink.Open(out, sink.Options{
		Phrase: q.Phrase(),
		Host:   cfg.BaseURL,
		Stdout: cmd.OutOrStdout(),
		Query: sink.RunQuery{
			Phrase:      q.Phrase(),
			StartPage:   q.StartPage(),
			MaxPages:    q.MaxPages(),
			MaxYear:     cfg.MaxYear,
			MaxCount:    cfg.MaxCount,
			CountPolicy: cfg.CountPolicy,
		},
	})
	if err != nil {
		return err
	}

	filter := search.Filter{
		MaxYear:     cfg.MaxYear,
		MaxCount:    cfg.MaxCount,
		CountPolicy: cfg.CountPolicy,
		Logger:      logger,
		Observer:    recorder,
		Sampler:     logging.NewErrorSampler(10),
	}
	stats, scanErr := filter.Run(ctx, stream, snk)

	if s, ok := snk.(interface{ Summarize(search.Stats) }); ok {
		s.Summarize(stats)
	}
	closeErr := snk.Close()

	elapsed := time.Since(start)
	recorder.Finish(elapsed, scanErr == nil)
	if path := viper.GetString("metrics.textfile"); path != "" {
		if err := recorder.WriteTextfile(path); err != nil {
			logger.Error("writing metrics", "path", path, "error", err)
		}
	}

	if stats.Cancelled {
		fmt.Fprintln(stderr, "INTERRUPT: User stopped operation")
	}
	fmt.Fprintf(stderr, "%d relevant results found in time range\n", stats.Emitted)
	fmt.Fprintf(stderr, "Operation ended at: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(stderr, "Elapsed time: %.3fs\n", elapsed.Seconds())

	if scanErr != nil {
		return scanErr
	}
	if closeErr != nil {
		return fmt.Errorf("closing output: %w", closeErr)
	}
	return nil
}

// searchConfig assembles the scan settings from flags, env and config file.
func searchConfig() (types.SearchConfig, error) {
	policy, err := parseCountPolicy(viper.GetString("search.count_policy"))
	if err != nil {
		return types.SearchConfig{}, err
	}
	timeout := viper.GetDuration("search.timeout")
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return types.SearchConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: viper.GetString("search.user_agent"),
		},
		BaseURL:          viper.GetString("search.base_url"),
		StartPage:        viper.GetInt("search.start_page"),
		MaxPages:         viper.GetInt("search.max_pages"),
		MaxYear:          viper.GetInt("search.max_year"),
		MaxCount:         viper.GetInt("search.max_count"),
		CountPolicy:      policy,
		BreakerThreshold: viper.GetInt("search.breaker_threshold"),
		ProgressEvery:    viper.GetInt("search.progress_every"),
	}, nil
}

// outputConfig picks the sink. No file name means the console; --csv wins
// over --format for backward compatibility with older invocations.
func outputConfig(write, format string, asCSV bool) (types.OutputConfig, error) {
	if write == "" {
		return types.OutputConfig{Format: types.OutputConsole}, nil
	}
	f := types.OutputFormat(strings.ToLower(format))
	if asCSV {
		f = types.OutputCSV
	}
	switch f {
	case "":
		f = types.OutputJSON
	case types.OutputJSON, types.OutputCSV, types.OutputYAML, types.OutputSQLite:
	default:
		return types.OutputConfig{}, fmt.Errorf("unknown format %q: use json, csv, yaml or sqlite", format)
	}
	return types.OutputConfig{Format: f, Name: write}, nil
}

func parseCountPolicy(s string) (types.CountPolicy, error) {
	switch types.CountPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", types.CountAtMost:
		return types.CountAtMost, nil
	case types.CountExceed:
		return types.CountExceed, nil
	default:
		return "", fmt.Errorf("unknown count policy %q: use at-most or exceed", s)
	}
}
