package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"literary-analysis/internal/domain/entity"
	hauth "literary-analysis/internal/handler/http/auth"
	"literary-analysis/internal/infra/extractor"
	"literary-analysis/internal/infra/fetcher"
	"literary-analysis/internal/infra/keywords"
	"literary-analysis/internal/infra/literary"
	"literary-analysis/internal/infra/sentiment"
	"literary-analysis/internal/repository"
	analysisUC "literary-analysis/internal/usecase/analysis"
	fetchUC "literary-analysis/internal/usecase/fetch"
	"literary-analysis/pkg/config"
)

// maxInputBytes bounds what analyze and literary read from a file or stdin.
const maxInputBytes = 10 << 20

func checkURLCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check-url <url>",
		Short: "Run a URL through the private network gate without fetching it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			gate, _, err := newGate(opts.newLogger(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			addrs, err := gate.Check(ctx, args[0])
			if err != nil {
				return fmt.Errorf("blocked (%s): %w", fetchUC.Reason(err), err)
			}

			out := make([]string, 0, len(addrs))
			for _, a := range addrs {
				out = append(out, a.String())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "allowed %s -> %s\n", args[0], strings.Join(out, ", "))
			return nil
		},
	}
}

func extractCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "extract <url>",
		Short: "Fetch a URL and print the extracted text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			logger := opts.newLogger(cmd.ErrOrStderr())
			svc, err := newFetchService(logger)
			if err != nil {
				return err
			}
			doc, err := svc.FetchText(ctx, args[0])
			if err != nil {
				return fmt.Errorf("%s: %w", fetchUC.Reason(err), err)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "# url: %s\n", doc.FinalURL)
			fmt.Fprintf(w, "# strategy: %s\n", doc.Strategy)
			fmt.Fprintln(w, doc.Text)
			return nil
		},
	}
}

func analyzeCmd(opts *globalOptions) *cobra.Command {
	var mode string
	cmd := &cobra.Command{
		Use:   "analyze <file|->",
		Short: "Score sentiment and keywords of a file or stdin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			m, err := entity.ParseMode(mode)
			if err != nil {
				return err
			}
			text, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			logger := opts.newLogger(cmd.ErrOrStderr())
			svc := newLocalService(logger, literary.DefaultTables())
			a, err := svc.AnalyzeText(ctx, analysisUC.TextInput{Text: text, Mode: m})
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), analysisView{
				Mode:         a.Mode,
				ModelVersion: a.ModelVersion,
				Result:       a.Result,
			})
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "fast", "Sentiment mode (fast, smart)")
	return cmd
}

func literaryCmd(opts *globalOptions) *cobra.Command {
	var (
		language      string
		summaryLength string
		tablesPath    string
	)
	cmd := &cobra.Command{
		Use:   "literary <file|->",
		Short: "Literary insights for a file or stdin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			lang, err := entity.ParseLanguage(language)
			if err != nil {
				return err
			}
			length, err := entity.ParseSummaryLength(summaryLength)
			if err != nil {
				return err
			}
			text, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}

			tables := literary.DefaultTables()
			if tablesPath != "" {
				if tables, err = literary.LoadTables(tablesPath); err != nil {
					return err
				}
			}
			svc := newLocalService(opts.newLogger(cmd.ErrOrStderr()), tables)
			a, err := svc.AnalyzeLiterary(ctx, analysisUC.LiteraryInput{
				Text:          text,
				Language:      lang,
				SummaryLength: length,
			})
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), a.Result.Literary)
		},
	}
	cmd.Flags().StringVar(&language, "language", "english", "Output language (english, spanish)")
	cmd.Flags().StringVar(&summaryLength, "summary-length", "medium", "Summary length (short, medium)")
	cmd.Flags().StringVar(&tablesPath, "tables", config.GetEnvString("LITERARY_TABLES_FILE", ""), "Literary tables YAML file")
	return cmd
}

func tokenCmd() *cobra.Command {
	var (
		subject string
		role    string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an API bearer token signed with JWT_SECRET",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			secret := os.Getenv("JWT_SECRET")
			if secret == "" {
				return errors.New("JWT_SECRET is not set")
			}
			tok, err := hauth.IssueToken([]byte(secret), subject, role, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "sub", "litctl", "Token subject")
	cmd.Flags().StringVar(&role, "role", hauth.RoleViewer, "Role claim (admin, viewer)")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	return cmd
}

/* ───────────────────────────── wiring ───────────────────────────── */

func newGate(logger *slog.Logger) (*fetcher.Gate, fetcher.Config, error) {
	cfg, err := fetcher.LoadConfigFromEnv()
	if err != nil {
		return nil, cfg, err
	}
	table, err := fetcher.DefaultBlockedRanges(cfg.ExtraBlockedCIDRs...)
	if err != nil {
		return nil, cfg, err
	}
	gate := fetcher.NewGate(table,
		fetcher.WithResolveTimeout(cfg.ResolveTimeout),
		fetcher.WithGateLogger(logger))
	return gate, cfg, nil
}

func newFetchService(logger *slog.Logger) (*fetchUC.Service, error) {
	gate, cfg, err := newGate(logger)
	if err != nil {
		return nil, err
	}
	return fetchUC.NewService(gate,
		fetcher.NewHTTPFetcher(gate, cfg),
		extractor.NewDefaultPipeline(extractor.WithLogger(logger)),
		fetchUC.ServiceConfig{Timeout: cfg.Timeout, MaxConcurrent: int64(cfg.MaxConcurrent)},
		logger), nil
}

// newLocalService builds the analysis service on a repository that keeps
// nothing. Smart sentiment follows the same environment as the API.
func newLocalService(logger *slog.Logger, tables *literary.Tables) *analysisUC.Service {
	smartCfg, warnings, err := sentiment.LoadSmartConfigFromEnv()
	for _, w := range warnings {
		logger.Warn("sentiment configuration warning", slog.String("warning", w))
	}
	if err != nil {
		logger.Warn("smart sentiment disabled", slog.Any("error", err))
		smartCfg = sentiment.DefaultSmartConfig()
	}
	return analysisUC.NewService(analysisUC.Deps{
		Repo:      discardRepo{},
		Sentiment: sentiment.NewAnalyzer(smartCfg, logger),
		Keywords:  keywords.NewExtractor(10),
		Literary:  literary.NewAnalyzer(literary.NewTableSource(tables, logger)),
		Logger:    logger,
	})
}

// discardRepo satisfies the repository contract without storing anything.
type discardRepo struct{}

var _ repository.AnalysisRepository = discardRepo{}

func (discardRepo) Create(context.Context, *entity.Analysis) error { return nil }

func (discardRepo) Get(context.Context, string) (*entity.Analysis, error) { return nil, nil }

func (discardRepo) List(context.Context, repository.AnalysisFilters, int, int) ([]*entity.Analysis, error) {
	return nil, nil
}

func (discardRepo) Count(context.Context, repository.AnalysisFilters) (int64, error) { return 0, nil }

func (discardRepo) DeleteOlderThan(context.Context, time.Time) (int64, error) { return 0, nil }

/* ───────────────────────────── I/O ───────────────────────────── */

type analysisView struct {
	Mode         entity.Mode           `json:"mode"`
	ModelVersion string                `json:"model_version"`
	Result       entity.AnalysisResult `json:"result"`
}

func readInput(cmd *cobra.Command, name string) (string, error) {
	var r io.Reader
	if name == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(name)
		if err != nil {
			return "", err
		}
		defer f.Close()
		r = f
	}

	data, err := io.ReadAll(io.LimitReader(r, maxInputBytes+1))
	if err != nil {
		return "", err
	}
	if len(data) > maxInputBytes {
		return "", fmt.Errorf("input exceeds %d bytes", maxInputBytes)
	}
	return string(data), nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
