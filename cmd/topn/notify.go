package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/coinwatch/topn/pkg/listing"
	"github.com/coinwatch/topn/pkg/templates"
	"github.com/coinwatch/topn/pkg/value"
	"github.com/spf13/cobra"
)

var contextCmd = cobra.Command{
	Use:   "context",
	Short: "Print the render context built from two listing snapshots",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadTopnConfig()
		if err != nil {
			return err
		}
		run, err := loadListing(cmd, cfg)
		if err != nil {
			return err
		}
		if run.baseline {
			return fmt.Errorf("previous snapshot %s not found", run.previousPath)
		}

		out, err := value.MarshalYAML(listing.BuildContext(run.params))
		if err != nil {
			return fmt.Errorf("encoding context: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

var notifyCmd = cobra.Command{
	Use:   "notify",
	Short: "Compose the announcement for coins that entered the listing",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadTopnConfig()
		if err != nil {
			return err
		}
		run, err := loadListing(cmd, cfg)
		if err != nil {
			return err
		}
		write, _ := cmd.Flags().GetBool("write")

		if run.baseline {
			slog.Info("previous snapshot not found, treating current listing as baseline", "path", run.previousPath)
			if !write {
				return nil
			}
			return run.saveCurrent()
		}
		if len(run.params.NewCoins) == 0 {
			slog.Info("no new coins in listing", "top_n", run.params.TopN)
			return nil
		}
		slog.Info("new coins in listing", "symbols", listing.Symbols(run.params.NewCoins))

		src, err := loadSources(cfg)
		if err != nil {
			return err
		}
		root := listing.BuildContext(run.params)

		if showPrompt, _ := cmd.Flags().GetBool("prompt"); showPrompt {
			fmt.Fprintln(cmd.OutOrStdout(), src.Prompt.Render(root))
			return nil
		}

		text, drafted := listing.Compose(cmd.Context(), src, root, cfg.drafter())
		slog.Debug("composed message", "drafted", drafted)
		fmt.Fprintln(cmd.OutOrStdout(), text)

		if !write {
			return nil
		}
		if err := run.saveCurrent(); err != nil {
			return err
		}
		if run.historyPath == "" {
			slog.Warn("no --history file given, post not recorded")
			return nil
		}
		post := listing.RecentPost{
			CreatedAt:      run.params.Now.UTC(),
			Text:           text,
			MentionedCoins: run.params.NewCoins,
		}
		if err := listing.AppendHistory(run.historyPath, post, cfg.HistoryKeep); err != nil {
			return fmt.Errorf("recording post: %w", err)
		}
		return nil
	},
}

// listingRun is the state one context or notify invocation works on.
type listingRun struct {
	params       listing.Params
	current      listing.Snapshot
	previousPath string
	historyPath  string
	// baseline is set when there is no previous snapshot yet.
	baseline bool
}

// saveCurrent stores the current listing where the next run reads its
// previous snapshot from.
func (r listingRun) saveCurrent() error {
	snap := r.current
	snap.TopN = r.params.TopN
	snap.Convert = r.params.Convert
	snap.UpdatedAt = r.params.Now.UTC()
	if err := listing.SaveSnapshot(r.previousPath, snap); err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	slog.Info("saved listing snapshot", "path", r.previousPath, "coins", len(snap.Coins))
	return nil
}

// helper: diff the snapshots named on the command line into context params
func loadListing(cmd *cobra.Command, cfg topnConfig) (listingRun, error) {
	prevPath, _ := cmd.Flags().GetString("previous")
	curPath, _ := cmd.Flags().GetString("current")
	historyPath, _ := cmd.Flags().GetString("history")
	notifyExits, _ := cmd.Flags().GetBool("notify-exits")

	run := listingRun{previousPath: prevPath, historyPath: historyPath}

	var prev listing.Snapshot
	if _, err := os.Stat(prevPath); errors.Is(err, fs.ErrNotExist) {
		run.baseline = true
	} else if prev, err = listing.LoadSnapshot(prevPath); err != nil {
		return run, fmt.Errorf("loading previous snapshot: %w", err)
	}
	cur, err := listing.LoadSnapshot(curPath)
	if err != nil {
		return run, fmt.Errorf("loading current snapshot: %w", err)
	}
	history, err := listing.LoadHistory(historyPath)
	if err != nil {
		return run, fmt.Errorf("loading history: %w", err)
	}

	entered, exited := listing.Diff(prev.Coins, cur.Coins)
	if !notifyExits {
		exited = nil
	}

	run.current = cur
	run.params = listing.Params{
		ProjectName:  cfg.ProjectName,
		TopN:         cfg.TopN,
		Convert:      cfg.Convert,
		Now:          time.Now(),
		NewCoins:     entered,
		ExitedCoins:  exited,
		History:      history,
		HistoryLimit: cfg.HistoryLimit,
		Locale:       cfg.Locale,
	}
	if cur.TopN > 0 {
		run.params.TopN = cur.TopN
	}
	if cur.Convert != "" {
		run.params.Convert = cur.Convert
	}
	return run, nil
}

// helper: resolve the configured fallback and prompt templates
func loadSources(cfg topnConfig) (listing.Sources, error) {
	fallback, err := templates.Get(cfg.FallbackTemplate)
	if err != nil {
		return listing.Sources{}, fmt.Errorf("loading fallback template: %w", err)
	}
	prompt, err := templates.Get(cfg.PromptTemplate)
	if err != nil {
		return listing.Sources{}, fmt.Errorf("loading prompt template: %w", err)
	}
	return listing.Sources{
		Fallback: fallback.Body,
		Prompt:   prompt.Body,
	}, nil
}
