package main

import (
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"compliment-deck/app"
	"compliment-deck/catalog"
	"compliment-deck/config"
	"compliment-deck/logging"
	"compliment-deck/model"
	"compliment-deck/store"
	"compliment-deck/tui"
)

var (
	configPath string
	dataDir    string
	backend    string
	verbose    bool

	drawCount  int
	confirmYes bool

	logger *zap.Logger
)

// session is everything a command needs once flags are resolved.
type session struct {
	cfg     *config.Config
	svc     *app.Service
	kv      store.KV
	startup string
}

func (s *session) Close() {
	if c, ok := s.kv.(io.Closer); ok {
		if err := c.Close(); err != nil {
			logger.Warn("failed to close store", zap.Error(err))
		}
	}
}

var rootCmd = &cobra.Command{
	Use:   "compliments",
	Short: "A deck of compliments, drawn one at a time",
	Long: `compliments draws from a shuffled deck of compliment cards without
repeating one until the whole deck has been seen.

Run without arguments to open the interactive deck.`,
	SilenceUsage: true,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		p := tea.NewProgram(tui.NewModel(s.svc, logger, s.startup), tea.WithAltScreen())
		_, err = p.Run()
		return err
	},
}

var drawCmd = &cobra.Command{
	Use:   "draw",
	Short: "Draw cards without opening the interactive deck",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()
		return runDraw(cmd.OutOrStdout(), s.svc, drawCount)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show deck and progress status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()
		printStatus(cmd.OutOrStdout(), s.svc.Status())
		return nil
	},
}

var favoritesCmd = &cobra.Command{
	Use:   "favorites",
	Short: "List favorite cards",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()
		favs := s.svc.Favorites()
		if len(favs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No favorites yet.")
			return nil
		}
		for _, card := range favs {
			fmt.Fprintf(cmd.OutOrStdout(), "%-16s %s\n", card.ID, card.Headline())
		}
		return nil
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Erase all progress, favorites and preferences",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !confirmYes {
			return fmt.Errorf("refusing to reset without --yes")
		}
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()
		if err := s.svc.ResetAllProgress(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "All progress erased.")
		return nil
	},
}

var finalThreeCmd = &cobra.Command{
	Use:       "final-three [open-when]",
	Short:     "Draw three cards for an open-when moment",
	Long:      "Draws up to three cards for the moment without touching the deck.",
	Args:      cobra.ExactArgs(1),
	ValidArgs: openWhenArgs(),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := model.OpenWhen(args[0])
		if !key.Valid() {
			return fmt.Errorf("unknown open-when key %q (want one of %v)", args[0], openWhenArgs())
		}
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()
		for i, card := range s.svc.Deck().DrawFinalThree(key) {
			fmt.Fprintf(cmd.OutOrStdout(), "%d. %s\n", i+1, card.Headline())
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (YAML)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Data directory (overrides config)")
	rootCmd.PersistentFlags().StringVar(&backend, "store", "", "Store backend: file, sqlite or memory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	drawCmd.Flags().IntVarP(&drawCount, "count", "n", 1, "Number of cards to draw")
	resetCmd.Flags().BoolVar(&confirmYes, "yes", false, "Confirm the reset")

	rootCmd.AddCommand(drawCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(favoritesCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(finalThreeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func openSession() (*session, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if backend != "" {
		cfg.Store = backend
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err = logging.New(cfg.DataDir, cfg.LogLevel, verbose)
	if err != nil {
		return nil, err
	}
	logger = logger.With(zap.String("session", uuid.NewString()))

	kv, startup, err := store.Open(cfg.Backend(), cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	if startup != "" {
		logger.Warn("store recovered", zap.String("detail", startup))
	}

	opts := cfg.ServiceOptions()
	opts.Deck.Logger = logger.Named("deck")
	opts.Progress.Logger = logger.Named("progress")
	svc := app.NewService(kv, catalog.Default(), opts)

	logger.Debug("session opened",
		zap.String("data_dir", cfg.DataDir),
		zap.String("store", cfg.Store),
	)
	return &session{cfg: cfg, svc: svc, kv: kv, startup: startup}, nil
}

func runDraw(w io.Writer, svc *app.Service, n int) error {
	if n < 1 {
		return fmt.Errorf("count must be at least 1, got %d", n)
	}
	for i := 0; i < n; i++ {
		res := svc.Draw()
		switch res.Reason {
		case app.DrawDailyLimit:
			fmt.Fprintf(w, "Daily limit reached. Next draw in %s.\n", svc.Deck().TimeUntilNextDraw().Round(time.Second))
			return nil
		case app.DrawEmptyPool:
			fmt.Fprintln(w, "No cards match the current filter.")
			return nil
		}
		fmt.Fprintln(w, res.Card.ShareText())
		if res.SecretUnlocked {
			fmt.Fprintln(w, "* Secret deck unlocked!")
		}
		if res.JustExhausted {
			fmt.Fprintln(w, "* You have seen the whole deck.")
		}
	}
	return nil
}

func printStatus(w io.Writer, st app.Status) {
	fmt.Fprintf(w, "seen:        %d/%d (draws %d)\n", st.Seen, st.PoolSize, st.DrawCount)
	if st.SeenTotal != st.Seen {
		fmt.Fprintf(w, "seen total:  %d (across all filters)\n", st.SeenTotal)
	}
	fmt.Fprintf(w, "filter:      %s\n", st.Filter.String())
	if st.SecretUnlocked {
		fmt.Fprintln(w, "secret deck: unlocked")
	} else {
		fmt.Fprintf(w, "secret deck: %d/%d draws\n", st.SecretProgress, st.SecretUnlockDraws)
	}
	if st.DailyMode {
		fmt.Fprintf(w, "daily:       %d/%d left\n", st.DailyRemaining, st.DailyLimit)
	}
	fmt.Fprintf(w, "reasons:     %d\n", st.Reasons)
	fmt.Fprintf(w, "love meter:  %d/%d\n", st.LovePoints, st.LoveMax)
	fmt.Fprintf(w, "theme:       %s\n", st.Theme)
	fmt.Fprintf(w, "favorites:   %d\n", st.Favorites)
}

func openWhenArgs() []string {
	out := make([]string, len(model.OpenWhens))
	for i, k := range model.OpenWhens {
		out[i] = string(k)
	}
	return out
}
