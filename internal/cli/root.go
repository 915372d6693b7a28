// Package cli wires the souljournal commands.
package cli

import (
	"errors"
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/csheth/souljournal/internal/analysis"
	"github.com/csheth/souljournal/internal/config"
	"github.com/csheth/souljournal/internal/draft"
	"github.com/csheth/souljournal/internal/journal"
	"github.com/csheth/souljournal/internal/logging"
	"github.com/csheth/souljournal/internal/storage"
	"github.com/csheth/souljournal/internal/tui"
)

// Version is stamped at build time with -ldflags "-X .../internal/cli.Version=...".
var Version = "dev"

type app struct {
	v           *viper.Viper
	cfgFile     string
	verbose     bool
	noAltScreen bool
	draftFile   string
}

// Execute runs the root command.
func Execute() error {
	return NewRootCommand().Execute()
}

// NewRootCommand builds the command tree with its own viper instance.
func NewRootCommand() *cobra.Command {
	a := &app{v: viper.New()}
	config.SetDefaults(a.v)
	config.BindEnv(a.v)

	root := &cobra.Command{
		Use:   "souljournal",
		Short: "Soul Journal - write an entry, get a gentle reflection back",
		Long: `Soul Journal is a terminal journal. Write an entry, press Ctrl+S, and an
analysis service reads it back to you: the overall mood, a short summary,
a question to sit with, and the phrases that stood out.

Your last ten reflections are kept on this machine.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.readConfigFile()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default: $HOME/.souljournal/config.yaml)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")
	flags.String("storage", "", "history storage backend: file, sqlite or memory")
	flags.String("data-dir", "", "directory holding history and logs (default: $HOME/.souljournal)")
	_ = a.v.BindPFlag("storage.backend", flags.Lookup("storage"))
	_ = a.v.BindPFlag("storage.dir", flags.Lookup("data-dir"))

	root.Flags().String("endpoint", "", "analysis endpoint URL")
	root.Flags().String("backend", "", "analysis backend: http, ollama or openai")
	root.Flags().StringVar(&a.draftFile, "draft-file", "", "seed the draft from a text or PDF file")
	root.Flags().BoolVar(&a.noAltScreen, "no-alt-screen", false, "disable the alternate screen buffer")
	_ = a.v.BindPFlag("endpoint", root.Flags().Lookup("endpoint"))
	_ = a.v.BindPFlag("backend", root.Flags().Lookup("backend"))

	root.AddCommand(newHistoryCommand(a), newConfigCommand(a), newVersionCommand())
	return root
}

func (a *app) readConfigFile() error {
	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", a.cfgFile, err)
		}
		return nil
	}
	a.v.AddConfigPath(config.Dir())
	a.v.SetConfigName("config")
	a.v.SetConfigType("yaml")
	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func (a *app) load() (config.Config, error) {
	cfg, err := config.Load(a.v)
	if err != nil {
		return config.Config{}, err
	}
	if a.verbose {
		cfg.Log.Level = "debug"
	}
	return cfg, nil
}

func (a *app) runTUI() error {
	cfg, err := a.load()
	if err != nil {
		return err
	}
	if err := logging.Init(cfg.Log.File, cfg.Log.Level); err != nil {
		return err
	}
	defer logging.Close()

	store, err := storage.Open(cfg.Storage.Backend, cfg.Storage.Dir)
	if err != nil {
		return err
	}
	defer store.Close()

	analyzer, notice := buildAnalyzer(cfg)
	controller, err := journal.New(journal.Config{Analyzer: analyzer, Store: store})
	if err != nil {
		return err
	}

	if a.draftFile != "" {
		text, err := draft.Load(a.draftFile)
		if err != nil {
			return err
		}
		if err := controller.SetDraft(text); err != nil {
			notice = fmt.Sprintf("%s %s was not loaded.", journal.UserMessage(err), filepath.Base(a.draftFile))
		} else {
			logging.Info("draft imported", "path", a.draftFile)
		}
	}

	logging.Info("session ready",
		"analyzer", analyzer.Name(),
		"storage", storage.Location(cfg.Storage.Backend, cfg.Storage.Dir),
		"history", len(controller.History()),
	)

	opts := []tea.ProgramOption{}
	if !a.noAltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	program := tea.NewProgram(
		tui.New(tui.Config{
			Controller:     controller,
			AnalyzerName:   analyzer.Name(),
			AnalyzeTimeout: cfg.Analysis().EffectiveTimeout(),
			Notice:         notice,
		}),
		opts...,
	)
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("program error: %w", err)
	}
	return nil
}

// buildAnalyzer falls back to an analyzer that reports the configuration
// problem on submit, so history stays browsable.
func buildAnalyzer(cfg config.Config) (analysis.Analyzer, string) {
	analyzer, err := analysis.New(cfg.Analysis())
	if err != nil {
		logging.Warn("analysis disabled", "error", err)
		return analysis.Unavailable(err), fmt.Sprintf("Analysis disabled: %v. Set SOULJOURNAL_ENDPOINT or run souljournal config init.", err)
	}
	return analyzer, ""
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "souljournal %s\n", Version)
		},
	}
}
