package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
	"github.com/spf13/cobra"

	"github.com/csheth/souljournal/internal/journal"
	"github.com/csheth/souljournal/internal/storage"
)

var (
	historyHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#d4a574"))
	historyMetaStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	historyPromptStyle = lipgloss.NewStyle().Italic(true)
)

const historyWrapWidth = 72

func newHistoryCommand(a *app) *cobra.Command {
	var full bool
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print saved reflections, newest first",
		Long: `Print the reflections kept on this machine, newest first.

Entries are shortened to a preview unless --full is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.load()
			if err != nil {
				return err
			}
			store, err := storage.Open(cfg.Storage.Backend, cfg.Storage.Dir)
			if err != nil {
				return err
			}
			defer store.Close()

			return writeHistory(cmd.OutOrStdout(), journal.LoadHistory(store), full, time.Now())
		},
	}
	cmd.Flags().BoolVar(&full, "full", false, "print whole entries instead of previews")
	return cmd
}

func writeHistory(w io.Writer, history []journal.HistoryRecord, full bool, now time.Time) error {
	if len(history) == 0 {
		_, err := fmt.Fprintln(w, historyMetaStyle.Render("No reflections yet. Run souljournal to write your first entry."))
		return err
	}
	for idx, record := range history {
		if idx > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w, historyHeading(record, now)); err != nil {
			return err
		}
		entry := journal.Preview(record.Entry)
		if full {
			entry = record.Entry
		}
		lines := []string{wordwrap.String(entry, historyWrapWidth)}
		if record.Summary != "" {
			lines = append(lines, historyMetaStyle.Render(wordwrap.String(record.Summary, historyWrapWidth)))
		}
		if full && record.Prompt != "" {
			lines = append(lines, historyPromptStyle.Render(wordwrap.String(record.Prompt, historyWrapWidth)))
		}
		if full && len(record.KeyPhrases) > 0 {
			lines = append(lines, historyMetaStyle.Render("# "+strings.Join(record.KeyPhrases, "  # ")))
		}
		if _, err := fmt.Fprintln(w, indent.String(strings.Join(lines, "\n"), 3)); err != nil {
			return err
		}
	}
	return nil
}

func historyHeading(record journal.HistoryRecord, now time.Time) string {
	emoji := "·"
	if mood, ok := record.Sentiment.Mood(); ok {
		emoji = mood.Emoji
	}
	when := record.Timestamp
	if at, ok := record.Time(); ok {
		when = fmt.Sprintf("%s · %s", at.Local().Format("Mon Jan 2, 2006 15:04"), humanize.RelTime(at, now, "ago", "from now"))
	}
	return fmt.Sprintf("%s %s  %s", emoji, historyHeaderStyle.Render(record.Sentiment.Label()), historyMetaStyle.Render(when))
}
