package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/pders01/plx/internal/debuglog"
	"github.com/pders01/plx/internal/media"
	"github.com/pders01/plx/internal/storage"
	"github.com/pders01/plx/internal/tui"
)

// Version is the version of the application, set at build time
var Version = "dev"

var (
	cfgFile string
	dbPath  string
	quiet   bool
)

var rootCmd = &cobra.Command{
	Use:   "plx [gallery]",
	Short: "Parallax image gallery for the terminal",
	Long: `plx shows image galleries as a parallax list: the item at the top of the
view is full size and the ones entering from below grow as they scroll up.
Galleries come from RSS/Atom feeds or from the built-in samples.`,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE:         runRoot,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to configuration file")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "path to database file (overrides config; the search index is kept next to it)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "skip the startup banner")

	rootCmd.AddCommand(demoCmd, addCmd, listCmd, refreshCmd, removeCmd, configCmd, versionCmd)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		os.Exit(1)
	}
}

func runRoot(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	var g *storage.Gallery
	if len(args) == 1 {
		g, err = findGallery(e.store, args[0])
	} else {
		g, err = latestGallery(e.store)
	}
	if err != nil {
		return err
	}
	if g == nil {
		fmt.Println(tui.GetWelcomeMessage())
		return nil
	}

	return runTUI(cmd.Context(), e, g)
}

// runTUI opens the gallery view on g until the user quits.
func runTUI(ctx context.Context, e *env, g *storage.Gallery) error {
	opts := []tui.Option{tui.WithOpener(media.NewLauncher(e.cfg))}
	if e.index != nil {
		items, err := e.store.GetItems(g.ID, 0)
		if err != nil {
			return fmt.Errorf("loading items: %w", err)
		}
		if err := e.index.IndexGallery(g.ID, items); err != nil {
			debuglog.Warnf("plx: indexing %s: %v", g.ID, err)
		} else {
			opts = append(opts, tui.WithFilterer(e.index))
		}
	}

	app := tui.NewApp(e.store, e.cfg, g.ID, opts...)
	p := tea.NewProgram(app,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("running gallery: %w", err)
	}
	return nil
}
