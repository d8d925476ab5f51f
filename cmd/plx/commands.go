package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pders01/plx/internal/config"
	"github.com/pders01/plx/internal/samples"
	"github.com/pders01/plx/internal/tui"
)

var (
	seedOnly     bool
	allowLocal   bool
	forceRefresh bool
	configOutput string
)

var demoCmd = &cobra.Command{
	Use:   "demo [sample]",
	Short: "Seed a built-in sample gallery and open it",
	Long: `demo stores one of the built-in galleries (default "cats") and opens it.
Running it again refreshes the items but keeps the saved scroll position.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := "cats"
		if len(args) == 1 {
			name = args[0]
		}

		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		g, n, err := e.seedSample(name)
		if err != nil {
			if names, nerr := samples.Names(); nerr == nil {
				return fmt.Errorf("%w (available: %v)", err, names)
			}
			return err
		}
		if seedOnly {
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %s (%s) with %d items\n", g.Title, g.ID, n)
			return nil
		}
		return runTUI(cmd.Context(), e, g)
	},
}

var addCmd = &cobra.Command{
	Use:   "add <url>",
	Short: "Import a feed as a gallery",
	Long: `add fetches an RSS or Atom feed and stores the entries that carry an image.
Subreddit and Mastodon profile URLs and web pages that advertise a feed
are resolved to their feed first.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		m := e.manager()
		m.SetPermissiveValidation(allowLocal)
		g, err := m.AddGallery(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		n, err := e.store.CountItems(g.ID)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s) with %d items\n", g.Title, g.ID, n)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List galleries",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		galleries, err := e.store.GetAllGalleries()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(galleries) == 0 {
			fmt.Fprintln(out, "No galleries yet. Try `plx demo` or `plx add <feed-url>`.")
			return nil
		}

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tITEMS\tSOURCE")
		for _, g := range galleries {
			n, err := e.store.CountItems(g.ID)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", g.ID, g.Title, n, g.Source)
		}
		return w.Flush()
	},
}

var refreshCmd = &cobra.Command{
	Use:   "refresh [gallery]",
	Short: "Refetch feed galleries",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		m := e.manager()
		m.SetForceRefresh(forceRefresh)
		out := cmd.OutOrStdout()

		if len(args) == 0 {
			if err := m.RefreshAll(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(out, "All galleries refreshed")
			return nil
		}

		g, err := findGallery(e.store, args[0])
		if err != nil {
			return err
		}
		updated, err := m.RefreshGallery(cmd.Context(), g.ID)
		if err != nil {
			return err
		}
		if updated {
			fmt.Fprintf(out, "Refreshed %s\n", g.Title)
		} else {
			fmt.Fprintf(out, "%s is up to date\n", g.Title)
		}
		return nil
	},
}

var removeCmd = &cobra.Command{
	Use:     "remove <gallery>",
	Aliases: []string{"rm"},
	Short:   "Delete a gallery with its items and saved position",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		g, err := findGallery(e.store, args[0])
		if err != nil {
			return err
		}
		if err := e.store.DeleteGallery(g.ID); err != nil {
			return err
		}
		if e.index != nil {
			if err := e.index.RemoveGallery(g.ID); err != nil {
				return fmt.Errorf("removing %s from the search index: %w", g.ID, err)
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %s (%s)\n", g.Title, g.ID)
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configGenCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write the default configuration",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		path := configOutput
		if path == "" {
			home, _ := os.UserHomeDir()
			path = filepath.Join(home, ".config", "plx", "config.toml")
		}
		if err := config.GenerateDefaultConfig(path); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Generated default configuration at: %s\n", path)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		if !quiet {
			tui.ShowBanner(Version)
		}
		fmt.Printf("plx %s\n", Version)
		fmt.Println("parallax image gallery")
		fmt.Println("github.com/pders01/plx")
	},
}

func init() {
	demoCmd.Flags().BoolVar(&seedOnly, "seed-only", false, "store the sample without opening it")
	addCmd.Flags().BoolVar(&allowLocal, "allow-local", false, "accept localhost and private network feeds")
	refreshCmd.Flags().BoolVarP(&forceRefresh, "force", "f", false, "ignore ETag and Last-Modified")
	configGenCmd.Flags().StringVarP(&configOutput, "output", "o", "", "where to write the file (default ~/.config/plx/config.toml)")
	configCmd.AddCommand(configGenCmd)
}
