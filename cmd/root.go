package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/oberon-games/waterfall/internal/catalog"
	"github.com/oberon-games/waterfall/internal/engine"
	"github.com/oberon-games/waterfall/internal/profile"
	"github.com/oberon-games/waterfall/internal/statemachine"
	"github.com/oberon-games/waterfall/internal/tui"
)

var rootCmd = &cobra.Command{
	Use:   "waterfall",
	Short: "Challenge progression engine",
	Long:  "Waterfall tracks challenge completion, dependency cascades and persistent progression for game profiles.",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, st, err := openService(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		user, _ := cmd.Flags().GetString("user")
		gameVersion, _ := cmd.Flags().GetString("game-version")
		return tui.Run(svc, user, gameVersion, buildFilter(cmd))
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides WATERFALL_DB env var)")
	rootCmd.PersistentFlags().String("catalog", "catalog", "Path to the challenge catalog directory")
	rootCmd.PersistentFlags().String("user", "local", "Profile ID to track progression under")
	rootCmd.PersistentFlags().String("game-version", "h3", "Game version progression is scoped to")
	rootCmd.PersistentFlags().String("contract", "", "Limit challenges to one contract")
	rootCmd.PersistentFlags().String("location", "", "Contract location ID, used with --contract")
	rootCmd.PersistentFlags().String("parent-location", "", "Limit challenges to a parent location")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(tickCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then WATERFALL_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, profile.EnsureDir(p)
	}
	return profile.DefaultDBPath()
}

// openService loads the catalog, opens the progression store and wires
// the engine. The caller owns closing the returned store.
func openService(cmd *cobra.Command) (*engine.Service, *profile.Store, error) {
	catalogDir, _ := cmd.Flags().GetString("catalog")
	idx, err := catalog.Load(catalogDir, version)
	if err != nil {
		return nil, nil, fmt.Errorf("load catalog: %w", err)
	}

	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := profile.Open(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}

	level := slog.LevelWarn
	if v, _ := cmd.Flags().GetBool("verbose"); v {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	return engine.New(idx, statemachine.Simple{}, st, logger), st, nil
}

// buildFilter maps the location flags onto a catalog filter.
func buildFilter(cmd *cobra.Command) catalog.Filter {
	contract, _ := cmd.Flags().GetString("contract")
	location, _ := cmd.Flags().GetString("location")
	parent, _ := cmd.Flags().GetString("parent-location")

	switch {
	case contract != "":
		return catalog.Filter{
			Type:             catalog.FilterContract,
			ContractID:       contract,
			LocationID:       location,
			ParentLocationID: parent,
		}
	case parent != "":
		return catalog.Filter{
			Type:             catalog.FilterParentLocation,
			ParentLocationID: parent,
		}
	default:
		return catalog.Filter{}
	}
}
