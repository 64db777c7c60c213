package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oberon-games/waterfall/internal/profile"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all progression for a user and game version",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		user, _ := cmd.Flags().GetString("user")
		gameVersion, _ := cmd.Flags().GetString("game-version")

		if !yes {
			return fmt.Errorf("refusing to delete progression for %s/%s without --yes", user, gameVersion)
		}

		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return fmt.Errorf("resolve DB path: %w", err)
		}
		st, err := profile.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer st.Close()

		if err := st.Reset(cmd.Context(), user, gameVersion); err != nil {
			return fmt.Errorf("reset: %w", err)
		}
		fmt.Printf("Progression for %s/%s deleted.\n", user, gameVersion)
		return nil
	},
}

func init() {
	resetCmd.Flags().Bool("yes", false, "Confirm the deletion")
}
