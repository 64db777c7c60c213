package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oberon-games/waterfall/internal/tui"
)

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show completion progress per category",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, st, err := openService(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		user, _ := cmd.Flags().GetString("user")
		gameVersion, _ := cmd.Flags().GetString("game-version")

		if interactive, _ := cmd.Flags().GetBool("interactive"); interactive {
			return tui.Run(svc, user, gameVersion, buildFilter(cmd))
		}

		ctx := cmd.Context()
		idx := svc.Index()
		lists := idx.FilterChallenges(buildFilter(cmd))

		for _, groupID := range idx.GroupIDs() {
			challenges := lists[groupID]
			if len(challenges) == 0 {
				continue
			}
			group := idx.GroupByID(groupID)

			done := 0
			unticked := 0
			for _, ch := range challenges {
				completed, err := svc.IsCompleted(ctx, user, gameVersion, ch.ID)
				if err != nil {
					return err
				}
				if completed {
					done++
				}
				isUnticked, err := svc.IsUnticked(ctx, user, gameVersion, ch.ID)
				if err != nil {
					return err
				}
				if isUnticked {
					unticked++
				}
			}

			line := fmt.Sprintf("%-30s  %3d/%-3d", group.Name, done, len(challenges))
			if unticked > 0 {
				line += fmt.Sprintf("  (%d new)", unticked)
			}
			fmt.Println(line)
		}

		totals, err := svc.CountCompleted(ctx, user, gameVersion, lists)
		if err != nil {
			return err
		}
		fmt.Printf("\n%d/%d completed\n", totals.Completed, totals.Challenges)
		return nil
	},
}

func init() {
	progressCmd.Flags().BoolP("interactive", "i", false, "Open the interactive challenge map")
}
