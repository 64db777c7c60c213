package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var tickCmd = &cobra.Command{
	Use:   "tick <challenge-id>",
	Short: "Acknowledge a completed challenge",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, st, err := openService(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		user, _ := cmd.Flags().GetString("user")
		gameVersion, _ := cmd.Flags().GetString("game-version")
		challengeID := args[0]

		ctx := cmd.Context()
		unticked, err := svc.IsUnticked(ctx, user, gameVersion, challengeID)
		if err != nil {
			return err
		}
		if !unticked {
			fmt.Println("Nothing to acknowledge.")
			return nil
		}

		if err := svc.Tick(ctx, user, gameVersion, challengeID); err != nil {
			return err
		}
		fmt.Printf("Acknowledged %s\n", challengeID)
		return nil
	},
}
