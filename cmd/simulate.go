package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/oberon-games/waterfall/internal/catalog"
	"github.com/oberon-games/waterfall/internal/engine"
)

// wireEvent mirrors the shape events arrive in from the game protocol.
type wireEvent struct {
	Name      string         `json:"Name"`
	Value     map[string]any `json:"Value"`
	Timestamp float64        `json:"Timestamp"`
}

var simulateCmd = &cobra.Command{
	Use:   "simulate [events.jsonl]",
	Short: "Replay a session's events and report completions",
	Long: `Simulate starts a session, replays JSON Lines events through it and
prints every challenge completed along the way, cascades included.
Reads from stdin when no file is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, st, err := openService(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		var in io.Reader = cmd.InOrStdin()
		if len(args) == 1 {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open events: %w", err)
			}
			defer f.Close()
			in = f
		}

		out := cmd.OutOrStdout()
		svc.SetHooks(engine.Hooks{
			ChallengeCompleted: func(userID string, ch *catalog.Challenge, gameVersion string) {
				fmt.Fprintf(out, "completed  %s  %s\n", ch.ID, ch.Name)
			},
		})

		user, _ := cmd.Flags().GetString("user")
		gameVersion, _ := cmd.Flags().GetString("game-version")
		contract, _ := cmd.Flags().GetString("contract")

		ctx := cmd.Context()
		sess, err := svc.StartSession(ctx, user, gameVersion, contract, buildFilter(cmd))
		if err != nil {
			return fmt.Errorf("start session: %w", err)
		}
		fmt.Fprintf(out, "session %s tracking %d challenges\n", sess.ID, len(sess.Contexts))

		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
		lineNo := 0
		applied := 0
		for scanner.Scan() {
			lineNo++
			line := scanner.Bytes()
			if len(line) == 0 {
				continue
			}
			var we wireEvent
			if err := json.Unmarshal(line, &we); err != nil {
				return fmt.Errorf("line %d: %w", lineNo, err)
			}
			ev := engine.Event{Name: we.Name, Payload: we.Value, Timestamp: we.Timestamp}
			if err := svc.ApplyEvent(ctx, sess, ev); err != nil {
				return fmt.Errorf("apply %s (line %d): %w", we.Name, lineNo, err)
			}
			applied++
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("read events: %w", err)
		}

		totals, err := svc.CountCompleted(ctx, user, gameVersion, svc.Index().FilterChallenges(buildFilter(cmd)))
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%d events applied, %d/%d challenges completed\n",
			applied, totals.Completed, totals.Challenges)
		return nil
	},
}
