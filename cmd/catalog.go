package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oberon-games/waterfall/internal/catalog"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the challenge catalog",
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all challenges grouped by category",
	RunE: func(cmd *cobra.Command, args []string) error {
		catalogDir, _ := cmd.Flags().GetString("catalog")
		idx, err := catalog.Load(catalogDir, version)
		if err != nil {
			return fmt.Errorf("load catalog: %w", err)
		}

		f := buildFilter(cmd)
		lists := idx.FilterChallenges(f)

		fmt.Printf("%-40s  %-30s  %-8s  %s\n", "ID", "Name", "Scope", "Depends on")
		fmt.Println(strings.Repeat("─", 100))

		total := 0
		for _, groupID := range idx.GroupIDs() {
			challenges := lists[groupID]
			if len(challenges) == 0 {
				continue
			}
			group := idx.GroupByID(groupID)
			fmt.Printf("\n%s\n", strings.ToUpper(group.Name))

			for _, ch := range challenges {
				name := ch.Name
				if runes := []rune(name); len(runes) > 30 {
					name = string(runes[:27]) + "..."
				}
				deps := strings.Join(idx.Dependencies(ch.ID), ", ")
				fmt.Printf("%-40s  %-30s  %-8s  %s\n", ch.ID, name, ch.Scope, deps)
				total++
			}
		}

		fmt.Printf("\n%d challenges\n", total)
		return nil
	},
}

var catalogDepsCmd = &cobra.Command{
	Use:   "deps <challenge-id>",
	Short: "Show what a challenge depends on and what it unlocks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		catalogDir, _ := cmd.Flags().GetString("catalog")
		idx, err := catalog.Load(catalogDir, version)
		if err != nil {
			return fmt.Errorf("load catalog: %w", err)
		}

		ch, err := idx.ChallengeByID(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("%s (%s)\n", ch.Name, ch.ID)

		deps := idx.Dependencies(ch.ID)
		if len(deps) > 0 {
			fmt.Println("\nDepends on:")
			for _, d := range deps {
				fmt.Printf("  %s\n", d)
			}
		}

		graph := idx.Graph()
		var unlocks []string
		for _, treeID := range graph.TreeIDs() {
			if treeID == ch.ID {
				continue
			}
			for _, d := range graph.Dependencies(treeID) {
				if d == ch.ID {
					unlocks = append(unlocks, treeID)
					break
				}
			}
		}
		if len(unlocks) > 0 {
			fmt.Println("\nUnlocks:")
			for _, u := range unlocks {
				fmt.Printf("  %s\n", u)
			}
		}

		if len(deps) == 0 && len(unlocks) == 0 {
			fmt.Println("\nNo dependency relations.")
		}
		return nil
	},
}

func init() {
	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogDepsCmd)
}
