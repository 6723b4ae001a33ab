package cli

import (
	"fmt"
	"strings"

	"github.com/ppiankov/paperscout/internal/extract/adapters"
	"github.com/ppiankov/paperscout/internal/model"
	"github.com/spf13/cobra"
)

// venuesCmd represents the venues command
var venuesCmd = &cobra.Command{
	Use:   "venues",
	Short: "List the selectable conferences",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		for _, group := range []struct {
			title  string
			venues []model.Venue
		}{
			{"A* conferences (--tier a-star)", model.AStarVenues},
			{"A conferences (--tier a)", model.AVenues},
		} {
			fmt.Fprintln(out, group.title)
			for _, v := range group.venues {
				fmt.Fprintf(out, "  %-12s %s\n", v.Key, v.Name)
			}
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "Abstract rules (priority order): %s\n", strings.Join(adapters.NewRegistry().Names(), ", "))
	},
}

func init() {
	rootCmd.AddCommand(venuesCmd)
}
