package cli

import (
	"fmt"
	"strings"

	"github.com/ppiankov/paperscout/internal/model"
	"github.com/ppiankov/paperscout/internal/pipeline"
	"github.com/spf13/cobra"
)

// abstractCmd represents the abstract command
var abstractCmd = &cobra.Command{
	Use:   "abstract <url>...",
	Short: "Retrieve the abstract behind publisher links",
	Long: `Abstract runs the publisher rules (ACM, IEEE, Springer, ScienceDirect) on
each link and prints the retrieval status and text. Useful to check whether a
publisher layout is still recognized.

Example:
  paperscout abstract https://dl.acm.org/doi/10.1145/3477132.3483553
  paperscout abstract https://doi.org/10.1109/HPCA56546.2023.10071085`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		retriever := pipeline.NewRetriever(cfg, nil)

		out := cmd.OutOrStdout()
		found := 0
		failures := make(map[model.ErrorKind]int)
		for _, link := range args {
			abstract := retriever.Retrieve(cmd.Context(), link)
			fmt.Fprintf(out, "[%s] %s\n%s\n\n", abstract.Status, link, abstract.Text)
			if kind := abstract.Status.Kind(); kind != "" {
				failures[kind]++
			} else {
				found++
			}
		}
		fmt.Fprintln(out, summarizeAbstracts(found, failures))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(abstractCmd)
}

// summarizeAbstracts renders e.g. "2 found, 1 unsupported, 1 transport_error"
func summarizeAbstracts(found int, failures map[model.ErrorKind]int) string {
	parts := []string{fmt.Sprintf("%d found", found)}
	for _, kind := range []model.ErrorKind{model.KindNotFound, model.KindUnsupported, model.KindTransport} {
		if n := failures[kind]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, kind))
		}
	}
	return strings.Join(parts, ", ")
}
