package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/yoanbernabeu/zoomtype/alphabet"
	"github.com/yoanbernabeu/zoomtype/config"
)

var alphabetsCmd = &cobra.Command{
	Use:   "alphabets",
	Short: "List the available alphabets and colour schemes",
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := loadParams()
		if err != nil {
			return err
		}
		printCatalog(cmd.OutOrStdout(), alphabet.NewCatalog(), params)
		return nil
	},
}

func printCatalog(w io.Writer, catalog *alphabet.Catalog, params *config.Store) {
	current := params.GetString(config.StringAlphabetID)
	fmt.Fprintln(w, "Alphabets:")
	for _, id := range catalog.Alphabets() {
		info, err := catalog.Info(id)
		if err != nil {
			continue
		}
		marker := " "
		if id == current {
			marker = "*"
		}
		fmt.Fprintf(w, "%s %s (%d symbols, %s", marker, id, len(info.Symbols), info.Type)
		if info.TrainingFile != "" {
			fmt.Fprintf(w, ", trains on %s", info.TrainingFile)
		}
		fmt.Fprintln(w, ")")
	}

	currentColours := params.GetString(config.StringColourID)
	fmt.Fprintln(w, "\nColour schemes:")
	for _, id := range catalog.Colours() {
		marker := " "
		if id == currentColours {
			marker = "*"
		}
		fmt.Fprintf(w, "%s %s\n", marker, id)
	}
}
