package cli

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/yoanbernabeu/zoomtype/alphabet"
	"github.com/yoanbernabeu/zoomtype/mcp"
)

var mcpServeCmd = &cobra.Command{
	Use:   "mcp-serve",
	Short: "Serve predictions to agents over MCP (stdio)",
	Long: `Start a Model Context Protocol server on stdin/stdout.

Tools:
  zoomtype_predict    most likely next symbols after some text
  zoomtype_train      teach the model a piece of text
  zoomtype_alphabets  list available alphabets`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := loadParams()
		if err != nil {
			return err
		}
		// stdout carries the protocol.
		log.SetOutput(cmd.ErrOrStderr())
		return mcp.NewServer(params, alphabet.NewCatalog()).Serve()
	},
}
