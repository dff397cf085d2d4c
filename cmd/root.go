package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "manifester",
		Short: "Publish digitized collections as IIIF manifests",
		Long: `Manifester turns bibliographic and archival metadata plus a folder of
page images into IIIF Presentation manifests, Mirador viewer pages, and
Handle registration batches.

Source records can come from a binary MARC export, a digitization
metadata workbook, or an ArchivesSpace record URI.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	cmd.AddCommand(newGenerateCmd())
	cmd.AddCommand(newUploadCmd())

	return cmd
}
