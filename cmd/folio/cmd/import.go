package cmd

import (
	"fmt"
	"os"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"
)

const dirFlag = "dir"

var importFlags = map[string]cobraflags.Flag{
	dirFlag: &cobraflags.StringFlag{
		Name:  dirFlag,
		Value: "",
		Usage: "Directory of markdown books (defaults to CONTENT_PATH)",
	},
}

func ImportCmd() *cobra.Command {
	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Import markdown books into the catalog",
		Long: `Import every .md file under the content directory as a book.

Each file starts with YAML front matter (title, author, genre, price_cents, tags, ...)
and splits its body into pages with <!-- pagebreak --> markers. Books whose title
already exists are skipped.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			dir := importFlags[dirFlag].GetString()
			if dir == "" {
				dir = a.Cfg.ContentPath
			}

			report, err := a.ImportService.ImportFS(cmd.Context(), os.DirFS(dir))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d book(s), skipped %d\n", len(report.Imported), len(report.Skipped))
			return nil
		},
	}

	cobraflags.RegisterMap(importCmd, importFlags)
	return importCmd
}
