package main

import (
	"encoding/json"
	"fmt"
	"io"

	"legalassist-backend/app"
	"legalassist-backend/legifrance"
	"legalassist-backend/models"

	"github.com/spf13/cobra"
)

var (
	codesCmd = &cobra.Command{
		Use:   "codes",
		Short: "List the searchable codes",
		Run: func(cmd *cobra.Command, args []string) {
			printCodes(cmd.OutOrStdout(), legifrance.Codes())
		},
	}

	exportCSVCmd = &cobra.Command{
		Use:   "export-csv",
		Short: "Regenerate the article dataset from stored articles",
		RunE:  runExportCSV,
	}

	articleCmd = &cobra.Command{
		Use:   "article [id]",
		Short: "Print the full Légifrance payload of one article",
		Args:  cobra.ExactArgs(1),
		RunE:  runArticle,
	}
)

func printCodes(out io.Writer, codes []models.LegalCode) {
	for _, c := range codes {
		fmt.Fprintf(out, "%3s  %s\n", c.ID, c.Label)
	}
}

func runExportCSV(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	archive, closeArchive, err := app.NewArchive(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeArchive()

	records, err := archive.Records(ctx)
	if err != nil {
		return fmt.Errorf("failed to read stored articles: %w", err)
	}
	if err := archive.ExportCSV(ctx); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d articles exportés\n", len(records))
	return nil
}

func runArticle(cmd *cobra.Command, args []string) error {
	client, err := app.NewSearchClient(cfg, logger)
	if err != nil {
		return err
	}

	raw, err := client.GetArticle(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	var pretty any
	if err := json.Unmarshal(raw, &pretty); err != nil {
		return fmt.Errorf("failed to decode article: %w", err)
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(pretty)
}
