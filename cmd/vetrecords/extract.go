package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/vet-records/internal/app"
	"github.com/joseph-ayodele/vet-records/internal/entity"
	"github.com/joseph-ayodele/vet-records/internal/ingest"
)

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Print the raw text extracted from a PDF or image",
	Args:  cobra.ExactArgs(1),
	RunE:  runExtract,
}

var structureCmd = &cobra.Command{
	Use:   "structure <file>",
	Short: "Extract and structure a record, printing the fields as JSON",
	Long: `Runs the full pipeline on one file without touching the database.
Plain-text files (.txt) skip extraction and go straight to structuring.`,
	Args: cobra.ExactArgs(1),
	RunE: runStructure,
}

func init() {
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(structureCmd)
}

func readDocument(path string) (*entity.Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return entity.NewDocument(filepath.Base(path), ingest.DetectContentType(path, content), content), nil
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	doc, err := readDocument(args[0])
	if err != nil {
		return err
	}
	extractor, _, _ := app.NewPipeline(cfg, logger)
	raw, err := extractor.Extract(cmd.Context(), doc)
	if err != nil {
		return err
	}
	if raw == nil {
		return fmt.Errorf("no text found in %s", args[0])
	}
	fmt.Fprintln(cmd.OutOrStdout(), raw.Text)
	return nil
}

func runStructure(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	_, orch, pipe := app.NewPipeline(cfg, logger)

	out := struct {
		Fields   entity.Fields `json:"fields"`
		Strategy string        `json:"strategy"`
		Method   string        `json:"method,omitempty"`
	}{}

	if filepath.Ext(args[0]) == ".txt" {
		text, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		fields, att := orch.Structure(cmd.Context(), string(text))
		out.Fields, out.Strategy = fields.Compact(), att.Strategy
	} else {
		doc, err := readDocument(args[0])
		if err != nil {
			return err
		}
		res, err := pipe.Run(cmd.Context(), doc)
		if err != nil {
			return err
		}
		out.Fields, out.Strategy = res.Fields.Compact(), res.Attempt.Strategy
		if res.Raw != nil {
			out.Method = res.Raw.Method
		}
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
