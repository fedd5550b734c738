package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/tabula/internal/extract"
)

var extractCmd = &cobra.Command{
	Use:   "extract FILE",
	Short: "Extract positioned text, tables, and form fields from a PDF",
	Long: `Extract processes a PDF and prints the extraction result as JSON:
positioned text items per page, inferred tables, interactive form fields,
and the detected document type.

The method defaults to auto: the text layer of the leading pages is probed
and OCR is used only when the layer is missing or too sparse.`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().String("method", "auto", "extraction method: auto, text, or ocr")
	extractCmd.Flags().String("out", "", "write the JSON result to a file instead of stdout")
	extractCmd.Flags().String("type", "", "skip classification and use this document type")
	extractCmd.Flags().Bool("pretty", true, "indent the JSON output")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	inputPath := args[0]
	method, _ := cmd.Flags().GetString("method")
	outPath, _ := cmd.Flags().GetString("out")
	typeHint, _ := cmd.Flags().GetString("type")
	pretty, _ := cmd.Flags().GetBool("pretty")

	data, err := os.ReadFile(inputPath) //nolint:gosec // user-provided input path is expected
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	cfg := GetConfig()
	logger, err := cfg.NewLogger()
	if err != nil {
		return err
	}

	engine, err := extract.NewEngine(cfg.Engine, logger)
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}

	result, procErr := engine.ProcessPDF(cmd.Context(), extract.Request{
		Data:     data,
		FileName: inputPath,
		Method:   extract.Method(method),
		TypeHint: typeHint,
	})

	var encoded []byte
	if pretty {
		encoded, err = json.MarshalIndent(result, "", "  ")
	} else {
		encoded, err = json.Marshal(result)
	}
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	if outPath != "" {
		if err := os.WriteFile(outPath, encoded, 0o600); err != nil {
			return fmt.Errorf("write result: %w", err)
		}
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
	}

	if procErr != nil {
		return fmt.Errorf("extraction failed: %w", procErr)
	}
	return nil
}
