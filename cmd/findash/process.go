package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"findash/internal/calculator"
	"findash/internal/config"
	"findash/internal/importer"
	"findash/internal/service/excel"
	"findash/internal/util"
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Build a dashboard from a file and print it as JSON",
	Long: `Run the processing pipeline offline.

  findash process --shape placement --file report.xlsx
  findash process --shape finance --file finance.xlsx
  findash process --shape flexible --file data.csv --mapping mapping.json

For the flexible shape every mapping present in mapping.json is applied to the same file.`,
	RunE: runProcess,
}

var (
	procShape   string
	procFile    string
	procMapping string
	procReport  bool
)

func init() {
	processCmd.Flags().StringVar(&procShape, "shape", "placement", "report shape: placement, finance or flexible")
	processCmd.Flags().StringVar(&procFile, "file", "", "input spreadsheet (csv, xlsx, xls)")
	processCmd.Flags().StringVar(&procMapping, "mapping", "", "JSON file with pl_map/bs_map/rec_map/mg_map")
	processCmd.Flags().BoolVar(&procReport, "report", false, "include the per-sheet processing report")
	_ = processCmd.MarkFlagRequired("file")
}

func runProcess(cmd *cobra.Command, args []string) error {
	cfg, _, err := config.LoadConfigWithInfo()
	if err != nil {
		cfg = config.DefaultConfig()
	}
	// 标准输出留给 JSON，日志写到 stderr
	util.InitLoggerTo(os.Stderr, cfg.Log.Level, cfg.Log.Pretty)

	mappings, err := readMappings(procMapping)
	if err != nil {
		return err
	}
	if procShape == "flexible" && mappings.PL == nil && mappings.BS == nil && mappings.Rec == nil && mappings.Margin == nil {
		return fmt.Errorf("--mapping is required for the flexible shape")
	}

	coord := importer.NewCoordinator(excel.NewLoader(cfg.Dashboard.SheetHints...),
		importer.WithFinanceMonths(cfg.Dashboard.FinanceMonths),
		importer.WithMonthLabels(cfg.Dashboard.DefaultMonthLabels),
	)
	res, err := coord.Process(procShape, importer.Job{UserID: "cli", Path: procFile}, mappings)
	if err != nil {
		return err
	}
	return writeResult(cmd.OutOrStdout(), res, procReport)
}

func readMappings(path string) (calculator.Mappings, error) {
	var m calculator.Mappings
	if path == "" {
		return m, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return m, fmt.Errorf("read mapping: %w", err)
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("parse mapping %s: %w", path, err)
	}
	return m, m.Validate()
}

func writeResult(w io.Writer, res *importer.Result, withReport bool) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if withReport {
		return enc.Encode(res)
	}
	return enc.Encode(res.Dashboard)
}
