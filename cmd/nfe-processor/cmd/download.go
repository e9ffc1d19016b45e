package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rezonia/nfe-processor/internal/logstore"
	"github.com/rezonia/nfe-processor/internal/registry"
)

var (
	downloadOutputDir string
	downloadIBPTURL   string
	downloadNoLog     bool
)

var downloadCmd = &cobra.Command{
	Use:   "download [tables...]",
	Short: "Download IBPT tax table CSVs",
	Long: `Download IBPT tax table CSV files from the configured mirror into a
local directory. Without arguments the standard pair of tables is
fetched; pass table names (without the .csv extension) to fetch others.

Every download outcome is appended to the download log under the
configured log directory unless --no-log is set.

Examples:
  nfe-processor download
  nfe-processor download TabelaIBPTaxBA15.1.B -d tabelas/`,
	RunE: runDownload,
}

func init() {
	rootCmd.AddCommand(downloadCmd)

	downloadCmd.Flags().StringVarP(&downloadOutputDir, "dir", "d", ".", "Directory to write the CSV files to")
	downloadCmd.Flags().StringVar(&downloadIBPTURL, "ibpt-url", "", "IBPT CSV mirror base URL (env: NFE_IBPT_URL)")
	downloadCmd.Flags().BoolVar(&downloadNoLog, "no-log", false, "Do not record outcomes in the download log")
}

func runDownload(cmd *cobra.Command, args []string) error {
	tables := args
	if len(tables) == 0 {
		tables = registry.DefaultIBPTTables
	}
	baseURL := downloadIBPTURL
	if baseURL == "" {
		baseURL = cfg.IBPTURL
	}

	var clientOpts []registry.IBPTOption
	if !downloadNoLog {
		store, err := logstore.NewFileStore(cfg.LogDir)
		if err != nil {
			return err
		}
		clientOpts = append(clientOpts, registry.WithIBPTLogStore(store))
	}
	client := registry.NewIBPTClient(baseURL, clientOpts...)

	if err := os.MkdirAll(downloadOutputDir, 0o755); err != nil {
		return err
	}

	failed := 0
	for _, table := range tables {
		data, err := client.Download(cmd.Context(), table)
		if err != nil {
			failed++
			fmt.Printf("FAILED   %s: %v\n", table, err)
			continue
		}

		// keep the original file extension, only the path is ours
		dest := filepath.Join(downloadOutputDir, table+".csv")
		if err := os.WriteFile(dest, data, 0o644); err != nil {
			return err
		}
		fmt.Printf("OK       %s (%d bytes)\n", dest, len(data))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d downloads failed", failed, len(tables))
	}
	return nil
}
