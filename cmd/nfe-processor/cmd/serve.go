package cmd

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rezonia/nfe-processor/internal/logging"
	"github.com/rezonia/nfe-processor/internal/logstore"
	"github.com/rezonia/nfe-processor/internal/server"
)

var (
	serverAddr   string
	serverDebug  bool
	readTimeout  time.Duration
	writeTimeout time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start an HTTP API server for processing fiscal documents.

The API provides endpoints for:
  - POST   /api/v1/normalize        - Normalize XML into a document
  - POST   /api/v1/convert          - Convert XMLs to PDFs (JSON)
  - POST   /api/v1/convert/archive  - Convert XMLs to a zip of PDFs
  - POST   /api/v1/report           - Flattened tabular report
  - POST   /api/v1/report/export    - Report as xlsx/csv
  - GET    /api/v1/barcode/:key     - Access key barcode PNG
  - GET    /api/v1/cnpj/:cnpj       - Company registry lookup
  - GET    /api/v1/ibpt/:table      - IBPT tax table CSV download
  - GET    /api/v1/logs/:category   - Event log entries
  - DELETE /api/v1/logs/:category   - Clear an event log
  - GET    /health                  - Health check

Examples:
  # Start server on the configured address
  nfe-processor serve

  # Custom port and rendering backend
  nfe-processor serve --address :9090 --render-url http://render.internal

  # Start in debug mode
  nfe-processor serve --debug`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverAddr, "address", "", "Server listen address (env: NFE_LISTEN_ADDR)")
	serveCmd.Flags().BoolVar(&serverDebug, "debug", false, "Enable debug mode")
	serveCmd.Flags().DurationVar(&readTimeout, "read-timeout", 30*time.Second, "HTTP read timeout")
	serveCmd.Flags().DurationVar(&writeTimeout, "write-timeout", 5*time.Minute, "HTTP write timeout")
}

func runServe(cmd *cobra.Command, args []string) error {
	if serverAddr == "" {
		serverAddr = cfg.ListenAddr
	}

	log, err := logging.New(serverDebug || cfg.Debug)
	if err != nil {
		return err
	}
	defer log.Sync()

	logs, err := logstore.NewFileStore(cfg.LogDir)
	if err != nil {
		return err
	}

	srv := server.NewServer(&server.Config{
		Address:      serverAddr,
		RenderURL:    renderURL,
		CNPJURL:      cfg.CNPJURL,
		ProductURL:   cfg.ProductURL,
		ProductToken: cfg.ProductToken,
		IBPTURL:      cfg.IBPTURL,
		Workers:      cfg.Workers,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		Debug:        serverDebug,
	},
		server.WithLogStore(logs),
		server.WithLogger(log),
	)

	log.Info("starting HTTP server", zap.String("address", serverAddr))
	return srv.Run()
}
