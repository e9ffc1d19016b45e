// Package server exposes the processing toolkit over HTTP.
package server

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rezonia/nfe-processor/internal/convert"
	"github.com/rezonia/nfe-processor/internal/logstore"
	"github.com/rezonia/nfe-processor/internal/model"
	"github.com/rezonia/nfe-processor/internal/parser/nfe"
	"github.com/rezonia/nfe-processor/internal/registry"
	"github.com/rezonia/nfe-processor/internal/render"
	"github.com/rezonia/nfe-processor/internal/report"
)

// Config holds server configuration.
type Config struct {
	Address      string
	RenderURL    string
	CNPJURL      string
	ProductURL   string
	ProductToken string
	IBPTURL      string
	Workers      int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Debug        bool
}

// Server is the HTTP API server.
type Server struct {
	config        *Config
	router        *gin.Engine
	pipeline      *convert.Pipeline
	renderer      render.Renderer
	cnpjClient    *registry.CNPJClient
	productClient *registry.ProductClient
	ibptClient    *registry.IBPTClient
	logs          logstore.Store
	log           *zap.Logger
}

// Option overrides a collaborator, mainly for tests.
type Option func(*Server)

// WithRenderer replaces the rendering backend.
func WithRenderer(r render.Renderer) Option {
	return func(s *Server) { s.renderer = r }
}

// WithLogStore replaces the event log store.
func WithLogStore(store logstore.Store) Option {
	return func(s *Server) { s.logs = store }
}

// WithCNPJClient replaces the company registry client.
func WithCNPJClient(c *registry.CNPJClient) Option {
	return func(s *Server) { s.cnpjClient = c }
}

// WithProductClient replaces the product catalog client.
func WithProductClient(c *registry.ProductClient) Option {
	return func(s *Server) { s.productClient = c }
}

// WithIBPTClient replaces the tax table download client.
func WithIBPTClient(c *registry.IBPTClient) Option {
	return func(s *Server) { s.ibptClient = c }
}

// WithLogger attaches a logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Server) {
		if log != nil {
			s.log = log
		}
	}
}

// NewServer creates the API server with its default collaborators.
func NewServer(config *Config, opts ...Option) *Server {
	if !config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if config.Debug {
		router.Use(gin.Logger())
	}

	s := &Server{
		config:   config,
		router:   router,
		renderer: render.NewClient(config.RenderURL),
		logs:     logstore.NewMemory(),
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.cnpjClient == nil {
		s.cnpjClient = registry.NewCNPJClient(config.CNPJURL,
			registry.WithCNPJLogStore(s.logs),
			registry.WithCNPJLogger(s.log),
		)
	}
	if s.productClient == nil {
		s.productClient = registry.NewProductClient(config.ProductURL, config.ProductToken,
			registry.WithProductLogStore(s.logs),
			registry.WithProductLogger(s.log),
		)
	}

	if s.ibptClient == nil {
		s.ibptClient = registry.NewIBPTClient(config.IBPTURL,
			registry.WithIBPTLogStore(s.logs),
			registry.WithIBPTLogger(s.log),
		)
	}

	var pipelineOpts []convert.Option
	if config.Workers > 0 {
		pipelineOpts = append(pipelineOpts, convert.WithWorkers(config.Workers))
	}
	pipelineOpts = append(pipelineOpts, convert.WithLogger(s.log))
	s.pipeline = convert.NewPipeline(s.renderer, pipelineOpts...)

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/normalize", s.handleNormalize)

		v1.POST("/convert", s.handleConvert)
		v1.POST("/convert/archive", s.handleConvertArchive)

		v1.POST("/report", s.handleReport)
		v1.POST("/report/export", s.handleReportExport)

		v1.GET("/barcode/:key", s.handleBarcode)
		v1.GET("/cnpj/:cnpj", s.handleCNPJ)
		v1.GET("/product/ncm/:code", s.handleProductNCM)
		v1.GET("/product/ean/:ean", s.handleProductEAN)
		v1.GET("/ibpt/:table", s.handleIBPTDownload)

		v1.GET("/logs/:category", s.handleLogsList)
		v1.DELETE("/logs/:category", s.handleLogsClear)
	}
}

// Run starts the HTTP server.
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:         s.config.Address,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}
	return srv.ListenAndServe()
}

// Handler returns the http.Handler for use with custom servers.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleNormalize(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "failed to read request body"})
		return
	}
	if len(body) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "empty request body"})
		return
	}

	doc, err := nfe.Parse(body)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, NormalizeResponse{Document: doc})
}

// readBatch collects the multipart "files" parts as pipeline items.
func readBatch(c *gin.Context) ([]convert.Item, bool) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "expected multipart form"})
		return nil, false
	}

	files := form.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "no files uploaded"})
		return nil, false
	}

	items := make([]convert.Item, 0, len(files))
	for _, fh := range files {
		data, err := readPart(fh)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   fmt.Sprintf("failed to read %s", fh.Filename),
				Details: err.Error(),
			})
			return nil, false
		}
		items = append(items, convert.Item{Name: fh.Filename, Data: data})
	}
	return items, true
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func (s *Server) runBatch(c *gin.Context, items []convert.Item) (*convert.Result, bool) {
	result, err := s.pipeline.Convert(c.Request.Context(), items)
	if err != nil {
		status := http.StatusInternalServerError
		if convert.IsCapacityError(err) {
			status = http.StatusRequestEntityTooLarge
		}
		c.JSON(status, ErrorResponse{Error: err.Error()})
		return nil, false
	}
	return result, true
}

func (s *Server) handleConvert(c *gin.Context) {
	items, ok := readBatch(c)
	if !ok {
		return
	}
	result, ok := s.runBatch(c, items)
	if !ok {
		return
	}

	resp := ConvertResponse{Failures: result.Failures}
	for _, a := range result.Artifacts {
		resp.Artifacts = append(resp.Artifacts, ConvertedFile{Name: a.Name, PDF: a.PDF})
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleConvertArchive(c *gin.Context) {
	items, ok := readBatch(c)
	if !ok {
		return
	}
	result, ok := s.runBatch(c, items)
	if !ok {
		return
	}

	archive, err := convert.Package(result.Artifacts)
	if errors.Is(err, convert.ErrEmptyArchive) {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "no file could be converted",
			Details: failureSummary(result.Failures),
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="documentos.zip"`)
	c.Data(http.StatusOK, "application/zip", archive)
}

func failureSummary(failures []convert.Failure) string {
	if len(failures) == 0 {
		return ""
	}
	return fmt.Sprintf("%s: %s", failures[0].Name, failures[0].Reason)
}

// buildTable normalizes the uploaded files and applies the query
// parameters shared by the report endpoints.
func (s *Server) buildTable(c *gin.Context) (*report.Table, []convert.Failure, bool) {
	items, ok := readBatch(c)
	if !ok {
		return nil, nil, false
	}
	if len(items) > convert.MaxBatchSize {
		c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: convert.ErrBatchTooLarge.Error()})
		return nil, nil, false
	}

	var docs []*model.Document
	var failures []convert.Failure
	for _, item := range items {
		doc, err := nfe.ParseNamed(item.Name, item.Data)
		if err != nil {
			failures = append(failures, convert.Failure{Name: item.Name, Reason: err.Error()})
			continue
		}
		docs = append(docs, doc)
	}

	tbl := report.NewTable()
	tbl.SetDocuments(docs)

	if name := c.Query("model"); name != "" {
		if !tbl.SetProjection(name) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("unknown report model %q", name)})
			return nil, nil, false
		}
	}
	tbl.SetQuery(c.Query("search"))

	if raw := c.Query("per_page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "per_page must be a positive integer"})
			return nil, nil, false
		}
		tbl.SetPerPage(n)
	}
	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "page must be a positive integer"})
			return nil, nil, false
		}
		tbl.SetPage(n)
	}

	return tbl, failures, true
}

func (s *Server) handleReport(c *gin.Context) {
	tbl, failures, ok := s.buildTable(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, ReportResponse{
		Projection: tbl.Projection().Name,
		Columns:    tbl.Projection().Columns,
		Rows:       tbl.Rows(),
		Total:      tbl.TotalRows(),
		Page:       tbl.Page(),
		PerPage:    tbl.PerPage(),
		Failures:   failures,
	})
}

func (s *Server) handleReportExport(c *gin.Context) {
	tbl, _, ok := s.buildTable(c)
	if !ok {
		return
	}

	// export covers the filtered set, never just the current page
	rows := tbl.Filtered()

	switch c.DefaultQuery("format", "xlsx") {
	case "xlsx":
		c.Header("Content-Disposition", `attachment; filename="relatorio.xlsx"`)
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Status(http.StatusOK)
		if err := report.WriteXLSX(c.Writer, tbl.Projection(), rows); err != nil {
			s.log.Error("xlsx export failed", zap.Error(err))
		}
	case "csv":
		c.Header("Content-Disposition", `attachment; filename="relatorio.csv"`)
		c.Header("Content-Type", "text/csv; charset=utf-8")
		c.Status(http.StatusOK)
		if err := report.WriteCSV(c.Writer, tbl.Projection(), rows); err != nil {
			s.log.Error("csv export failed", zap.Error(err))
		}
	default:
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "format must be xlsx or csv"})
	}
}

func (s *Server) handleBarcode(c *gin.Context) {
	png, err := render.Barcode(c.Param("key"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func (s *Server) handleCNPJ(c *gin.Context) {
	company, err := s.cnpjClient.Lookup(c.Request.Context(), c.Param("cnpj"))
	if err != nil {
		s.lookupFailure(c, err)
		return
	}
	c.JSON(http.StatusOK, company)
}

func (s *Server) handleProductNCM(c *gin.Context) {
	products, err := s.productClient.LookupNCM(c.Request.Context(), c.Param("code"))
	if err != nil {
		s.lookupFailure(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (s *Server) handleProductEAN(c *gin.Context) {
	product, err := s.productClient.LookupEAN(c.Request.Context(), c.Param("ean"))
	if err != nil {
		s.lookupFailure(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (s *Server) handleIBPTDownload(c *gin.Context) {
	table := c.Param("table")
	data, err := s.ibptClient.Download(c.Request.Context(), table)
	if err != nil {
		s.lookupFailure(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", table+".csv"))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

// lookupFailure translates registry errors to HTTP: bad identifiers are
// the caller's fault, provider statuses pass through, network failures
// surface as a bad gateway.
func (s *Server) lookupFailure(c *gin.Context, err error) {
	var valErr *model.ValidationError
	if errors.As(err, &valErr) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	var lookupErr *model.LookupError
	if errors.As(err, &lookupErr) && lookupErr.Status != 0 {
		c.JSON(lookupErr.Status, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusBadGateway, ErrorResponse{Error: err.Error()})
}

func (s *Server) logCategory(c *gin.Context) (logstore.Category, bool) {
	category := logstore.Category(c.Param("category"))
	if !category.Valid() {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: fmt.Sprintf("unknown log category %q", category)})
		return "", false
	}
	return category, true
}

func (s *Server) handleLogsList(c *gin.Context) {
	category, ok := s.logCategory(c)
	if !ok {
		return
	}

	entries, err := s.logs.List(category)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	if entries == nil {
		entries = []logstore.Entry{}
	}
	c.JSON(http.StatusOK, entries)
}

func (s *Server) handleLogsClear(c *gin.Context) {
	category, ok := s.logCategory(c)
	if !ok {
		return
	}

	if err := s.logs.Clear(category); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}
