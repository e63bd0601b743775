package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/iwvelando/bizplan-forecast/internal/config"
	"github.com/iwvelando/bizplan-forecast/internal/forecast"
	"github.com/iwvelando/bizplan-forecast/internal/optimizer"
	"github.com/iwvelando/bizplan-forecast/pkg/constants"
	"github.com/iwvelando/bizplan-forecast/pkg/optimization"
	"github.com/iwvelando/bizplan-forecast/pkg/output"
	"github.com/iwvelando/bizplan-forecast/pkg/validation"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// ProjectionStore persists the projections computed by the API.
type ProjectionStore interface {
	SaveProjections(ctx context.Context, projectID uuid.UUID, projections []forecast.Projection) error
}

// Option customizes the handler.
type Option func(*handler)

// WithStore persists every successful projection.
func WithStore(store ProjectionStore) Option {
	return func(h *handler) {
		h.store = store
	}
}

// WithWorkers bounds the months computed concurrently per scenario.
func WithWorkers(workers int) Option {
	return func(h *handler) {
		h.workers = workers
	}
}

type handler struct {
	logger        *zap.Logger
	maxUploadSize int64
	version       string
	workers       int
	store         ProjectionStore
}

func init() {
	gin.SetMode(gin.ReleaseMode)
}

// NewHandler constructs the HTTP handler that serves the projection API.
func NewHandler(logger *zap.Logger, maxUploadSize int64, version string, opts ...Option) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	if maxUploadSize <= 0 {
		maxUploadSize = constants.DefaultMaxUploadSizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{logger: logger, maxUploadSize: maxUploadSize, version: trimmedVersion, workers: 1}
	for _, opt := range opts {
		opt(h)
	}

	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery(), h.requestLogger())

	api := router.Group("/api")
	{
		// Projection from an uploaded YAML plan
		api.POST("/projection", h.handleProjection)

		// Projection rendered as a downloadable file
		api.POST("/projection/export", h.handleProjectionExport)

		// Projection for editor-driven updates
		api.POST("/editor/projection", h.handleProjectionEditor)

		// Config serialization endpoint for editor downloads
		api.POST("/editor/export", h.handleConfigExport)

		api.GET("/version", h.handleVersion)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	return router
}

func (h *handler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		h.logger.Debug("request served",
			zap.String("op", "server.request"),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}

type projectionResponse struct {
	ProjectID  string                 `json:"projectId"`
	Scenarios  []string               `json:"scenarios"`
	Outputs    []scenarioOutputs      `json:"outputs"`
	CSV        string                 `json:"csv"`
	Warnings   []string               `json:"warnings,omitempty"`
	Funding    []optimization.Summary `json:"funding,omitempty"`
	Duration   string                 `json:"duration"`
	Persisted  bool                   `json:"persisted"`
	Config     map[string]interface{} `json:"config,omitempty"`
	ConfigYAML string                 `json:"configYaml,omitempty"`
}

type scenarioOutputs struct {
	Scenario   string                     `json:"scenario"`
	ScenarioID string                     `json:"scenarioId"`
	Months     []forecast.FinancialOutput `json:"months"`
	Annual     []annualTotals             `json:"annual"`
	Notes      map[string][]string        `json:"notes,omitempty"`
}

type annualTotals struct {
	Year        int    `json:"year"`
	Months      int    `json:"months"`
	Revenue     string `json:"revenue"`
	EBITDA      string `json:"ebitda"`
	NetIncome   string `json:"netIncome"`
	NetCashFlow string `json:"netCashFlow"`
	ClosingCash string `json:"closingCash"`
	ClosingDebt string `json:"closingDebt"`
}

// projectionRun is a computed plan ready to be rendered.
type projectionRun struct {
	projectID   uuid.UUID
	projections []forecast.Projection
	warnings    []string
	funding     []optimization.Summary
}

// readUpload returns the bytes of the multipart "file" field, writing the error
// response itself when the upload is unusable.
func (h *handler) readUpload(c *gin.Context, op string) ([]byte, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadSize)
	if err := c.Request.ParseMultipartForm(h.maxUploadSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondError(c, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds limit of %d bytes", h.maxUploadSize), op)
			return nil, false
		}
		h.respondError(c, http.StatusBadRequest, fmt.Sprintf("failed to parse upload: %v", err), op)
		return nil, false
	}

	file, _, err := c.Request.FormFile("file")
	if err != nil {
		h.respondError(c, http.StatusBadRequest, "missing configuration file", op)
		return nil, false
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			h.logger.Warn("failed to close uploaded file",
				zap.String("op", op),
				zap.Error(closeErr),
			)
		}
	}()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		h.respondError(c, http.StatusInternalServerError, fmt.Sprintf("failed to read configuration: %v", err), op)
		return nil, false
	}
	return buf.Bytes(), true
}

func (h *handler) handleProjection(c *gin.Context) {
	const op = "server.handleProjection"
	start := time.Now()

	configBytes, ok := h.readUpload(c, op)
	if !ok {
		return
	}

	configMap, err := decodeYAMLToMap(configBytes)
	if err != nil {
		h.respondError(c, http.StatusBadRequest, fmt.Sprintf("error reading config data, %v", err), op)
		return
	}

	h.respondProjection(c, configBytes, configMap, start, op)
}

func (h *handler) handleProjectionEditor(c *gin.Context) {
	const op = "server.handleProjectionEditor"
	start := time.Now()

	var payload map[string]interface{}
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.respondError(c, http.StatusBadRequest, fmt.Sprintf("failed to decode configuration: %v", err), op)
		return
	}
	if payload == nil {
		payload = make(map[string]interface{})
	}

	configPayload := payload
	if rawConfig, ok := payload["config"]; ok {
		cfgMap, ok := rawConfig.(map[string]interface{})
		if !ok {
			h.respondError(c, http.StatusBadRequest, "invalid config payload: expected object", op)
			return
		}
		configPayload = cfgMap
	}

	configBytes, err := yaml.Marshal(configPayload)
	if err != nil {
		h.respondError(c, http.StatusBadRequest, fmt.Sprintf("failed to encode configuration: %v", err), op)
		return
	}

	configMap, err := decodeYAMLToMap(configBytes)
	if err != nil {
		h.respondError(c, http.StatusBadRequest, fmt.Sprintf("failed to parse configuration: %v", err), op)
		return
	}

	h.respondProjection(c, configBytes, configMap, start, op)
}

func (h *handler) handleProjectionExport(c *gin.Context) {
	const op = "server.handleProjectionExport"

	format := strings.ToLower(c.DefaultQuery("format", constants.OutputFormatCSV))
	if err := validation.ValidateOutputFormat(format); err != nil {
		h.respondError(c, http.StatusBadRequest, err.Error(), op)
		return
	}

	configBytes, ok := h.readUpload(c, op)
	if !ok {
		return
	}

	run, status, err := h.project(configBytes)
	if err != nil {
		h.respondError(c, status, err.Error(), op)
		return
	}

	var buf bytes.Buffer
	if err := output.Write(&buf, format, run.projections); err != nil {
		h.respondError(c, http.StatusInternalServerError, fmt.Sprintf("failed to render %s: %v", format, err), op)
		return
	}

	filename := "projection" + output.FileExtension(format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, output.ContentType(format), buf.Bytes())
}

func (h *handler) handleVersion(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"version": h.version,
	})
}

func (h *handler) handleConfigExport(c *gin.Context) {
	const op = "server.handleConfigExport"

	var payload map[string]interface{}
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.respondError(c, http.StatusBadRequest, fmt.Sprintf("failed to decode configuration: %v", err), op)
		return
	}
	if payload == nil {
		payload = make(map[string]interface{})
	}

	yamlBytes, err := marshalOrderedConfigYAML(payload)
	if err != nil {
		h.respondError(c, http.StatusBadRequest, fmt.Sprintf("failed to encode configuration: %v", err), op)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"configYaml": string(yamlBytes),
	})
}

// leadingConfigKeys are emitted first, in this order; the rest follow sorted.
var leadingConfigKeys = []string{"logging", "output", "database", "project"}

func marshalOrderedConfigYAML(payload map[string]interface{}) ([]byte, error) {
	items := make([]orderedItem, 0, len(payload))
	seen := make(map[string]struct{})

	for _, key := range leadingConfigKeys {
		if value, ok := payload[key]; ok {
			items = append(items, orderedItem{key: key, value: value})
			seen[key] = struct{}{}
		}
	}

	remainingKeys := make([]string, 0, len(payload))
	for key := range payload {
		if _, already := seen[key]; already {
			continue
		}
		remainingKeys = append(remainingKeys, key)
	}
	sort.Strings(remainingKeys)
	for _, key := range remainingKeys {
		items = append(items, orderedItem{key: key, value: payload[key]})
	}

	ordered := orderedConfig{items: items}
	return yaml.Marshal(ordered)
}

type orderedConfig struct {
	items []orderedItem
}

type orderedItem struct {
	key   string
	value interface{}
}

func (o orderedConfig) MarshalYAML() (interface{}, error) {
	mapNode := &yaml.Node{
		Kind: yaml.MappingNode,
		Tag:  "!!map",
	}

	for _, item := range o.items {
		keyNode := &yaml.Node{
			Kind:  yaml.ScalarNode,
			Tag:   "!!str",
			Value: item.key,
		}
		valueNode := &yaml.Node{}
		if err := valueNode.Encode(item.value); err != nil {
			return nil, err
		}
		mapNode.Content = append(mapNode.Content, keyNode, valueNode)
	}

	return mapNode, nil
}

// project loads, validates and computes a plan. The returned status is the
// HTTP status to report alongside a non-nil error.
func (h *handler) project(configBytes []byte) (projectionRun, int, error) {
	cfg, err := config.LoadConfigurationFromReader(bytes.NewReader(configBytes))
	if err != nil {
		return projectionRun{}, http.StatusBadRequest, err
	}

	warnings := cfg.ValidateConfiguration()

	project, err := forecast.ProjectFromConfig(*cfg)
	if err != nil {
		return projectionRun{}, http.StatusBadRequest, err
	}

	results, err := forecast.GetForecast(h.logger, *cfg, forecast.Options{Workers: h.workers})
	if err != nil {
		return projectionRun{}, http.StatusBadRequest, fmt.Errorf("failed to compute projection: %w", err)
	}

	run := projectionRun{projectID: project.ID, projections: results, warnings: warnings}
	if cfg.Funding != nil {
		runner, err := optimizer.NewRunner(h.logger, cfg, forecast.Options{Workers: h.workers})
		if err != nil {
			return projectionRun{}, http.StatusBadRequest, err
		}
		funding, err := runner.Run()
		if err != nil {
			return projectionRun{}, http.StatusBadRequest, fmt.Errorf("failed to compute funding requirement: %w", err)
		}
		run.funding = funding.Ordered(results)
	}

	return run, http.StatusOK, nil
}

func (h *handler) respondProjection(c *gin.Context, configBytes []byte, configMap map[string]interface{}, start time.Time, op string) {
	run, status, err := h.project(configBytes)
	if err != nil {
		h.respondError(c, status, err.Error(), op)
		return
	}

	persisted := false
	if h.store != nil {
		if err := h.store.SaveProjections(c.Request.Context(), run.projectID, run.projections); err != nil {
			h.respondError(c, http.StatusInternalServerError, fmt.Sprintf("failed to persist projection: %v", err), op)
			return
		}
		persisted = true
	}

	elapsed := time.Since(start)

	if configMap == nil {
		configMap = make(map[string]interface{})
	}

	response := projectionResponse{
		ProjectID:  run.projectID.String(),
		Scenarios:  extractScenarioNames(run.projections),
		Outputs:    buildOutputs(run.projections),
		CSV:        output.CsvString(run.projections),
		Warnings:   run.warnings,
		Funding:    run.funding,
		Duration:   elapsed.String(),
		Persisted:  persisted,
		Config:     configMap,
		ConfigYAML: string(configBytes),
	}

	h.logger.Info("projection computed",
		zap.String("op", op),
		zap.Int("scenarios", len(response.Scenarios)),
		zap.Bool("persisted", persisted),
		zap.Duration("duration", elapsed),
	)

	c.JSON(http.StatusOK, response)
}

func decodeYAMLToMap(data []byte) (map[string]interface{}, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return make(map[string]interface{}), nil
	}

	var result map[string]interface{}
	if err := yaml.Unmarshal(trimmed, &result); err != nil {
		return nil, err
	}
	if result == nil {
		result = make(map[string]interface{})
	}
	return result, nil
}

func (h *handler) respondError(c *gin.Context, status int, msg string, op string) {
	h.logger.Error("projection request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func extractScenarioNames(results []forecast.Projection) []string {
	names := make([]string, 0, len(results))
	for _, scenario := range results {
		names = append(names, scenario.Name)
	}
	return names
}

func buildOutputs(results []forecast.Projection) []scenarioOutputs {
	outputs := make([]scenarioOutputs, 0, len(results))
	for _, scenario := range results {
		var annual []annualTotals
		for _, year := range output.AnnualSummary(scenario.Outputs) {
			annual = append(annual, annualTotals{
				Year:        year.Year,
				Months:      year.Months,
				Revenue:     year.Revenue.StringFixed(constants.CurrencyPlaces),
				EBITDA:      year.EBITDA.StringFixed(constants.CurrencyPlaces),
				NetIncome:   year.NetIncome.StringFixed(constants.CurrencyPlaces),
				NetCashFlow: year.NetCashFlow.StringFixed(constants.CurrencyPlaces),
				ClosingCash: year.ClosingCash.StringFixed(constants.CurrencyPlaces),
				ClosingDebt: year.ClosingDebt.StringFixed(constants.CurrencyPlaces),
			})
		}
		outputs = append(outputs, scenarioOutputs{
			Scenario:   scenario.Name,
			ScenarioID: scenario.ScenarioID.String(),
			Months:     scenario.Outputs,
			Annual:     annual,
			Notes:      normalizeNotes(scenario.Notes),
		})
	}
	return outputs
}

func normalizeNotes(notes map[string][]string) map[string][]string {
	if len(notes) == 0 {
		return nil
	}

	filtered := make(map[string][]string, len(notes))
	for date, entries := range notes {
		for _, note := range entries {
			if trimmed := strings.TrimSpace(note); trimmed != "" {
				filtered[date] = append(filtered[date], trimmed)
			}
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	return filtered
}
