// Package server exposes the stake solver and the book runner over HTTP.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/stake-distributor/internal/config"
	"github.com/iwvelando/stake-distributor/internal/distribution"
	"github.com/iwvelando/stake-distributor/internal/metrics"
	"github.com/iwvelando/stake-distributor/pkg/constants"
	"github.com/iwvelando/stake-distributor/pkg/output"
	"github.com/iwvelando/stake-distributor/pkg/stake"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type handler struct {
	logger        *zap.Logger
	maxUploadSize int64
	maxPasses     int
	version       string
}

// Options tunes the handler. Zero values select the defaults.
type Options struct {
	MaxUploadSize int64
	MaxPasses     int
	Version       string
}

// NewHandler constructs the HTTP handler that serves the stake API.
func NewHandler(logger *zap.Logger, opts Options) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	maxUploadSize := opts.MaxUploadSize
	if maxUploadSize <= 0 {
		maxUploadSize = constants.DefaultMaxUploadSizeBytes
	}

	maxPasses := opts.MaxPasses
	if maxPasses <= 0 {
		maxPasses = constants.DefaultMaxPasses
	}

	trimmedVersion := strings.TrimSpace(opts.Version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{logger: logger, maxUploadSize: maxUploadSize, maxPasses: maxPasses, version: trimmedVersion}

	mux := http.NewServeMux()

	// Single distribution from a JSON payload
	mux.HandleFunc("/api/stakes", h.handleStakes)

	// Book runner over an uploaded YAML configuration
	mux.HandleFunc("/api/distribute", h.handleDistribute)

	// Book runner over a JSON configuration object
	mux.HandleFunc("/api/editor/distribute", h.handleDistributeEditor)

	// Config serialization endpoint for editor downloads
	mux.HandleFunc("/api/editor/export", h.handleConfigExport)

	mux.HandleFunc("/api/version", h.handleVersion)
	mux.HandleFunc("/health", h.handleHealth)
	mux.Handle("/metrics", metrics.Handler())

	return requestID(metrics.Middleware(mux))
}

type requestIDKey struct{}

// requestID tags every request with an id, reusing the caller's when it is a valid UUID.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(constants.RequestIDHeader))
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(constants.RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

// RequestIDFromContext returns the id assigned by the request-id middleware.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

type stakesRequest struct {
	TargetProfit decimal.Decimal   `json:"targetProfit"`
	Quotes       []decimal.Decimal `json:"quotes"`
	Rounding     string            `json:"rounding,omitempty"`
	MaxPasses    int               `json:"maxPasses,omitempty"`
}

type distributeResponse struct {
	Books         []string                    `json:"books"`
	Distributions []distribution.Distribution `json:"distributions"`
	CSV           string                      `json:"csv"`
	Warnings      []string                    `json:"warnings,omitempty"`
	Duration      string                      `json:"duration"`
	Config        map[string]interface{}      `json:"config,omitempty"`
	ConfigYAML    string                      `json:"configYaml,omitempty"`
}

func (h *handler) handleStakes(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleStakes"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	var req stakesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, r, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return
	}

	mode, err := stake.ParseRoundingMode(req.Rounding)
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error(), op)
		return
	}

	maxPasses := req.MaxPasses
	if maxPasses <= 0 || maxPasses > h.maxPasses {
		maxPasses = h.maxPasses
	}

	result, err := distribution.Solve(h.logger, "", req.TargetProfit, req.Quotes, mode, maxPasses)
	if err != nil {
		h.respondError(w, r, statusForSolveError(err), err.Error(), op)
		return
	}

	h.logger.Debug("stakes computed",
		zap.String("op", op),
		zap.String("requestId", RequestIDFromContext(r.Context())),
		zap.Int("outcomes", len(result.Stakes)),
		zap.Int("passes", result.Passes),
	)
	h.writeJSON(w, http.StatusOK, result)
}

func (h *handler) handleDistribute(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleDistribute"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondError(w, r, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds limit of %d bytes", h.maxUploadSize), op)
			return
		}
		h.respondError(w, r, http.StatusBadRequest, fmt.Sprintf("failed to parse upload: %v", err), op)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, "missing configuration file", op)
		return
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
		h.respondError(w, r, http.StatusInternalServerError, fmt.Sprintf("failed to read configuration: %v", err), op)
		return
	}

	configBytes := buf.Bytes()
	configMap, err := decodeYAMLToMap(configBytes)
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, fmt.Sprintf("error reading config data, %v", err), op)
		return
	}

	h.runDistribution(w, r, configBytes, configMap, start, op)
}

func (h *handler) handleDistributeEditor(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleDistributeEditor"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	var payload map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.respondError(w, r, http.StatusBadRequest, fmt.Sprintf("failed to decode configuration: %v", err), op)
		return
	}
	if payload == nil {
		payload = make(map[string]interface{})
	}

	configPayload := payload
	if rawConfig, ok := payload["config"]; ok {
		cfgMap, ok := rawConfig.(map[string]interface{})
		if !ok {
			h.respondError(w, r, http.StatusBadRequest, "invalid config payload: expected object", op)
			return
		}
		configPayload = cfgMap
	}

	configBytes, err := yaml.Marshal(configPayload)
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, fmt.Sprintf("failed to encode configuration: %v", err), op)
		return
	}

	h.runDistribution(w, r, configBytes, configPayload, start, op)
}

func (h *handler) handleConfigExport(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleConfigExport"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	var payload map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.respondError(w, r, http.StatusBadRequest, fmt.Sprintf("failed to decode configuration: %v", err), op)
		return
	}
	if payload == nil {
		payload = make(map[string]interface{})
	}

	yamlBytes, err := marshalOrderedConfigYAML(payload)
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, fmt.Sprintf("failed to encode configuration: %v", err), op)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"configYaml": string(yamlBytes),
	})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

func (h *handler) runDistribution(w http.ResponseWriter, r *http.Request, configBytes []byte, configMap map[string]interface{}, start time.Time, op string) {
	cfg, err := config.LoadConfigurationFromReader(bytes.NewReader(configBytes))
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error(), op)
		return
	}

	// Requests may lower the pass cap but never raise it past the server's.
	if cfg.Solver.MaxPasses > h.maxPasses {
		cfg.Solver.MaxPasses = h.maxPasses
	}

	warnings := cfg.ValidateConfiguration()
	results, err := distribution.GetDistributions(h.logger, *cfg)
	if err != nil {
		h.respondError(w, r, statusForSolveError(err), err.Error(), op)
		return
	}

	elapsed := time.Since(start)
	if configMap == nil {
		configMap = make(map[string]interface{})
	}

	response := distributeResponse{
		Books:         bookNames(results),
		Distributions: results,
		CSV:           output.CsvString(results),
		Warnings:      warnings,
		Duration:      elapsed.String(),
		Config:        configMap,
		ConfigYAML:    string(configBytes),
	}
	if response.Distributions == nil {
		response.Distributions = []distribution.Distribution{}
	}

	h.logger.Info("distribution computed",
		zap.String("op", op),
		zap.String("requestId", RequestIDFromContext(r.Context())),
		zap.Int("books", len(response.Books)),
		zap.Int("warnings", len(warnings)),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, response)
}

// statusForSolveError maps solver failures onto HTTP statuses.
func statusForSolveError(err error) int {
	switch {
	case errors.Is(err, stake.ErrInvalidQuote):
		return http.StatusBadRequest
	case errors.Is(err, stake.ErrNonConvergence):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}

func marshalOrderedConfigYAML(payload map[string]interface{}) ([]byte, error) {
	items := make([]orderedItem, 0, len(payload))
	seen := make(map[string]struct{})

	for _, key := range []string{"logging", "output", "solver", "books"} {
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

func (h *handler) respondError(w http.ResponseWriter, r *http.Request, status int, msg string, op string) {
	h.logger.Error("stake request failed",
		zap.String("op", op),
		zap.String("requestId", RequestIDFromContext(r.Context())),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}

func bookNames(results []distribution.Distribution) []string {
	names := make([]string, 0, len(results))
	for _, book := range results {
		names = append(names, book.Name)
	}
	return names
}
