package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/datasus-ai/txt2sql-engine/pkg/models"
	"github.com/datasus-ai/txt2sql-engine/pkg/schema"
)

// QueryService is the pipeline surface the HTTP layer depends on.
type QueryService interface {
	ProcessNaturalLanguageQuery(ctx context.Context, req models.QueryRequest) models.QueryResult
	ValidateSQLQuery(sqlQuery string) models.ValidationResult
	ExecuteSQLQuery(ctx context.Context, sqlQuery string) models.QueryResult
	History() []models.QueryResult
	Statistics() models.QueryStatistics
}

// SchemaService is the schema surface the HTTP layer depends on.
type SchemaService interface {
	GetTableInfo(ctx context.Context) (*schema.TableInfo, error)
}

// QueryHandler exposes the query pipeline over HTTP.
type QueryHandler struct {
	service QueryService
	schema  SchemaService
	logger  *zap.Logger
}

// NewQueryHandler creates a QueryHandler.
func NewQueryHandler(service QueryService, schemaService SchemaService, logger *zap.Logger) *QueryHandler {
	return &QueryHandler{
		service: service,
		schema:  schemaService,
		logger:  logger,
	}
}

// RegisterRoutes registers the query handler's routes on the given mux.
func (h *QueryHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/query", h.ProcessQuery)
	mux.HandleFunc("POST /api/sql", h.ExecuteSQL)
	mux.HandleFunc("POST /api/validate", h.ValidateSQL)
	mux.HandleFunc("GET /api/schema", h.Schema)
	mux.HandleFunc("GET /api/history", h.History)
	mux.HandleFunc("GET /api/stats", h.Statistics)
}

type queryRequestBody struct {
	Question  string `json:"question"`
	SessionID string `json:"session_id"`
}

type sqlRequestBody struct {
	SQL string `json:"sql"`
}

// ProcessQuery handles POST /api/query: a natural-language question in, a
// QueryResult out. The HTTP status is 200 even for failed results; Success
// and ErrorMessage carry the outcome.
func (h *QueryHandler) ProcessQuery(w http.ResponseWriter, r *http.Request) {
	var body queryRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "request body must be JSON")
		return
	}
	if strings.TrimSpace(body.Question) == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "question is required")
		return
	}

	sessionID := body.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	result := h.service.ProcessNaturalLanguageQuery(r.Context(), models.QueryRequest{
		UserQuery: body.Question,
		SessionID: sessionID,
		Timestamp: time.Now().UTC(),
	})

	if err := WriteJSON(w, http.StatusOK, result); err != nil {
		h.logger.Error("Failed to encode query response", zap.Error(err))
	}
}

// ExecuteSQL handles POST /api/sql: direct execution of a caller-supplied
// SELECT, subject to the same validation as generated SQL.
func (h *QueryHandler) ExecuteSQL(w http.ResponseWriter, r *http.Request) {
	var body sqlRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "request body must be JSON")
		return
	}
	if strings.TrimSpace(body.SQL) == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "sql is required")
		return
	}

	result := h.service.ExecuteSQLQuery(r.Context(), body.SQL)

	if err := WriteJSON(w, http.StatusOK, result); err != nil {
		h.logger.Error("Failed to encode sql response", zap.Error(err))
	}
}

// ValidateSQL handles POST /api/validate: safety-check a statement without
// executing it.
func (h *QueryHandler) ValidateSQL(w http.ResponseWriter, r *http.Request) {
	var body sqlRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "request body must be JSON")
		return
	}

	validation := h.service.ValidateSQLQuery(body.SQL)

	if err := WriteJSON(w, http.StatusOK, validation); err != nil {
		h.logger.Error("Failed to encode validation response", zap.Error(err))
	}
}

type schemaResponse struct {
	Table    string           `json:"table"`
	RowCount int64            `json:"row_count"`
	Columns  []schemaColumn   `json:"columns"`
	Samples  []map[string]any `json:"sample_rows,omitempty"`
}

type schemaColumn struct {
	Name       string `json:"name"`
	DataType   string `json:"data_type"`
	IsNullable bool   `json:"is_nullable"`
	IsPrimary  bool   `json:"is_primary"`
}

// Schema handles GET /api/schema: the introspected table layout.
func (h *QueryHandler) Schema(w http.ResponseWriter, r *http.Request) {
	info, err := h.schema.GetTableInfo(r.Context())
	if err != nil {
		h.logger.Error("Failed to introspect schema", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "schema_error", err.Error())
		return
	}

	response := schemaResponse{
		Table:    info.Name,
		RowCount: info.RowCount,
		Samples:  info.SampleRows,
	}
	for _, col := range info.Columns {
		response.Columns = append(response.Columns, schemaColumn{
			Name:       col.Name,
			DataType:   col.DataType,
			IsNullable: col.IsNullable,
			IsPrimary:  col.IsPrimary,
		})
	}

	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to encode schema response", zap.Error(err))
	}
}

// History handles GET /api/history: every recorded result, oldest first.
func (h *QueryHandler) History(w http.ResponseWriter, r *http.Request) {
	if err := WriteJSON(w, http.StatusOK, h.service.History()); err != nil {
		h.logger.Error("Failed to encode history response", zap.Error(err))
	}
}

// Statistics handles GET /api/stats: aggregates over the history.
func (h *QueryHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	if err := WriteJSON(w, http.StatusOK, h.service.Statistics()); err != nil {
		h.logger.Error("Failed to encode stats response", zap.Error(err))
	}
}
