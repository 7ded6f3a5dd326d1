// Package schema builds the database context embedded into agent prompts:
// table and column layout, live sample data, and the SUS-specific notes the
// model needs to interpret the columns correctly.
package schema

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/datasus-ai/txt2sql-engine/pkg/adapters/datasource"
)

// DefaultTable is the SUS hospitalization table the demo dataset ships with.
const DefaultTable = "sus_data"

const sampleRowLimit = 3

// columnDescriptions documents the SUS columns in the prompt. Columns not
// listed here still appear, just without a description.
var columnDescriptions = map[string]string{
	"DIAG_PRINC":                 "Código do diagnóstico principal (CID-10)",
	"MUNIC_RES":                  "Código numérico do município de residência (IBGE)",
	"MUNIC_MOV":                  "Código numérico do município de internação",
	"PROC_REA":                   "Código do procedimento realizado (SUS)",
	"IDADE":                      "Idade do paciente em anos",
	"SEXO":                       "Sexo do paciente (1=Masculino, 3=Feminino)",
	"CID_MORTE":                  "Código da causa da morte (CID-10)",
	"MORTE":                      "Indicador de óbito (0=Não, 1=Sim)",
	"CNES":                       "Código Nacional de Estabelecimento de Saúde",
	"VAL_TOT":                    "Valor total do procedimento em Reais",
	"UTI_MES_TO":                 "Total de dias em UTI",
	"DT_INTER":                   "Data de internação (formato AAAAMMDD)",
	"DT_SAIDA":                   "Data de saída (formato AAAAMMDD)",
	"UF_RESIDENCIA_PACIENTE":     "Estado de residência do paciente",
	"CIDADE_RESIDENCIA_PACIENTE": "Cidade de residência do paciente",
	"LATI_CIDADE_RES":            "Latitude da cidade de residência",
	"LONG_CIDADE_RES":            "Longitude da cidade de residência",
}

var importantNotes = []string{
	"IMPORTANTE: Para consultas baseadas em cidade, use a coluna CIDADE_RESIDENCIA_PACIENTE",
	"A coluna MUNIC_RES contém códigos numéricos de município, NÃO nomes de cidades",
	"Use MORTE = 1 para consultas sobre óbitos/mortes",
	"Códigos de sexo: 1=Masculino, 3=Feminino (padrão SUS)",
	"Códigos CID-10 estão na coluna DIAG_PRINC",
	"Datas estão no formato AAAAMMDD (DT_INTER, DT_SAIDA)",
}

var queryExamples = []string{
	"-- Mortes em Porto Alegre",
	"SELECT COUNT(*) FROM sus_data WHERE CIDADE_RESIDENCIA_PACIENTE = 'Porto Alegre' AND MORTE = 1",
	"",
	"-- Pacientes por faixa etária",
	"SELECT CASE WHEN IDADE < 18 THEN 'Menor' WHEN IDADE < 65 THEN 'Adulto' ELSE 'Idoso' END as faixa_etaria, COUNT(*) FROM sus_data GROUP BY faixa_etaria",
	"",
	"-- Diagnósticos mais comuns",
	"SELECT DIAG_PRINC, COUNT(*) as total FROM sus_data GROUP BY DIAG_PRINC ORDER BY total DESC LIMIT 10",
	"",
	"-- Custo total por estado",
	"SELECT UF_RESIDENCIA_PACIENTE, SUM(VAL_TOT) as custo_total FROM sus_data GROUP BY UF_RESIDENCIA_PACIENTE",
}

// TableInfo holds the introspected layout of one table.
type TableInfo struct {
	Name       string
	Columns    []datasource.Column
	SampleRows []map[string]any
	RowCount   int64
}

// Service introspects the target database and renders the formatted context
// string. The context is cached after the first build; call InvalidateCache
// after the underlying data changes.
type Service struct {
	ds     datasource.Datasource
	table  string
	logger *zap.Logger

	mu     sync.Mutex
	cached string
}

// NewService creates a schema context service for the given table. An empty
// table name selects DefaultTable.
func NewService(ds datasource.Datasource, table string, logger *zap.Logger) *Service {
	if table == "" {
		table = DefaultTable
	}
	return &Service{
		ds:     ds,
		table:  table,
		logger: logger.Named("schema"),
	}
}

// GetTableInfo returns the live layout of the configured table.
func (s *Service) GetTableInfo(ctx context.Context) (*TableInfo, error) {
	columns, err := s.ds.GetColumns(ctx, s.table)
	if err != nil {
		return nil, fmt.Errorf("get columns: %w", err)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("table %s has no columns (does it exist?)", s.table)
	}

	rowCount, err := s.ds.GetRowCount(ctx, s.table)
	if err != nil {
		return nil, fmt.Errorf("get row count: %w", err)
	}

	samples, err := s.ds.GetSampleRows(ctx, s.table, sampleRowLimit)
	if err != nil {
		return nil, fmt.Errorf("get sample rows: %w", err)
	}

	return &TableInfo{
		Name:       s.table,
		Columns:    columns,
		SampleRows: samples.Rows,
		RowCount:   rowCount,
	}, nil
}

// SchemaContext returns the formatted context for LLM prompts, building and
// caching it on first use.
func (s *Service) SchemaContext(ctx context.Context) (string, error) {
	s.mu.Lock()
	cached := s.cached
	s.mu.Unlock()
	if cached != "" {
		return cached, nil
	}

	info, err := s.GetTableInfo(ctx)
	if err != nil {
		return "", err
	}

	formatted := formatContext(info)

	s.mu.Lock()
	s.cached = formatted
	s.mu.Unlock()

	s.logger.Info("Schema context built",
		zap.String("table", info.Name),
		zap.Int("columns", len(info.Columns)),
		zap.Int64("rows", info.RowCount))

	return formatted, nil
}

// InvalidateCache clears the cached context so the next call rebuilds it.
func (s *Service) InvalidateCache() {
	s.mu.Lock()
	s.cached = ""
	s.mu.Unlock()
}

func formatContext(info *TableInfo) string {
	var sb strings.Builder

	sb.WriteString("CONTEXTO DO BANCO DE DADOS - SISTEMA ÚNICO DE SAÚDE (SUS)\n")
	sb.WriteString("========================================================\n\n")
	sb.WriteString(fmt.Sprintf("INFORMAÇÕES DA TABELA: %s\n", info.Name))
	sb.WriteString(fmt.Sprintf("Total de registros: %d\n\n", info.RowCount))

	sb.WriteString("COLUNAS DISPONÍVEIS:\n")
	for _, col := range info.Columns {
		sb.WriteString(fmt.Sprintf("- %s (%s): %s\n", col.Name, col.DataType, columnDescriptions[col.Name]))
	}

	sb.WriteString("\nNOTAS IMPORTANTES:\n")
	for _, note := range importantNotes {
		sb.WriteString(fmt.Sprintf("- %s\n", note))
	}

	sb.WriteString("\nEXEMPLOS DE CONSULTAS:\n")
	sb.WriteString(strings.Join(queryExamples, "\n"))

	return sb.String()
}
