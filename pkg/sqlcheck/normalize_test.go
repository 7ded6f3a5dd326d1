package sqlcheck

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCityCase(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "bare lowercase literal",
			input:    "SELECT COUNT(*) FROM sus_data WHERE CIDADE_RESIDENCIA_PACIENTE = 'porto alegre'",
			expected: "SELECT COUNT(*) FROM sus_data WHERE CIDADE_RESIDENCIA_PACIENTE = 'Porto Alegre'",
		},
		{
			name:     "upper function call",
			input:    "SELECT * FROM sus_data WHERE CIDADE_RESIDENCIA_PACIENTE = UPPER('porto alegre')",
			expected: "SELECT * FROM sus_data WHERE CIDADE_RESIDENCIA_PACIENTE = 'Porto Alegre'",
		},
		{
			name:     "lower function call",
			input:    "SELECT * FROM sus_data WHERE CIDADE_RESIDENCIA_PACIENTE = LOWER('Uruguaiana')",
			expected: "SELECT * FROM sus_data WHERE CIDADE_RESIDENCIA_PACIENTE = 'Uruguaiana'",
		},
		{
			name:     "upper call with spaces",
			input:    "SELECT * FROM sus_data WHERE CIDADE_RESIDENCIA_PACIENTE = UPPER ( 'caxias do sul' )",
			expected: "SELECT * FROM sus_data WHERE CIDADE_RESIDENCIA_PACIENTE = 'Caxias Do Sul'",
		},
		{
			name:     "already canonical is untouched",
			input:    "SELECT * FROM sus_data WHERE CIDADE_RESIDENCIA_PACIENTE = 'Porto Alegre'",
			expected: "SELECT * FROM sus_data WHERE CIDADE_RESIDENCIA_PACIENTE = 'Porto Alegre'",
		},
		{
			name:     "mixed case literal is untouched",
			input:    "SELECT * FROM sus_data WHERE CIDADE_RESIDENCIA_PACIENTE = 'pOrto Alegre'",
			expected: "SELECT * FROM sus_data WHERE CIDADE_RESIDENCIA_PACIENTE = 'pOrto Alegre'",
		},
		{
			name:     "other columns and literals are untouched",
			input:    "SELECT * FROM sus_data WHERE UF_RESIDENCIA_PACIENTE = 'rs' AND CIDADE_RESIDENCIA_PACIENTE = 'ijuí'",
			expected: "SELECT * FROM sus_data WHERE UF_RESIDENCIA_PACIENTE = 'rs' AND CIDADE_RESIDENCIA_PACIENTE = 'Ijuí'",
		},
		{
			name:     "no city comparison",
			input:    "SELECT COUNT(*) FROM sus_data WHERE MORTE = 1",
			expected: "SELECT COUNT(*) FROM sus_data WHERE MORTE = 1",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeCityCase(tt.input))
		})
	}
}

func TestNormalizeCityCase_Idempotent(t *testing.T) {
	inputs := []string{
		"SELECT COUNT(*) FROM sus_data WHERE CIDADE_RESIDENCIA_PACIENTE = 'porto alegre'",
		"SELECT * FROM sus_data WHERE CIDADE_RESIDENCIA_PACIENTE = UPPER('santa maria')",
		"SELECT * FROM sus_data WHERE CIDADE_RESIDENCIA_PACIENTE = LOWER('PELOTAS')",
		"SELECT COUNT(*) FROM sus_data WHERE MORTE = 1",
		"",
	}
	for _, input := range inputs {
		once := NormalizeCityCase(input)
		twice := NormalizeCityCase(once)
		assert.Equal(t, once, twice, "normalize must be idempotent for %q", input)
	}
}
