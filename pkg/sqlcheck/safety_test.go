package sqlcheck

import (
	"testing"
)

func TestValidate_SafeSelects(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{
			name:  "simple count",
			input: "SELECT COUNT(*) FROM sus_data",
		},
		{
			name:  "select with where clause",
			input: "SELECT * FROM sus_data WHERE MORTE = 1",
		},
		{
			name:  "select with trailing semicolon",
			input: "SELECT IDADE FROM sus_data WHERE SEXO = 3;",
		},
		{
			name:  "lowercase select",
			input: "select VAL_TOT from sus_data",
		},
		{
			name:  "city literal with canonical case",
			input: "SELECT COUNT(*) FROM sus_data WHERE CIDADE_RESIDENCIA_PACIENTE = 'Porto Alegre'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate(tt.input)
			if !result.IsSafe {
				t.Errorf("expected safe, got blocked: %v", result.BlockedReasons)
			}
			if !result.IsValid {
				t.Errorf("expected valid, got warnings: %v", result.Warnings)
			}
			if len(result.BlockedReasons) != 0 {
				t.Errorf("expected no blocked reasons, got %v", result.BlockedReasons)
			}
		})
	}
}

func TestValidate_DenyListKeywords(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "drop statement", input: "DROP TABLE sus_data"},
		{name: "delete statement", input: "DELETE FROM sus_data WHERE MORTE = 0"},
		{name: "update statement", input: "UPDATE sus_data SET MORTE = 1"},
		{name: "insert statement", input: "INSERT INTO sus_data VALUES (1)"},
		{name: "truncate statement", input: "TRUNCATE TABLE sus_data"},
		{name: "lowercase drop", input: "drop table sus_data"},
		{name: "mixed case delete", input: "DeLeTe FROM sus_data"},
		{name: "exec procedure", input: "EXEC xp_cmdshell 'dir'"},
		{name: "stacked drop after select", input: "SELECT 1; DROP TABLE sus_data"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate(tt.input)
			if result.IsSafe {
				t.Errorf("expected blocked, got safe")
			}
			if len(result.BlockedReasons) == 0 {
				t.Errorf("expected non-empty blocked reasons")
			}
		})
	}
}

func TestValidate_SuspiciousPatternsBlock(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "inline comment", input: "SELECT * FROM sus_data -- hidden"},
		{name: "block comment", input: "SELECT /* x */ COUNT(*) FROM sus_data"},
		{name: "stacked statement", input: "SELECT 1; SELECT 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate(tt.input)
			if result.IsSafe {
				t.Errorf("expected compound-injection indicator to block, got safe")
			}
			if len(result.Warnings) == 0 {
				t.Errorf("expected a warning to be recorded")
			}
			if len(result.BlockedReasons) == 0 {
				t.Errorf("IsSafe=false requires non-empty BlockedReasons")
			}
		})
	}
}

func TestValidate_InjectionInLiteral(t *testing.T) {
	result := Validate("SELECT * FROM sus_data WHERE CIDADE_RESIDENCIA_PACIENTE = '1'' OR ''1''=''1'")
	if result.IsSafe {
		t.Errorf("expected injection fingerprint in literal to block, got safe")
	}
}

func TestValidate_NonSelectIsInvalid(t *testing.T) {
	result := Validate("PRAGMA table_info(sus_data)")
	if result.IsValid {
		t.Errorf("expected non-SELECT to be invalid")
	}
	found := false
	for _, w := range result.Warnings {
		if w == "Consulta não é uma operação SELECT" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected SELECT-only warning, got %v", result.Warnings)
	}
}

func TestValidate_SafeIffNoBlockedReasons(t *testing.T) {
	inputs := []string{
		"SELECT 1",
		"DROP TABLE sus_data",
		"SELECT * FROM sus_data -- x",
		"not sql at all",
	}
	for _, input := range inputs {
		result := Validate(input)
		if result.IsSafe != (len(result.BlockedReasons) == 0) {
			t.Errorf("invariant violated for %q: IsSafe=%v, BlockedReasons=%v",
				input, result.IsSafe, result.BlockedReasons)
		}
	}
}
