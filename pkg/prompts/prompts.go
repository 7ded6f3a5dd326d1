// Package prompts assembles the prompt sent to the SQL agent.
package prompts

import (
	"fmt"
	"strings"
)

const queryRules = `REGRAS PARA A CONSULTA:
1. Gere apenas consultas SELECT. Nunca modifique dados.
2. Para consultas sobre cidades, use a coluna CIDADE_RESIDENCIA_PACIENTE com a capitalização correta (ex: 'Porto Alegre', não 'porto alegre').
3. Códigos de sexo: 1=Masculino, 3=Feminino.
4. Para óbitos use MORTE = 1.
5. Datas estão no formato AAAAMMDD.
6. Responda sempre em português.`

// BuildQueryPrompt combines the schema context, domain rules and the user
// question into the text handed to the agent.
func BuildQueryPrompt(schemaContext, userQuery string) string {
	var sb strings.Builder

	sb.WriteString(schemaContext)
	sb.WriteString("\n\n")
	sb.WriteString(queryRules)
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("PERGUNTA DO USUÁRIO: %s\n", userQuery))

	return sb.String()
}
