package llm

import (
	"context"
)

// sqlAgentSystemMessage instructs the model to behave like a SQL agent over
// the SUS hospitalization database: reason, emit exactly one SELECT in a
// tagged fence, and close with a Final Answer line. The pipeline's extractor
// and parser are built around this transcript shape.
const sqlAgentSystemMessage = `Você é um agente SQL para um banco de dados de internações hospitalares do SUS (SQLite).

Responda sempre neste formato:
1. Explique brevemente seu raciocínio.
2. Escreva exatamente UMA consulta SELECT dentro de um bloco de código:
` + "```sql\nSELECT ...\n```" + `
3. Termine com uma linha "Final Answer:" contendo a resposta em linguagem natural.

Regras:
- Gere apenas consultas SELECT. Nunca modifique dados.
- Use somente as tabelas e colunas descritas no contexto fornecido.
- Não use ponto e vírgula no meio da consulta nem comentários SQL.`

// agentTemperature keeps SQL drafting deterministic.
const agentTemperature = 0.0

// QueryAgent adapts an LLMClient to the pipeline's one-shot agent contract:
// one prompt in, one free-text transcript out, no retries.
type QueryAgent struct {
	client LLMClient
}

// NewQueryAgent wraps an LLM client as a SQL-drafting agent.
func NewQueryAgent(client LLMClient) *QueryAgent {
	return &QueryAgent{client: client}
}

// Run sends the augmented prompt and returns the raw transcript.
func (a *QueryAgent) Run(ctx context.Context, prompt string) (string, error) {
	return a.client.GenerateResponse(ctx, prompt, sqlAgentSystemMessage, agentTemperature)
}
