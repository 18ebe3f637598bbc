package agent

import (
	"encoding/json"
	"fmt"

	"github.com/leapstack-labs/revagent/pkg/core"
)

const analystSystemPrompt = "You are a helpful financial analyst. Give clear, data-backed answers."

// SQLSystemPrompt builds the instruction sent with every SQL generation call.
func SQLSystemPrompt(dialect, schema string) string {
	return fmt.Sprintf(`You are a SQL expert for a music publishing company.
Given the following database schema, generate a %s-compatible SQL query
to answer the user's question.

%s

RULES:
- Return ONLY the SQL query, nothing else.
- Do NOT wrap it in markdown code blocks.
- Use the current_songs VIEW (not dim_song directly) when calculating revenue to avoid double-counting from historical title records.
- Always use ROUND() for monetary amounts to 2 decimal places.
- Use SUM() for total revenue calculations.
`, dialect, schema)
}

// AnswerPrompt asks for a short answer grounded in the returned rows.
func AnswerPrompt(question string, rs *core.ResultSet) (string, error) {
	data, err := json.MarshalIndent(rs, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding result: %w", err)
	}
	return fmt.Sprintf(`The user asked: %q

The SQL query returned this data:
%s

Provide a clear, concise answer to the user's question based on this data.
Include the specific numbers. Be brief, 1-2 sentences.`, question, data), nil
}
