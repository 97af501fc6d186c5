package usecase

import (
	"encoding/json"
	"fmt"
	"strings"
)

// AnalystTable is the view the analyst prompts describe.
const AnalystTable = "view_operacoes_financeiras"

// TableContext describes AnalystTable to the language model.
const TableContext = `Context of table 'view_operacoes_financeiras':
The table stores financial operations. Each row is one individual movement.
The data can be used to analyse spending, income and investments.
The table has the following columns:

- id (BIGINT): primary identifier of the raw movement.
- tipo_movimentacao (TEXT): whether the movement was an Inflow, Outflow, Neutral or Transfer-to-Investment.
- categoria (TEXT): category of the movement: Investment, Salary, FixedBill, CreditCard or Other.
- motivo (TEXT): reason for the movement, such as Internet, Electricity, Gym, among others.
- valor (NUMERIC): absolute amount of the movement.
- data (DATE): date of the movement in YYYY-MM-DD format.
`

func sqlPrompt(question string) string {
	return fmt.Sprintf(`%s
Your task is to convert the question below into a single PostgreSQL SELECT query over the table '%s'.

- Return only the SQL code, without explanations.
- Use the column names exactly as they appear in the context.
- Date filters use the YYYY-MM-DD format.

User question: %s
`, TableContext, AnalystTable, question)
}

func analysisPrompt(rows []map[string]any) string {
	data, err := json.Marshal(rows)
	if err != nil {
		data = []byte(fmt.Sprint(rows))
	}

	return fmt.Sprintf(`You are a data analyst.

Below is financial data from the table '%s', which records individual movements used to analyse income, expenses and investments.

%s
Data:
%s

Based on the information above, write a clear and objective descriptive analysis highlighting the main patterns or behaviours observed. Start with a paragraph summarising the main insights in detail.

Then list suggested actions or further investigations that could help understand the data better or support decisions.

Do not use bold, italics or special symbols. Keep the text plain and direct.
`, AnalystTable, TableContext, data)
}

// CleanSQL removes markdown code fences and surrounding whitespace from model output.
func CleanSQL(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, "```sql", "")
	s = strings.ReplaceAll(s, "```SQL", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}
