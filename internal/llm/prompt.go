// Copyright (c) 2026 SQLSage. All rights reserved.

package llm

import (
	"fmt"
	"strings"

	"github.com/sqlsage/sqlsage/internal/querymodel"
)

const understandSystemPrompt = `You are the intent-extraction stage of a natural-language-to-SQL engine.
Given a user question, respond with a single JSON object and nothing else:
{"intent": "<select|count|sum|average|max|min>", "entities": ["..."], "filters": {"<name>": "<value>"}}.
Do not include explanations, markdown fences, or any text outside the JSON object.`

const generateSystemPrompt = `You are the SQL-generation stage of a natural-language-to-SQL engine.
Given an intent, a schema context, and adaptive hints, respond with a single
PostgreSQL SELECT statement terminated by a semicolon and nothing else.
Do not include explanations, markdown fences, or any text outside the statement.`

func buildUnderstandPrompt(text, adaptiveContext string) string {
	var b strings.Builder
	b.WriteString("Question: ")
	b.WriteString(text)
	if adaptiveContext != "" {
		b.WriteString("\n\nAdaptive context:\n")
		b.WriteString(adaptiveContext)
	}
	return b.String()
}

func buildGeneratePrompt(intent querymodel.Intent, schemaContext, adaptiveContext string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Task: %s\n", intent.Operation)
	if len(intent.Entities) > 0 {
		fmt.Fprintf(&b, "Entities: %s\n", strings.Join(intent.Entities, ", "))
	}
	for _, filter := range intent.Filters {
		fmt.Fprintf(&b, "Filter %s\n", filter)
	}
	if schemaContext != "" {
		b.WriteString("\nSchema:\n")
		b.WriteString(schemaContext)
	}
	if adaptiveContext != "" {
		b.WriteString("\n\nAdaptive hints:\n")
		b.WriteString(adaptiveContext)
	}
	b.WriteString("\n\nWrite the SQL statement:")
	return b.String()
}
