// Copyright (c) 2026 SQLSage. All rights reserved.

package llm

import (
	"fmt"
	"strings"

	"github.com/sqlsage/sqlsage/internal/querymodel"
)

// intentKeyword pairs an ASCII-folded keyword with the canonical
// [querymodel.IntentKind] it implies. Checked in order; the first match wins.
type intentKeyword struct {
	keyword string
	kind    querymodel.IntentKind
}

var intentKeywords = []intentKeyword{
	{"en cok", querymodel.IntentMax}, {"en fazla", querymodel.IntentMax},
	{"en az", querymodel.IntentMin},
	{"ortalama", querymodel.IntentAvg}, {"average", querymodel.IntentAvg},
	{"toplam", querymodel.IntentSum}, {"sum", querymodel.IntentSum}, {"total", querymodel.IntentSum},
	{"kac ", querymodel.IntentCount}, {"sayisi", querymodel.IntentCount}, {"sayi", querymodel.IntentCount}, {"count", querymodel.IntentCount},
}

// entityKeyword maps a curated business-noun surface form to the table/
// entity name it refers to.
var entityKeywords = map[string]string{
	"musteri": "customers", "customer": "customers",
	"siparis": "orders", "order": "orders",
	"urun": "products", "product": "products",
	"odeme": "payments", "payment": "payments",
	"fatura": "invoices", "invoice": "invoices",
	"kullanici": "users", "user": "users",
	"kategori": "categories", "category": "categories",
}

// fallbackUnderstand implements the deterministic rule-based parser spec.md
// §4.8 falls back to when the LM response fails every JSON-extraction
// pattern: a keyword-to-intent map plus a curated entity-keyword scan.
func fallbackUnderstand(asciiText string) querymodel.Intent {
	intent := querymodel.Intent{Operation: querymodel.IntentSelect}

	for _, k := range intentKeywords {
		if strings.Contains(asciiText, k.keyword) {
			intent.Operation = k.kind
			break
		}
	}

	seen := map[string]bool{}
	for surface, entity := range entityKeywords {
		if strings.Contains(asciiText, surface) && !seen[entity] {
			intent.Entities = append(intent.Entities, entity)
			seen[entity] = true
		}
	}

	return intent
}

// GenerateTemplateSQL is the deterministic template generator spec.md §4.8
// falls back to on LM timeout or error: per-intent SQL over bestTable,
// optionally widened to a JOIN ... GROUP BY skeleton against secondTable
// when withJoin is set (C7 flagged a complex-join construct and a second
// entity is present). It is a first-class branch, not an error path.
func GenerateTemplateSQL(intent querymodel.Intent, bestTable, secondTable string, withJoin bool) string {
	if withJoin && secondTable != "" {
		return fmt.Sprintf(
			"SELECT %s.*, COUNT(%s.id) AS %s_count FROM %s JOIN %s ON %s.id = %s.%s_id GROUP BY %s.id",
			bestTable, secondTable, secondTable, bestTable, secondTable, bestTable, secondTable, singular(bestTable), bestTable,
		)
	}

	switch intent.Operation {
	case querymodel.IntentCount:
		return fmt.Sprintf("SELECT COUNT(*) FROM %s", bestTable)
	case querymodel.IntentMax:
		return fmt.Sprintf("SELECT * FROM %s ORDER BY id DESC LIMIT 10", bestTable)
	case querymodel.IntentMin:
		return fmt.Sprintf("SELECT * FROM %s ORDER BY id ASC LIMIT 10", bestTable)
	case querymodel.IntentSum, querymodel.IntentAvg:
		return fmt.Sprintf("SELECT * FROM %s", bestTable)
	default:
		return fmt.Sprintf("SELECT * FROM %s LIMIT 100", bestTable)
	}
}

// singular strips a trailing "s" from an English table name for use as a
// foreign-key column prefix (orders -> order_id). It is a best-effort
// heuristic, not a general inflector.
func singular(table string) string {
	return strings.TrimSuffix(table, "s")
}
