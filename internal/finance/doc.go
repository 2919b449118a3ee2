// Package finance holds the pure arithmetic behind derived ledger state:
// signed balance effects, debt progress, budget progress and the month
// windows budgets are evaluated over. Nothing here touches the database.
package finance
