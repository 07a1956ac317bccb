// Package models defines the core domain models for Wasteline.
//
// # Models
//
//   - Household: a billed residential unit with its payment history
//   - Payment: one captured fee for a billing period
//   - Staff: a driver or helper servicing a route
//   - Admin: the single operator credential
//
// # Design Principles
//
// 1. **Explicit variants**: drivers and helpers share one Staff struct and are
// told apart by Role, never by which fields happen to be set
// 2. **Period keys are strings**: a billing period is identified by its label
// ("October 2026"), and payments are matched by string equality
// 3. **Full-record replace**: callers merge edits into a complete record
// before asking the store to update it
// 4. **Value semantics**: stores hand out copies, so every model offers Clone
// where it owns a slice
package models
