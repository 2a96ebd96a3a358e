// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Structure:
// - base.go: Base persistence models (BaseModel, AggregateModel) and JSON column helpers
// - identity.go: users
// - academic.go: students, lesson types, time entries, attendance
// - finance.go: payments, teacher payments, expenses, receipt counters
// - audit.go: audit logs
// - report.go: financial reports
//
// Column types are chosen so the same models migrate on PostgreSQL and on SQLite,
// which the repository tests run against.
package models
