// Package models contains the GORM persistence models whose shape differs
// from their domain aggregate. The catalog Product maps one to one and is
// persisted directly; the ingestion run and the receiving document carry
// nested lists that flatten to jsonb columns and child tables, so they get
// explicit models with ToDomain/FromDomain mappers.
package models
