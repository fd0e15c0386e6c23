// Package main provides the entry point for hrcore, the authorization and
// leave-approval service of the university HR backend. It resolves effective
// permissions from data-driven roles and assignments, gates every leave
// request transition on the caller's approval scope and hierarchy level, and
// debits the leave-credit ledger on final HR approval. The service is exposed
// as a JSON API built on Fiber and persisted with gorm.
package main
