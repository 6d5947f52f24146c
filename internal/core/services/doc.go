// Package services implements the core business logic for Meetsync.
//
// Services implement the driving ports and depend only on domain types
// and driven ports. The classifier is a pure function over raw events;
// the sync service orchestrates credential, fetch, classify and upsert;
// the proposal service drafts or delegates proposal generation.
package services
