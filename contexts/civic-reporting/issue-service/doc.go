// Package issueservice implements issue intake inside the civic-reporting
// context.
//
// The module owns the descriptive issue record (title, category, location)
// and the staff-only status endpoint. Engagement state and lifecycle rules
// are delegated to the engagement ledger through a gateway port so they live
// in exactly one place.
package issueservice
