// Package engagementledger implements the Engagement Ledger inside the
// community-engagement context.
//
// The module owns per-issue engagement state (vote counts, derived urgency,
// lifecycle status), toggle-style vote casting, comment threads, karma
// accounting with badges, and ledger event production through an
// outbox-backed relay. Business rules live in the application/domain layers;
// infrastructure sits behind ports and adapters.
package engagementledger
