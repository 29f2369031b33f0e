// Package repositories implements typed persistence over the durable
// document cache.
//
// Each store wraps one named document and performs an explicit load or save
// per call; nothing is held in memory between calls, so two invocations in
// the same process always observe the latest completed write.
//
// Key Implementations:
//   - [TrackStore] : the fetched library snapshot
//   - [EnrichmentStore] : per-track external feature entries
//   - [ClassificationStore] : derived mood/genre/year labels
//   - [RuleStore] : persisted rule sets (upsert by id)
//   - [JobStore] : pipeline job records
//
// The stores never fail on missing or corrupt documents; they return the
// empty value and let the pipeline's precondition checks decide whether
// empty is acceptable.
package repositories
