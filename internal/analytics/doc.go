// Package analytics implements event ingestion, the aggregations behind the
// analytics endpoints and the retention sweeper.
//
// Classification and aggregation are pure functions over events. Service
// binds them to the database and Sweeper deletes expired events periodically.
package analytics
