// Package jobs provides scheduled background tasks for the order engine.
//
// Jobs are cron-based (github.com/robfig/cron/v3, six-field schedules with
// seconds) and skip a tick while the previous run is still going.
//
// # Available Jobs
//
// 1. ProviderReconciliationJob - retries the provider registration of orders
// that should carry a provider order code but do not. It runs under a Redis
// lock so only one instance reconciles at a time.
// 2. OutboxRelayJob - publishes committed outbox events to the Redis stream.
// Concurrent relays are safe; each locks its batch with SKIP LOCKED.
//
// # Usage
//
//	jobManager, err := jobs.NewJobManager(reconciliationJob, relayJob)
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
//
// # Error Handling
//
// A failed run is logged and counted in the job metrics; the next tick tries
// again. Failed job starts stop the jobs already running.
package jobs
