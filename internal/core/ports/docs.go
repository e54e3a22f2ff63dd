// Package ports defines the contracts between the application core and the
// adapters: persistence behind a unit of work, the catalog and user directory,
// the integrated delivery provider, the event broker and the job lock.
package ports
