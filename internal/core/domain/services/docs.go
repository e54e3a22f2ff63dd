// Package services provides domain services that coordinate order behaviour with
// data the aggregate does not own.
//
// The package includes:
//   - FollowupRotation: round-robin selection of the follow-up worker for a
//     confirmed order
package services
