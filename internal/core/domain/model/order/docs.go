// Package order holds the Order aggregate, its line items and the closed status
// enumerations that drive the order lifecycle.
//
// An order moves along three independent axes:
//   - ConfirmationStatus (agent_status): set by the call-centre agent
//   - FollowupStatus: set by the follow-up worker after confirmation
//   - DeliveryStatus: set by the delivery provider webhook or by staff
//
// Updates are expressed as a Patch that declares its fields explicitly. A Role
// limits which fields a caller may declare. Rules that need collaborators
// (catalog lookups, provider calls, the follow-up rotation) live in the
// application layer; Order exposes the decisions they depend on through
// QualifiesForFollowup and ProviderSync.
package order
