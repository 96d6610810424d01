// Package models defines the core domain models for Claimdesk.
//
// # Models
//
//   - Claim: one overtime/expense request, owned by the employee who created it
//   - ClaimLogEntry: one immutable audit record for an accepted status change
//   - User: a registered account carrying exactly one Role
//   - Project: a cost target that claims are booked against
//   - Actor: the identity (user ID, display name, role) performing an action
//
// # Design Principles
//
//  1. **Single source of truth**: claim status lives here as a closed enum;
//     callers never compare raw strings against ad hoc literals.
//  2. **Avoid circular references**: relationships use ID strings, not pointers.
//  3. **Mutation discipline**: a Claim's status is only ever changed by the
//     lifecycle engine; models carry no transition logic themselves.
//
// Timestamps are Unix seconds (int64). Monetary amounts use decimal.Decimal to
// avoid float rounding on money.
package models
