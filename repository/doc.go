// Package repository stores members and teams with Bun and runs the
// member/team search.
//
// The generic Repository covers CRUD, pagination, upsert and transactional
// writes for any registered model. MemberQueryRepository projects the
// member/team join into MemberTeamDto rows and pages them with one of three
// count strategies: lazy (content first, count only when the total cannot be
// inferred), count-first (an empty match skips the content query) and eager.
//
// Store failures are returned as *StoreError; malformed input as
// *ValidationError, which matches ErrValidation.
package repository
