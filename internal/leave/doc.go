// Package leave implements the two-stage leave request workflow and the leave credit ledger.
//
// A request moves Pending -> Supervisor_Approved -> Approved. Supervisors are gated by
// the rbac approval scope evaluator, the final stage by the HR flag of the caller's
// resolution. Only the final approval debits the ledger, in the same transaction that
// sets the status.
package leave
