/*
Package domain contains the core value types of the eligibility dialogue:
sessions, dialogue states, turn results, slot values, eligibility verdicts
and receipts, verifier results, and the sentinel errors shared by every
layer.

The package has no dependencies on storage, transport, or the workflow
engine; those layers all depend on it.
*/
package domain
