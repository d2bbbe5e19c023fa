// Package flowstate mints and verifies the signed state tokens that travel
// with a flow's resume record, so a completing context can prove the record
// in the shared store was written by this deployment and not forged by an
// unrelated consumer of the same backend.
package flowstate
