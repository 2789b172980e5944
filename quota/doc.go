// Package quota reports the remaining GitHub REST quota for a credential.
//
// Monitor queries the rate_limit endpoint, which does not itself consume
// quota, and memoizes the answer per credential for a short time so that a
// burst of analyses does not query it once per call.
package quota
