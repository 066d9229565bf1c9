// Package errors provides the structured error type shared by seqkit packages.
//
// Every failure surfaced by a pipeline is either a user error passed through
// untouched, a context cancellation, or an *AppError carrying a
// machine-readable Code. Failures collected while tearing down several
// resources are combined with Aggregate so that none of them is lost.
package errors
