// Package collections provides the scratch structures pipeline operators
// build during a single pass: hash lookups that remember insertion order,
// dedup sets, owned buffers with borrowed read-only views, and a bounded
// FIFO window.
//
// None of the types are safe for concurrent use. Each one is owned by a
// single operator for the duration of one enumeration and must be released
// (Close or Release) by that owner. Views handed out by an owner stay valid
// only while the owner is alive; reading one afterwards panics with
// errors.ErrCodeViewReleased.
//
// # Comparers
//
// Keys are compared through a Comparer. DefaultComparer covers every
// comparable type; StringComparer and FoldStringComparer hash with xxhash.
//
//	set := collections.NewSet[string](collections.FoldStringComparer{}, 0)
//	set.Add("Go")  // true
//	set.Add("GO")  // false
package collections
