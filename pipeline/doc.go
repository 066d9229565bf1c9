// Package pipeline provides lazy, pull-based operators over asynchronous
// sequences.
//
// A *Pipeline[T] is a single-use handle to a stage. Operators consume their
// input handles and return new ones; nothing runs until Iter is called and
// values are pulled:
//
//	words := pipeline.Of("apple", "bean", "avocado", "cherry")
//	counts := pipeline.CountBy(words, func(_ context.Context, w string) (string, error) {
//	    return w[:1], nil
//	})
//	kvs, err := pipeline.Collect(ctx, counts)
//	// [{a 2} {b 1} {c 1}]
//
// Every iterator must be closed. Closing tears the stage down from the
// consumer towards the sources; a pipeline that is never iterated is
// released with Close and runs no user callbacks.
//
// # Errors
//
// Usage errors (stale handles, concurrent Next calls, Next after Close) are
// reported as *errors.AppError with a matching code. When several teardown
// steps fail, the failures are combined into one aggregate error.
//
// # Concurrency
//
// Iterators are not safe for concurrent use. Only Merge, MergeAll and Buffer
// start goroutines, and all of them are joined before Close returns.
//
// # Operators
//
//   - Filtering: Where, WhereIndexed, WhereAwait, SkipWhile, TakeWhile
//   - Projection: Select, SelectIndexed, SelectMany, FlatMap, Tap
//   - Partitioning: Skip, Take, SkipLast, TakeLast, Chunk, Batch
//   - Sets: Distinct, DistinctBy, Union, UnionBy, Except, ExceptBy, Intersect, IntersectBy
//   - Grouping: GroupBy, GroupByElement, AggregateBy, CountBy, ToLookup
//   - Joins: Join, GroupJoin
//   - Ordering: OrderBy, OrderByDescending, ThenBy, ThenByDescending
//   - Combining: Concat, Append, Prepend, Merge, MergeAll
//   - Terminals: Collect, ForEach, Drain, Count, First, Any, ElementAt
package pipeline
