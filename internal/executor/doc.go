// Package executor implements a breadth-first, batch-friendly GraphQL executor
// with explicit runtime hooks for synchronous resolution, depth-wise batching of
// asynchronous work and leaf serialization.
//
// # Execution Model
//
// The executor walks the operation level by level:
//   - Synchronous fields (schema.Field.Async == false) are resolved immediately
//     through Runtime.ResolveSync and completed in place; they do not add depth.
//   - Asynchronous fields discovered while expanding a depth are queued and
//     resolved together by a single Runtime.BatchResolveAsync call. Their
//     response slots hold a placeholder until the batch returns.
//   - Completing an object value collects its sub-selection; async children are
//     queued for the next batch.
//
// For a query with asynchronous depth d, BatchResolveAsync is invoked exactly d
// times.
//
// # Value Completion
//
//   - Non-Null: complete the inner type; a null result records an error and
//     propagates null to the nearest nullable ancestor, whose path is
//     tombstoned so queued tasks below it are dropped.
//   - List: each element is completed with an index-aware path. A null element
//     of a Non-Null item type nullifies the whole list.
//   - Leaf (Scalar/Enum): Runtime.SerializeLeafValue.
//   - Object: the merged sub-selection is executed with the value as source.
//
// Only object, scalar and enum output types are supported. Fragment type
// conditions therefore match by object type name.
//
// # Errors and Partial Success
//
// Errors are accumulated as located GraphQL errors (message, locations, path,
// extensions). Selecting a field that does not exist on its parent type records
// an error at that path and omits the field from data; siblings still resolve.
// Batch results are independent, so one failing field never fails another.
//
// # Cancellation
//
// When the context is done before a depth is flushed, every task of that depth
// fails with the context error and execution finishes with what was resolved.
package executor
