// Package notify decides, for every domain trigger, exactly which users
// receive a notification record.
//
// The Engine resolves recipient candidates from one or more relationship
// sources (venue favorites, event interest, a claim's owning user), fetches
// preference rows in one batched call, keeps only users whose flag for the
// trigger's category is explicitly true, deduplicates by user id, and
// issues a single batched insert. A user with no preference row is opted
// out of everything.
//
// Triggers reach the engine two ways: UI-side callers invoke the Notify*
// methods directly after a successful mutation, and BindChangeEvents
// attaches handlers to the realtime multiplexer so observed change events
// drive the same paths. Either way delivery is best effort and at most
// once: a failed fan-out is logged and dropped without affecting the
// originating mutation, and nothing is retried or queued.
package notify
