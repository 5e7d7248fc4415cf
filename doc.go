// Package keel is a lightweight data layer for Go applications: observable
// models, ordered and indexed collections of them, a synchronous event hub,
// and thin persistence hooks against a remote HTTP API or local files.
//
// The root package re-exports the commonly used types and constructors; the
// full surface lives in the pkg/ subpackages:
//
//   - pkg/model: observable attribute bags with change tracking
//   - pkg/collection: ordered, uniquely-indexed, event-emitting sets
//   - pkg/events: the synchronous publish/subscribe hub
//   - pkg/sync: HTTP and file persistence adapters
//
// Example usage:
//
//	books := keel.NewCollection(
//	    collection.WithURL("https://api.example.com/books"),
//	    collection.WithComparator(collection.ByField("title")),
//	)
//	books.On("add", func(args ...any) {
//	    m := args[0].(*keel.Model)
//	    fmt.Println("added:", m.Get("title"))
//	})
//	if err := books.Fetch(ctx); err != nil {
//	    log.Fatal(err)
//	}
package keel
