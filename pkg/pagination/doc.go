// Package pagination fetches FPDS search results page by page under a
// shared concurrency cap.
//
// A Fetcher fetches page 1, derives a State from it, then fans out pages
// 2..N concurrently. Every page fetch holds one gate permit for the duration
// of its request, normalization and mapping, so the number of in-flight
// requests never exceeds Config.MaxConcurrency, retries included.
//
// Example usage:
//
//	c, _ := client.New(client.DefaultConfig("my-app/1.0 (me@example.com)"))
//	f := pagination.NewFetcher(c, pagination.DefaultConfig())
//	res, err := f.Fetch(ctx, search.Params{search.PIID: {"W912DY24C0001"}})
//
// The fetcher:
//   - Restores page order by index, whatever the completion order
//   - Fails a single query as a whole when any page fails
//   - Isolates failures per query in SearchContracts
//   - Streams page batches in order with Stream
package pagination
