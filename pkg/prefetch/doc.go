// Package prefetch implements a predictive item-prefetching cache between
// a "load more" interaction and a paginated item service.
//
// The coordinator absorbs requests for N items with minimal latency by
// keeping a local buffer replenished ahead of need and coalescing
// concurrent demand onto a single in-flight fetch.
//
// # Request flow
//
// Request(ctx, n) checks the buffer first. When it holds enough, the first
// n items are removed and returned immediately; if that drain leaves the
// buffer below the low-item threshold, one background fetch starts without
// delaying the caller. When the buffer is short, the coordinator fetches
// pages until it can serve n items or the service reports exhaustion,
// advancing pagination state after each successful fetch.
//
// At most one fetch is ever outstanding. Callers arriving while a fetch is
// in flight wait for it to settle and then re-evaluate their request, so
// any number of concurrent callers drive exactly one fetch chain.
//
// # Basic usage
//
//	coord, err := prefetch.New(prefetch.Config{
//		Endpoint: "https://items.example.com/list",
//		LowWater: 20,
//		PageSize: 50,
//	})
//	if err != nil {
//		return err
//	}
//
//	items, err := coord.Request(ctx, 10)
//
// # Lifecycle events
//
// Four events are emitted through the configured events.Emitter:
// load-started and load-finished around each foreground fetch chain, error
// after a failed chain, and exhausted once per response that signals the
// service has no further items. Names and namespace are configurable via
// Config.Events.
//
// # Errors
//
// A failed fetch fails the Request that drove it; there is no retry and no
// partial result reported as success. Items fetched before the failure
// remain buffered for later requests.
package prefetch
