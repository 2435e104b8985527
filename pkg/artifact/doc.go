// Package artifact defines the versioned artifact store contract.
//
// A Store keeps every saved version of a file. Save never overwrites: it
// appends a version and returns its opaque Version. List reports the latest
// version of each name; Load and Versions read back individual versions.
//
// Backends live in the storage subpackage. Failures are reported as
// StoreError, and deadline overruns as TimeoutError.
//
// Fetchers resolve URIs to bytes for read-back:
//
//	fetcher := &artifact.MultiFetcher{Store: artifact.NewStoreFetcher(store)}
//	data, err := fetcher.Fetch(ctx, "artifact://report.xlsx@2")
package artifact
