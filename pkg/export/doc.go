// Package export drives a query result through canonicalization, rendering,
// and the artifact store.
//
// An Exporter never returns an error or panics to its caller. Every call
// produces a Result carrying success, the saved filename and version, the
// dataset dimensions, and a localized message; failures carry an ErrorKind
// instead.
//
// Basic usage:
//
//	store := storage.NewMemoryStore()
//	exporter := export.NewExporter(store,
//		export.WithStoreTimeout(10*time.Second),
//		export.WithLocale("ja"),
//	)
//
//	result := exporter.Export(ctx, export.Request{
//		Data:     payload,
//		Filename: "sales_report",
//		Format:   tabular.FormatXLSX,
//	})
//	if !result.Success {
//		log.Printf("export failed (%s): %s", result.ErrorKind, result.Error)
//	}
//
// Filenames receive the format's extension unless they already end with it.
// The store call runs under a timeout; a deadline surfaces as ErrorKind
// "timeout", distinct from "store".
package export
