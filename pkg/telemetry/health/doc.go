// Package health provides liveness, readiness and version endpoints for the
// tabula HTTP listener.
//
//	checker := health.New(2 * time.Second)
//	checker.RegisterCheck("store", func(ctx context.Context) error {
//	    return pinger.Ping(ctx)
//	})
//	health.Register(mux, checker, version, commit, buildTime)
//
// /ready answers 503 with per-check details when any check fails.
package health
