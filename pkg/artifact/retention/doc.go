// Package retention prunes old artifact versions.
//
// A Pruner applies two policies to any store implementing artifact.Pruner:
// versions older than RetentionDays are deleted (the latest version of each
// artifact always survives), and at most MaxVersions versions are kept per
// artifact. Prune runs both once; Start runs them on a cron schedule.
//
//	pruner := retention.NewPruner(store, &retention.Config{
//	    RetentionDays: 30,
//	    MaxVersions:   10,
//	    PruneSchedule: "0 3 * * *",
//	})
//	if err := pruner.Start(ctx); err != nil {
//	    return err
//	}
//	defer pruner.Stop()
package retention
