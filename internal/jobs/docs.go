// Package jobs provides scheduled background tasks for the fulfillment
// system.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3.
//
// # Available Jobs
//
// 1. BacklogSweepJob - Periodically re-broadcasts orders that are ready for
// pickup but still have no rider, so couriers that connected after the
// original offer expired get another chance to accept.
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	jobManager := jobs.NewJobManager(sweepHandler, schedule)
//
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//
//	defer jobManager.StopAll()
//
// # Scheduling
//
// The sweep schedule is a six-field cron expression taken from configuration.
// The sweep can also be kicked out of band, for example when a courier comes
// online, without waiting for the next tick.
package jobs
