/*
Package events observes job and snapshot lifecycle without coupling the
worker pool or snapshot manager to any particular consumer.

A Broker keeps a running started/completed/failed tally per job name and
fans each event out to subscribers synchronously under one lock; Publish
never blocks on a slow subscriber, a full buffer simply drops the event
for that subscriber. Nothing in this package is required for the pool or
the snapshot manager to function correctly: a broker with zero
subscribers still tracks tallies, and one with zero tally lookups still
delivers events.

Event types:

	job.started, job.completed, job.failed
	snapshot.requested, snapshot.completed, snapshot.failed
*/
package events
