package jobs

// JobQueue provides an abstraction for enqueueing background jobs
type JobQueue interface {
	// EnqueueStatsPurge schedules deletion of the review history of a removed item.
	EnqueueStatsPurge(uid string) error
	// EnqueueSave schedules an immediate save of the collection.
	EnqueueSave() error
}
