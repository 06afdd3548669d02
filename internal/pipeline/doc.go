// Package pipeline runs the extraction engine over a stream of pages.
//
// Each page goes through a Pipeline of steps (normalize, detect, associate,
// validate, score) on a bounded pool of workers. The resulting records flow
// through a bounded queue into a single aggregation goroutine, which owns the
// contact table. The Engine finalizes the table once input is exhausted or
// the run is cancelled.
package pipeline
