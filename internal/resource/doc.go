// Package resource implements the frame controller shared by hosts and the query fan-out.
//
// The Controller manages two resources:
//
//   - Frames: a token bucket that paces the host loop to a target frame rate
//   - Query workers: a weighted semaphore bounding concurrent neighbor queries
//
// # Frame Pacing
//
//	rc := resource.NewController(resource.Config{
//	    FrameRate: 60,
//	})
//
//	for {
//	    if err := rc.WaitFrame(ctx); err != nil {
//	        return err // context cancelled
//	    }
//	    // clear, insert, rebuild, query
//	}
//
// # Query Workers
//
// Every concurrent query requires a worker slot. Slots are shared across
// every Space that uses the same Controller:
//
//	if err := rc.AcquireWorker(ctx); err != nil {
//	    return err
//	}
//	defer rc.ReleaseWorker()
//
// # Nil Safety
//
// Every method accepts a nil Controller and then does nothing: frames are
// unpaced, worker slots always granted, and MaxWorkers reports 1.
package resource
