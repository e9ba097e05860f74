// Package recorder keeps the batches a runtime delivered.
//
// A Recorder wraps a runtime.Backend. Every batch the backend accepts is
// stored in a sequence-numbered History ring, for replaying to a backend
// that missed some, and optionally queued for archiving to a Sink as JSON
// Lines segments.
//
//	hist := recorder.NewHistory(200)
//	rec := recorder.New(hub,
//	    recorder.WithHistory(hist),
//	    recorder.WithSink(recorder.NewS3Sink(s3Client, "audit-bucket"), "trees/"),
//	)
//	rt := runtime.New(rec)
//	go rec.Run(ctx, time.Minute)
package recorder
