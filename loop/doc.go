// Package loop provides the caller context of whisperbridge: a single
// goroutine that runs posted callbacks one at a time, in post order.
//
// Job completions are delivered through the loop, so continuations never run
// on a scheduler worker and never run concurrently with each other.
//
//	l := loop.New()
//	_ = l.Start(ctx)
//	l.Post(func() { fmt.Println("on the loop") })
//	_ = l.Stop(ctx)
package loop
