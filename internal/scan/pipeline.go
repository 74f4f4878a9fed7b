package scan

// Request is one (target, url) slot from the request pipeline. A
// dropped slot (Dropped=true) carries no URL and only advances
// progress accounting, per spec.md §3.
type Request struct {
	TargetID int
	URL      string
	Dropped  bool
}

// Generate produces the lazily interleaved, round-robin request stream
// described in spec.md §4.3: for each path index j, it yields
// targets[0..k-1] in order before moving to j+1. It is pull-based — the
// unbuffered channel means each request is resolved against
// Target.PathAt at most one request ahead of the consumer, so the
// stream never pre-materializes even for a multi-million-entry
// wordlist (spec.md §9).
func Generate(targets []*Target, paths []string) <-chan Request {
	out := make(chan Request)

	go func() {
		defer close(out)
		for _, path := range paths {
			for _, t := range targets {
				u, ok := t.PathAt(path)
				if !ok {
					out <- Request{TargetID: t.ID, Dropped: true}
					continue
				}
				out <- Request{TargetID: t.ID, URL: u}
			}
		}
	}()

	return out
}

// Chunks partitions reqs into successive slices of at most size
// requests. The final chunk may be shorter. Once the caller receives
// chunk N, the chunker goroutine goes on pulling from reqs and
// assembles chunk N+1 while chunk N is still being processed, then
// blocks until the caller receives it; so at most one chunk is
// materialized ahead of the caller, and a target stopped during chunk
// N may still have URL (not dropped) slots in chunk N+1.
func Chunks(reqs <-chan Request, size int) <-chan []Request {
	out := make(chan []Request)

	go func() {
		defer close(out)
		chunk := make([]Request, 0, size)
		for r := range reqs {
			chunk = append(chunk, r)
			if len(chunk) == size {
				out <- chunk
				chunk = make([]Request, 0, size)
			}
		}
		if len(chunk) > 0 {
			out <- chunk
		}
	}()

	return out
}
