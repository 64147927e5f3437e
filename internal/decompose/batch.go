package decompose

import (
	"context"
	"sync"

	"github.com/ironsheep/image-decompose/internal/tree"
)

type batchJob struct {
	idx int
	ref string
}

// AnalyzeBatch fans Analyze out over independent top-level images with a
// bounded worker pool. Results preserve the input order regardless of
// completion order: each job carries its index and writes into a
// pre-sized slot. A failed image occupies its slot with an annotated
// zero-geometry node and does not affect sibling jobs.
func (c *Controller) AnalyzeBatch(ctx context.Context, imageRefs []string) []tree.ImageNode {
	results := make([]tree.ImageNode, len(imageRefs))
	if len(imageRefs) == 0 {
		return results
	}

	workers := c.cfg.MaxConcurrency
	if workers > len(imageRefs) {
		workers = len(imageRefs)
	}

	jobs := make(chan batchJob)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for job := range jobs {
				node, err := c.Analyze(ctx, job.ref)
				if err != nil {
					c.log.Warn("batch image failed", "index", job.idx,
						"ref", job.ref, "error", err)
					node = errorNode(job.ref, err)
				}
				results[job.idx] = node
			}
		}()
	}

	for idx, ref := range imageRefs {
		jobs <- batchJob{idx: idx, ref: ref}
	}
	close(jobs)
	wg.Wait()

	return results
}

// errorNode fills a batch slot for an image whose analysis failed
// outright.
func errorNode(ref string, err error) tree.ImageNode {
	return tree.ImageNode{
		ID:          tree.NewID(),
		SourceImage: ref,
		Metadata:    map[string]any{tree.MetaError: err.Error()},
	}
}
