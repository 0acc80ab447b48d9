package cluster

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Sink receives encoded clusters in submission order.
type Sink func(encoded []byte) error

// Pipeline encodes submitted clusters and hands them to a Sink in the order
// they were submitted.
//
// With a single worker every cluster is encoded synchronously inside Submit.
// With more workers encoding runs on an errgroup while later clusters are
// still being filled; at most 2*workers encoded clusters wait for the sink.
type Pipeline struct {
	comp    *Compressor
	sink    Sink
	workers int

	g     *errgroup.Group
	queue []*job
	count int
	err   error
}

type job struct {
	cluster *Cluster
	out     []byte
	err     error
	done    chan struct{}
}

// NewPipeline creates a Pipeline. Values of workers below 1 are treated as 1.
func NewPipeline(ctx context.Context, comp *Compressor, workers int, sink Sink) *Pipeline {
	if workers < 1 {
		workers = 1
	}
	p := &Pipeline{comp: comp, sink: sink, workers: workers}
	if workers > 1 {
		p.g, _ = errgroup.WithContext(ctx)
		p.g.SetLimit(workers)
	}
	return p
}

// Count returns the number of clusters submitted so far.
func (p *Pipeline) Count() int { return p.count }

// Submit queues c for encoding. The pipeline owns c afterwards.
func (p *Pipeline) Submit(c *Cluster) error {
	if p.err != nil {
		return p.err
	}
	p.count++
	if p.g == nil {
		out, err := c.Encode(p.comp)
		if err == nil {
			err = p.sink(out)
		}
		p.err = err
		return err
	}

	j := &job{cluster: c, done: make(chan struct{})}
	p.g.Go(func() error {
		defer close(j.done)
		j.out, j.err = j.cluster.Encode(p.comp)
		j.cluster = nil
		return j.err
	})
	p.queue = append(p.queue, j)

	for len(p.queue) > 2*p.workers {
		if err := p.drainOne(); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) drainOne() error {
	j := p.queue[0]
	p.queue[0] = nil
	p.queue = p.queue[1:]
	<-j.done
	if j.err != nil {
		p.err = j.err
		return j.err
	}
	if err := p.sink(j.out); err != nil {
		p.err = err
		return err
	}
	return nil
}

// Close waits for all queued clusters and delivers them to the sink. It must
// be called even after Submit fails, so no encoder goroutine outlives the
// pipeline.
func (p *Pipeline) Close() error {
	if p.g == nil {
		return nil
	}
	err := p.err
	for len(p.queue) > 0 && err == nil {
		err = p.drainOne()
	}
	p.queue = nil
	if werr := p.g.Wait(); err == nil {
		err = werr
	}
	return err
}
