package proximity

import (
	"context"

	"github.com/akmonengine/proximity/gjk"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Pair is a pair of shapes to test, identified by the caller.
type Pair struct {
	ID int
	A  gjk.Convex
	B  gjk.Convex
}

// Contact is the result of a pair in a batch query.
type Contact struct {
	Pair   Pair
	Result Result
}

// deepPair is a pair whose cores overlap, travelling to the EPA stage with
// its pooled simplex and the shallow estimate to fall back to.
type deepPair struct {
	pair    Pair
	shallow gjk.PenetrationResult
	simplex *gjk.Simplex
}

// NarrowPhase runs Penetration on every pair received, with
// Config.ContactDistance, as a two-stage pipeline.
//
// The GJK stage runs the margin phase: separated and shallow pairs go
// straight to the output, pairs with overlapping cores are handed to the EPA
// stage. Each stage runs Config.Workers goroutines. A result is emitted for
// every pair, in no particular order.
//
// The contacts channel is closed once pairs is closed and drained, or when
// ctx is cancelled; the error channel then yields the cancellation cause
// (nil on completion) and is closed.
func (d *Detector) NarrowPhase(ctx context.Context, pairs <-chan Pair) (<-chan Contact, <-chan error) {
	contacts := make(chan Contact, d.config.Workers)
	deepPairs := make(chan deepPair, d.config.Workers)
	errc := make(chan error, 1)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(deepPairs)

		stage, ctx := errgroup.WithContext(ctx)
		for range d.config.Workers {
			stage.Go(func() error {
				return d.gjkStage(ctx, pairs, deepPairs, contacts)
			})
		}
		return stage.Wait()
	})

	g.Go(func() error {
		stage, ctx := errgroup.WithContext(ctx)
		for range d.config.Workers {
			stage.Go(func() error {
				return d.epaStage(ctx, deepPairs, contacts)
			})
		}
		return stage.Wait()
	})

	go func() {
		err := g.Wait()
		close(contacts)
		errc <- err
		close(errc)
	}()

	return contacts, errc
}

func (d *Detector) gjkStage(ctx context.Context, pairs <-chan Pair, deepPairs chan<- deepPair, contacts chan<- Contact) error {
	for {
		var pair Pair
		var ok bool
		select {
		case <-ctx.Done():
			return ctx.Err()
		case pair, ok = <-pairs:
			if !ok {
				return nil
			}
		}

		simplex := gjk.SimplexPool.Get().(*gjk.Simplex)
		shallow := gjk.Penetration(pair.A, pair.B, d.config.ContactDistance, simplex, d.config.Tolerances)

		if shallow.Status == gjk.StatusDepenetration {
			if err := send(ctx, deepPairs, deepPair{pair: pair, shallow: shallow, simplex: simplex}); err != nil {
				gjk.SimplexPool.Put(simplex)
				return err
			}
			continue
		}

		gjk.SimplexPool.Put(simplex)
		if err := send(ctx, contacts, Contact{Pair: pair, Result: fromShallow(pair.A, pair.B, shallow)}); err != nil {
			return err
		}
	}
}

func (d *Detector) epaStage(ctx context.Context, deepPairs <-chan deepPair, contacts chan<- Contact) error {
	for {
		var p deepPair
		var ok bool
		select {
		case <-ctx.Done():
			return ctx.Err()
		case p, ok = <-deepPairs:
			if !ok {
				return nil
			}
		}

		result := d.deep(p.pair.ID, p.pair.A, p.pair.B, p.shallow, p.simplex)
		gjk.SimplexPool.Put(p.simplex)

		if err := send(ctx, contacts, Contact{Pair: p.pair, Result: result}); err != nil {
			return err
		}
	}
}

func send[T any](ctx context.Context, ch chan<- T, v T) error {
	select {
	case ch <- v:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Query runs NarrowPhase over pairs and returns the results in input order.
// Pair IDs must be unique.
func (d *Detector) Query(ctx context.Context, pairs []Pair) ([]Result, error) {
	positions := make(map[int]int, len(pairs))
	for i, pair := range pairs {
		if _, exists := positions[pair.ID]; exists {
			return nil, errors.Errorf("duplicate pair id %d", pair.ID)
		}
		positions[pair.ID] = i
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	input := make(chan Pair)
	go func() {
		defer close(input)
		for _, pair := range pairs {
			if send(ctx, input, pair) != nil {
				return
			}
		}
	}()

	results := make([]Result, len(pairs))
	contacts, errc := d.NarrowPhase(ctx, input)
	for contact := range contacts {
		results[positions[contact.Pair.ID]] = contact.Result
	}
	if err := <-errc; err != nil {
		return nil, errors.Wrap(err, "narrow phase")
	}

	return results, nil
}
