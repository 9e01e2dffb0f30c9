// Copyright 2016 by Thorsten von Eicken, see LICENSE file

package si4707

import "context"

// Future is the handle a caller gets back from DoCommand: it resolves,
// exactly once, to either a result or an error once the command worker
// finishes executing the command.
type Future struct {
	done   chan struct{}
	result interface{}
	err    error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// resolve fulfills the future. Only the command worker ever calls this,
// and only once per Future.
func (f *Future) resolve(result interface{}, err error) {
	f.result = result
	f.err = err
	close(f.done)
}

// Get blocks until the command completes and returns its result, or its
// error.
func (f *Future) Get() (interface{}, error) {
	<-f.done
	return f.result, f.err
}

// Wait blocks until the command completes or ctx is done, whichever comes
// first.
func (f *Future) Wait(ctx context.Context) (interface{}, error) {
	select {
	case <-f.done:
		return f.result, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
