// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package stream

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MKhiriev/go-drive-keeper/internal/logger"
	"github.com/MKhiriev/go-drive-keeper/internal/resource"
	"github.com/MKhiriev/go-drive-keeper/models"
)

type opKind int

const (
	opRead opKind = iota + 1
	opWrite
	opSeek
	opLength
	opSetLength
	opClose
)

func (o opKind) String() string {
	switch o {
	case opRead:
		return "read"
	case opWrite:
		return "write"
	case opSeek:
		return "seek"
	case opLength:
		return "length"
	case opSetLength:
		return "set_length"
	case opClose:
		return "close"
	default:
		return fmt.Sprintf("op(%d)", int(o))
	}
}

type request struct {
	ctx      context.Context
	op       opKind
	length   int64
	position int64
	data     []byte
	reply    chan response
}

type response struct {
	data []byte
	n    int64
	err  error
}

type actor struct {
	id       ID
	registry *Registry
	target   Target
	log      *logger.Logger

	mu     sync.Mutex
	queue  []*request
	closed bool

	signal chan struct{}
	stop   chan struct{}
	once   sync.Once

	// cursor is owned by the loop goroutine.
	cursor int64
}

// enqueue appends req unless the actor has stopped accepting requests.
func (a *actor) enqueue(req *request) bool {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return false
	}
	a.queue = append(a.queue, req)
	a.mu.Unlock()

	select {
	case a.signal <- struct{}{}:
	default:
	}
	return true
}

func (a *actor) dequeue() *request {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.queue) == 0 {
		return nil
	}
	req := a.queue[0]
	a.queue[0] = nil
	a.queue = a.queue[1:]
	return req
}

func (a *actor) halt() {
	a.once.Do(func() { close(a.stop) })
}

// shutdown stops accepting requests, unregisters the handle and fails
// whatever is still queued.
func (a *actor) shutdown() {
	a.mu.Lock()
	a.closed = true
	pending := a.queue
	a.queue = nil
	a.mu.Unlock()

	a.registry.unregister(a)
	for _, req := range pending {
		req.reply <- response{err: ErrStreamNotFound}
	}
}

func (a *actor) loop() {
	defer a.registry.wg.Done()
	defer a.shutdown()

	idle := time.NewTimer(a.registry.idle)
	defer idle.Stop()

	for {
		select {
		case <-a.stop:
			a.log.Debug().Str("func", "*actor.loop").Str("stream", string(a.id)).Msg("stream stopped")
			return

		case <-idle.C:
			a.mu.Lock()
			busy := len(a.queue) > 0
			if !busy {
				a.closed = true
			}
			a.mu.Unlock()
			if !busy {
				a.log.Debug().Str("func", "*actor.loop").Str("stream", string(a.id)).Msg("stream idle, closing")
				return
			}

		case <-a.signal:
		}

		for req := a.dequeue(); req != nil; req = a.dequeue() {
			resp := a.serve(req)
			req.reply <- resp
			if req.op == opClose && resp.err == nil {
				return
			}
		}
		idle.Reset(a.registry.idle)
	}
}

func (a *actor) serve(req *request) response {
	if req.ctx.Err() != nil {
		return response{err: ErrCancelled}
	}

	if req.op == opClose {
		a.mu.Lock()
		a.closed = true
		a.mu.Unlock()
		return response{}
	}

	var (
		resp   response
		cursor = a.cursor
	)
	err := a.registry.manager.Transact(resource.Detach(req.ctx), func(ctx context.Context, tx *resource.Tx) error {
		snapshot, err := resource.Get[models.FileSnapshot](ctx, tx, a.target.SnapshotID)
		if err != nil {
			return err
		}
		resp, cursor, err = a.apply(ctx, tx, snapshot, req)
		return err
	})
	if err != nil {
		if req.ctx.Err() != nil {
			err = fmt.Errorf("%w: %w", ErrCancelled, err)
		}
		logger.FromContext(req.ctx).Err(err).Str("func", "*actor.serve").Str("stream", string(a.id)).Stringer("op", req.op).Msg("stream request failed")
		return response{err: err}
	}

	a.cursor = cursor
	return resp
}

// apply runs one request inside tx and returns the answer and the new cursor.
func (a *actor) apply(ctx context.Context, tx *resource.Tx, snapshot *resource.Resource[models.FileSnapshot], req *request) (response, int64, error) {
	b := a.registry.blocks
	file := a.target.File
	size := snapshot.Data().Size

	switch req.op {
	case opRead:
		data, err := b.ReadFile(ctx, tx, file, snapshot, a.cursor, req.length)
		if err != nil {
			return response{}, a.cursor, err
		}
		return response{data: data, n: int64(len(data))}, a.cursor + int64(len(data)), nil

	case opWrite:
		if !a.target.Writable {
			return response{}, a.cursor, ErrReadOnly
		}
		if err := b.WriteFile(ctx, tx, file, snapshot, a.cursor, req.data); err != nil {
			return response{}, a.cursor, err
		}
		n := int64(len(req.data))
		return response{n: n}, a.cursor + n, nil

	case opSeek:
		if req.position < 0 || req.position > size {
			return response{}, a.cursor, fmt.Errorf("%w: %d, length is %d", ErrSeekOutOfRange, req.position, size)
		}
		return response{n: req.position}, req.position, nil

	case opLength:
		return response{n: size}, a.cursor, nil

	case opSetLength:
		if !a.target.Writable {
			return response{}, a.cursor, ErrReadOnly
		}
		if req.position > size {
			return response{}, a.cursor, fmt.Errorf("%w: %d, length is %d", ErrExtendNotAllowed, req.position, size)
		}
		if err := b.Truncate(ctx, tx, file, snapshot, req.position); err != nil {
			return response{}, a.cursor, err
		}
		return response{n: req.position}, min(a.cursor, req.position), nil

	default:
		return response{}, a.cursor, fmt.Errorf("unknown stream op %s", req.op)
	}
}
