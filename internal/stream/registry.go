// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package stream serializes byte-level I/O on open file handles.
//
// Every open handle is an actor: an unbounded FIFO of requests drained by a
// single goroutine. Requests on one handle run strictly in arrival order,
// each in its own short transaction against block storage. Handles on the
// same file do not coordinate with each other.
package stream

import (
	"context"
	"sync"
	"time"

	"github.com/MKhiriev/go-drive-keeper/internal/blocks"
	"github.com/MKhiriev/go-drive-keeper/internal/logger"
	"github.com/MKhiriev/go-drive-keeper/internal/resource"
	"github.com/MKhiriev/go-drive-keeper/internal/unlock"
	"github.com/MKhiriev/go-drive-keeper/internal/utils"
	"github.com/MKhiriev/go-drive-keeper/models"
)

// DefaultIdleTimeout closes handles without requests for this long.
const DefaultIdleTimeout = 5 * time.Minute

// ID is the opaque handle of an open stream.
type ID string

// IDGenerator produces stream handles.
type IDGenerator interface {
	Generate() string
}

// Target is what a stream reads and writes: one snapshot of one file.
type Target struct {
	File       unlock.File
	SnapshotID models.ID
	Writable   bool
}

// Registry maps stream handles to live actors.
type Registry struct {
	manager *resource.Manager
	blocks  *blocks.Storage
	idle    time.Duration
	ids     IDGenerator

	mu      sync.Mutex
	streams map[ID]*actor
	wg      sync.WaitGroup
}

// Option configures a [Registry].
type Option func(*Registry)

// WithIdleTimeout overrides [DefaultIdleTimeout].
func WithIdleTimeout(d time.Duration) Option {
	return func(r *Registry) {
		if d > 0 {
			r.idle = d
		}
	}
}

// WithIDGenerator overrides the UUID handle generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(r *Registry) { r.ids = g }
}

// NewRegistry returns an empty registry.
func NewRegistry(m *resource.Manager, b *blocks.Storage, opts ...Option) *Registry {
	r := &Registry{
		manager: m,
		blocks:  b,
		idle:    DefaultIdleTimeout,
		ids:     utils.NewUUIDGenerator(),
		streams: make(map[ID]*actor),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Open starts an actor for target and returns its handle. The cursor starts
// at position 0.
func (r *Registry) Open(ctx context.Context, target Target) (ID, error) {
	if err := ctx.Err(); err != nil {
		return "", ErrCancelled
	}

	a := &actor{
		id:       ID(r.ids.Generate()),
		registry: r,
		target:   target,
		log:      logger.FromContext(ctx).Component("stream"),
		signal:   make(chan struct{}, 1),
		stop:     make(chan struct{}),
	}

	r.mu.Lock()
	r.streams[a.id] = a
	r.mu.Unlock()

	r.wg.Add(1)
	go a.loop()

	a.log.Debug().Str("func", "*Registry.Open").Str("stream", string(a.id)).Stringer("snapshot", target.SnapshotID).Bool("writable", target.Writable).Msg("stream opened")
	return a.id, nil
}

// Read returns up to length bytes from the cursor and advances it. A short
// or empty result means the end of the snapshot was reached.
func (r *Registry) Read(ctx context.Context, id ID, length int64) ([]byte, error) {
	resp, err := r.call(ctx, id, &request{op: opRead, length: length})
	return resp.data, err
}

// Write writes data at the cursor and advances it.
func (r *Registry) Write(ctx context.Context, id ID, data []byte) error {
	_, err := r.call(ctx, id, &request{op: opWrite, data: data})
	return err
}

// Seek moves the cursor. Positions past the current length fail.
func (r *Registry) Seek(ctx context.Context, id ID, position int64) error {
	_, err := r.call(ctx, id, &request{op: opSeek, position: position})
	return err
}

// Length returns the current snapshot length.
func (r *Registry) Length(ctx context.Context, id ID) (int64, error) {
	resp, err := r.call(ctx, id, &request{op: opLength})
	return resp.n, err
}

// SetLength truncates the snapshot to n. Extending fails.
func (r *Registry) SetLength(ctx context.Context, id ID, n int64) error {
	_, err := r.call(ctx, id, &request{op: opSetLength, position: n})
	return err
}

// Close ends the stream after every request queued before it has run.
func (r *Registry) Close(ctx context.Context, id ID) error {
	_, err := r.call(ctx, id, &request{op: opClose})
	return err
}

// Discard stops the stream without waiting for queued requests. Unknown
// handles are ignored.
func (r *Registry) Discard(id ID) {
	a := r.lookup(id)
	if a == nil {
		return
	}
	r.unregister(a)
	a.halt()
}

// Len returns the number of live streams.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.streams)
}

// Shutdown stops every actor and waits for them to exit. Queued requests
// fail with [ErrStreamNotFound].
func (r *Registry) Shutdown() {
	r.mu.Lock()
	actors := make([]*actor, 0, len(r.streams))
	for _, a := range r.streams {
		actors = append(actors, a)
	}
	r.mu.Unlock()

	for _, a := range actors {
		a.halt()
	}
	r.wg.Wait()
}

func (r *Registry) lookup(id ID) *actor {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.streams[id]
}

func (r *Registry) unregister(a *actor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.streams[a.id] == a {
		delete(r.streams, a.id)
	}
}

// call queues req on the actor and waits for its answer or for ctx to end.
func (r *Registry) call(ctx context.Context, id ID, req *request) (response, error) {
	a := r.lookup(id)
	if a == nil {
		return response{}, ErrStreamNotFound
	}

	req.ctx = ctx
	req.reply = make(chan response, 1)
	if !a.enqueue(req) {
		return response{}, ErrStreamNotFound
	}

	select {
	case resp := <-req.reply:
		return resp, resp.err
	case <-ctx.Done():
		return response{}, ErrCancelled
	}
}
