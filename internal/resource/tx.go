// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package resource

import (
	"context"

	"github.com/MKhiriev/go-drive-keeper/internal/logger"
	"github.com/MKhiriev/go-drive-keeper/internal/store"
)

type txKey struct{}

// Tx is one resource transaction: a store transaction plus the undo log of
// in-memory changes. A Tx must only be used by the goroutine running the
// Transact body that received it.
type Tx struct {
	manager  *Manager
	stx      store.Tx
	undo     []func()
	finished bool
}

// TxFromContext returns the transaction carried by ctx, or nil.
func TxFromContext(ctx context.Context) *Tx {
	tx, _ := ctx.Value(txKey{}).(*Tx)
	return tx
}

func withTx(ctx context.Context, tx *Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// Detach returns a ctx that keeps the values and cancellation of ctx but no
// longer carries a transaction, so Transact starts a fresh one. Work handed
// to another goroutine must be detached.
func Detach(ctx context.Context) context.Context {
	return context.WithValue(ctx, txKey{}, (*Tx)(nil))
}

// OnAbort registers fn to run when the transaction fails. Closures run in
// reverse registration order after the store transaction is rolled back.
func (tx *Tx) OnAbort(fn func()) {
	tx.undo = append(tx.undo, fn)
}

// Store exposes the underlying store transaction.
func (tx *Tx) Store() store.Tx {
	return tx.stx
}

func (tx *Tx) abort(ctx context.Context) {
	if tx.finished {
		return
	}
	if err := tx.stx.Rollback(); err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*Tx.abort").Msg("error rolling back store transaction")
	}
	tx.replayUndo()
}

func (tx *Tx) replayUndo() {
	tx.finished = true
	for i := len(tx.undo) - 1; i >= 0; i-- {
		tx.undo[i]()
	}
	tx.undo = nil
}
