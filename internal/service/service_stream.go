// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-drive-keeper/internal/access"
	"github.com/MKhiriev/go-drive-keeper/internal/app"
	"github.com/MKhiriev/go-drive-keeper/internal/blocks"
	"github.com/MKhiriev/go-drive-keeper/internal/logger"
	"github.com/MKhiriev/go-drive-keeper/internal/resource"
	"github.com/MKhiriev/go-drive-keeper/internal/stream"
	"github.com/MKhiriev/go-drive-keeper/models"
)

type streamService struct {
	*Core

	logger *logger.Logger
}

func NewStreamService(core *Core, logger *logger.Logger) StreamService {
	return &streamService{Core: core, logger: logger}
}

// OpenStream opens a handle on one snapshot of a file content. A zero
// contentID selects the main content.
//
// With a zero snapshotID, readers get the latest snapshot and writers get a
// new snapshot derived from it, so readers of older snapshots never observe
// the writes. If the surrounding transaction aborts, the handle is discarded
// together with the snapshot created for it.
func (s *streamService) OpenStream(ctx context.Context, file *access.Result, contentID, snapshotID models.ID, forWriting bool) (stream.ID, error) {
	log := logger.FromContext(ctx)

	min := models.AccessRead
	if forWriting {
		min = models.AccessReadWrite
	}
	if err := requireLevel(file, min); err != nil {
		return "", app.Wrap(err)
	}

	var id stream.ID
	err := s.manager.Transact(ctx, func(ctx context.Context, tx *resource.Tx) error {
		snap, err := s.streamSnapshot(ctx, tx, file, contentID, snapshotID, forWriting)
		if err != nil {
			return err
		}

		opened, err := s.streams.Open(ctx, stream.Target{File: file.File, SnapshotID: snap.ID(), Writable: forWriting})
		if err != nil {
			return err
		}
		tx.OnAbort(func() { s.streams.Discard(opened) })
		id = opened
		return nil
	})
	if err != nil {
		log.Err(err).Str("func", "*streamService.OpenStream").Stringer("file", file.File.ID()).Bool("writing", forWriting).Msg("error opening stream")
		return "", app.Wrap(err)
	}
	return id, nil
}

func (s *streamService) streamSnapshot(ctx context.Context, tx *resource.Tx, file *access.Result, contentID, snapshotID models.ID, forWriting bool) (*resource.Resource[models.FileSnapshot], error) {
	content, err := s.content(ctx, tx, file.File, contentID)
	if err != nil {
		return nil, err
	}

	if !snapshotID.IsZero() {
		snap, err := resource.Get[models.FileSnapshot](ctx, tx, snapshotID)
		if err != nil {
			return nil, err
		}
		if snap.Data().ContentID != content.ID() {
			return nil, fmt.Errorf("%w: snapshot %s", blocks.ErrSnapshotMismatch, snapshotID)
		}
		return snap, nil
	}

	latest := content.Data().LatestSnapshotID

	if forWriting {
		return s.snapshotFrom(ctx, tx, file, content.ID(), latest)
	}
	if latest.IsZero() {
		return nil, ErrNoSnapshot
	}
	return resource.Get[models.FileSnapshot](ctx, tx, latest)
}

func (s *streamService) Read(ctx context.Context, id stream.ID, length int64) ([]byte, error) {
	data, err := s.streams.Read(ctx, id, length)
	return data, app.Wrap(err)
}

func (s *streamService) Write(ctx context.Context, id stream.ID, data []byte) error {
	return app.Wrap(s.streams.Write(ctx, id, data))
}

func (s *streamService) Seek(ctx context.Context, id stream.ID, position int64) error {
	return app.Wrap(s.streams.Seek(ctx, id, position))
}

func (s *streamService) Length(ctx context.Context, id stream.ID) (int64, error) {
	n, err := s.streams.Length(ctx, id)
	return n, app.Wrap(err)
}

func (s *streamService) SetLength(ctx context.Context, id stream.ID, length int64) error {
	return app.Wrap(s.streams.SetLength(ctx, id, length))
}

func (s *streamService) Close(ctx context.Context, id stream.ID) error {
	return app.Wrap(s.streams.Close(ctx, id))
}
