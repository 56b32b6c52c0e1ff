// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package graphdb

import (
	"context"

	"golang.org/x/sync/semaphore"

	graphdlerr "github.com/sigil-dev/graphdl/pkg/errors"
)

// lockWeight is the semaphore size. A writer takes all of it, a reader one
// unit, so up to lockWeight readers share the lock.
const lockWeight = 1 << 20

// rwLock is a readers/writer lock whose acquisition honours ctx. The
// semaphore grants in FIFO order, so a waiting writer is not starved by a
// stream of readers.
type rwLock struct {
	sem *semaphore.Weighted
}

func newRWLock() *rwLock {
	return &rwLock{sem: semaphore.NewWeighted(lockWeight)}
}

func (l *rwLock) RLock(ctx context.Context) error {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return graphdlerr.Wrapf(err, graphdlerr.CodeStoreOperationTimeout, "acquiring read lock")
	}
	return nil
}

func (l *rwLock) RUnlock() { l.sem.Release(1) }

func (l *rwLock) Lock(ctx context.Context) error {
	if err := l.sem.Acquire(ctx, lockWeight); err != nil {
		return graphdlerr.Wrapf(err, graphdlerr.CodeStoreOperationTimeout, "acquiring write lock")
	}
	return nil
}

func (l *rwLock) Unlock() { l.sem.Release(lockWeight) }
