// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package store

import (
	"context"
	"log/slog"

	graphdlerr "github.com/sigil-dev/graphdl/pkg/errors"
)

// Apply writes muts to b as one logical unit. Backends implementing Atomic
// apply them natively. Otherwise mutations are applied in order and, if one
// fails or ctx ends part way, the ones already applied are reverted from the
// values read before each write.
func Apply(ctx context.Context, b Backend, muts []Mutation, logger *slog.Logger) error {
	if len(muts) == 0 {
		return nil
	}
	if err := graphdlerr.FromContext(ctx, "applying mutations"); err != nil {
		return err
	}
	if a, ok := b.(Atomic); ok {
		return graphdlerr.Backend(a.ApplyAtomic(ctx, muts), "applying %d mutations", len(muts))
	}
	if logger == nil {
		logger = slog.Default()
	}

	undo := make([]Mutation, 0, len(muts))
	for _, m := range muts {
		if err := graphdlerr.FromContext(ctx, "applying mutations"); err != nil {
			revert(b, undo, logger)
			return err
		}

		prev, err := b.Get(ctx, m.Key)
		switch {
		case err == nil:
			undo = append(undo, PutMutation(m.Key, prev))
		case graphdlerr.IsNotFound(err):
			undo = append(undo, DeleteMutation(m.Key))
		default:
			revert(b, undo, logger)
			return graphdlerr.Backend(err, "reading %s before write", m.Key)
		}

		if m.Delete {
			err = b.Delete(ctx, m.Key)
		} else {
			err = b.Put(ctx, m.Key, m.Value)
		}
		if err != nil {
			revert(b, undo, logger)
			return graphdlerr.Backend(err, "writing %s", m.Key)
		}
	}
	return nil
}

// revert undoes applied mutations in reverse order. It runs detached from the
// caller's context so a cancelled request still gets cleaned up.
func revert(b Backend, undo []Mutation, logger *slog.Logger) {
	ctx := context.Background()
	for i := len(undo) - 1; i >= 0; i-- {
		m := undo[i]
		var err error
		if m.Delete {
			err = b.Delete(ctx, m.Key)
		} else {
			err = b.Put(ctx, m.Key, m.Value)
		}
		if err != nil {
			logger.Error("failed to revert mutation",
				slog.String("key", m.Key),
				slog.Bool("delete", m.Delete),
				slog.String("error", err.Error()),
			)
		}
	}
}
