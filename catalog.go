package strtab

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/hupe1980/strtab/blobstore"
)

// CurrentName is the blob that names the published table.
const CurrentName = "CURRENT"

// TablesPrefix is the directory Publish writes numbered tables to.
const TablesPrefix = "tables/"

const (
	tableSuffix     = ".strtab"
	publishAttempts = 8
)

// ErrNoCurrent is returned by OpenCurrent when nothing was published yet.
var ErrNoCurrent = errors.New("strtab: no published table")

// TableName returns the blob name Publish uses for sequence number seq.
func TableName(seq uint64) string {
	return fmt.Sprintf("%s%06d%s", TablesPrefix, seq, tableSuffix)
}

func parseTableName(name string) (uint64, bool) {
	s, ok := strings.CutPrefix(name, TablesPrefix)
	if !ok {
		return 0, false
	}
	s, ok = strings.CutSuffix(s, tableSuffix)
	if !ok {
		return 0, false
	}
	seq, err := strconv.ParseUint(s, 10, 64)
	return seq, err == nil
}

// Published lists the sequence numbers of the tables under TablesPrefix in
// ascending order.
func Published(ctx context.Context, store blobstore.BlobStore) ([]uint64, error) {
	names, err := store.List(ctx, TablesPrefix)
	if err != nil {
		return nil, err
	}
	var seqs []uint64
	for _, name := range names {
		if seq, ok := parseTableName(name); ok {
			seqs = append(seqs, seq)
		}
	}
	// Names sort numerically only up to six digits.
	slices.Sort(seqs)
	return seqs, nil
}

// Publish writes t as the next numbered table and then points CURRENT at it.
// Readers using OpenCurrent see either the previous table or t.
//
// On a blobstore.ConditionalStore the table write never replaces an existing
// blob: a concurrent publisher that took the same sequence number makes
// Publish retry with the next one. The CURRENT update is a plain Put unless
// the store commits it atomically (s3.DDBCommitStore).
func Publish(ctx context.Context, store blobstore.BlobStore, t *Table, optFns ...SaveOption) (string, error) {
	o := applySaveOptions(optFns)

	seqs, err := Published(ctx, store)
	if err != nil {
		return "", err
	}
	next := uint64(1)
	if len(seqs) > 0 {
		next = seqs[len(seqs)-1] + 1
	}

	cs, conditional := store.(blobstore.ConditionalStore)

	var name string
	for attempt := range publishAttempts {
		name = TableName(next + uint64(attempt))
		if !conditional {
			err = saveBlob(ctx, store.Put, name, t, o)
			break
		}
		err = saveBlob(ctx, cs.PutIfNotExists, name, t, o)
		if !errors.Is(err, blobstore.ErrExists) {
			break
		}
	}
	if err != nil {
		return "", err
	}

	err = store.Put(ctx, CurrentName, []byte(name))
	o.Logger.LogCommit(ctx, name, err)
	if err != nil {
		return "", err
	}
	return name, nil
}

// OpenCurrent loads the table CURRENT points at.
func OpenCurrent(ctx context.Context, store blobstore.BlobStore, optFns ...Option) (*Table, error) {
	name, err := readCurrent(ctx, store)
	if err != nil {
		return nil, err
	}
	return LoadBlob(ctx, store, name, optFns...)
}

func readCurrent(ctx context.Context, store blobstore.BlobStore) (string, error) {
	b, err := store.Open(ctx, CurrentName)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return "", fmt.Errorf("%w: %w", ErrNoCurrent, err)
		}
		return "", err
	}
	data, err := blobstore.ReadAll(ctx, b)
	name := strings.TrimSpace(string(data))
	if err = errors.Join(err, b.Close()); err != nil {
		return "", err
	}
	if _, ok := parseTableName(name); !ok {
		return "", fmt.Errorf("strtab: CURRENT names %q, not a published table", name)
	}
	return name, nil
}

// Prune deletes published tables except the newest keep and the one CURRENT
// points at, and returns the deleted names. Tables already loaded stay
// valid, but a reader that read CURRENT before a newer Publish may find its
// table gone.
func Prune(ctx context.Context, store blobstore.BlobStore, keep int) ([]string, error) {
	seqs, err := Published(ctx, store)
	if err != nil {
		return nil, err
	}
	current, err := readCurrent(ctx, store)
	if err != nil && !errors.Is(err, ErrNoCurrent) {
		return nil, err
	}

	var deleted []string
	for _, seq := range seqs[:max(len(seqs)-max(keep, 0), 0)] {
		name := TableName(seq)
		if name == current {
			continue
		}
		if err := store.Delete(ctx, name); err != nil {
			return deleted, err
		}
		deleted = append(deleted, name)
	}
	return deleted, nil
}
