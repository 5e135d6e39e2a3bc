package dataset

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"sync"

	"github.com/hupe1980/isodata"
	"github.com/hupe1980/isodata/blobstore"
	"github.com/hupe1980/isodata/internal/compress"
)

// FromRows serves an in-memory dataset. Each call returns a fresh copy of
// the outer slice; rows themselves are shared.
func FromRows(rows [][]float64) isodata.DataSource {
	return func() ([][]float64, error) {
		return slices.Clone(rows), nil
	}
}

// FromReader parses r on first use and serves the cached rows afterwards.
func FromReader(r io.Reader, opts ...Option) isodata.DataSource {
	load := sync.OnceValues(func() ([][]float64, error) {
		return ParseDelimited(r, opts...)
	})
	return func() ([][]float64, error) {
		return load()
	}
}

// FromFile reads a local text file on every call, decompressing .zst and
// .lz4 files.
func FromFile(path string, opts ...Option) isodata.DataSource {
	store := blobstore.NewLocalStore(filepath.Dir(path))
	return FromBlob(context.Background(), store, filepath.Base(path), opts...)
}

// FromBlob reads a blob on every call, decompressing by name.
func FromBlob(ctx context.Context, store blobstore.BlobStore, name string, opts ...Option) isodata.DataSource {
	return func() ([][]float64, error) {
		rows, err := readBlob(ctx, store, name, opts)
		if err != nil {
			return nil, fmt.Errorf("dataset %s: %w", name, err)
		}
		return rows, nil
	}
}

func readBlob(ctx context.Context, store blobstore.BlobStore, name string, opts []Option) ([][]float64, error) {
	b, err := store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer b.Close()

	typ := compress.FromName(name)

	if m, ok := b.(blobstore.Mappable); ok {
		data, err := m.Bytes()
		if err != nil {
			return nil, err
		}
		data, err = compress.Decode(data, typ)
		if err != nil {
			return nil, err
		}
		return ParseDelimited(bytes.NewReader(data), opts...)
	}

	raw, err := blobstore.NewReader(ctx, b)
	if err != nil {
		return nil, err
	}
	defer raw.Close()

	r, err := compress.NewReader(raw, typ)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return ParseDelimited(r, opts...)
}
