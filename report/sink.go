package report

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/hupe1980/isodata"
	"github.com/hupe1980/isodata/blobstore"
	"github.com/hupe1980/isodata/internal/compress"
)

// ToWriter returns a sink that renders each result to w.
func ToWriter(w io.Writer, f Format) isodata.Sink {
	return isodata.SinkFunc(func(_ context.Context, r *isodata.Result) error {
		return Write(w, r, f)
	})
}

// ToBlob returns a sink that streams each result into the named blob,
// compressing it when the name ends in .zst or .lz4.
func ToBlob(store blobstore.BlobStore, name string, f Format) isodata.Sink {
	return isodata.SinkFunc(func(ctx context.Context, r *isodata.Result) error {
		if err := writeBlob(ctx, store, name, r, f); err != nil {
			return fmt.Errorf("report %s: %w", name, err)
		}
		return nil
	})
}

type aborter interface {
	Abort() error
}

func writeBlob(ctx context.Context, store blobstore.BlobStore, name string, r *isodata.Result, f Format) (err error) {
	blob, err := store.Create(ctx, name)
	if err != nil {
		return err
	}
	defer func() {
		if err == nil {
			err = blob.Close()
			return
		}
		if a, ok := blob.(aborter); ok {
			_ = a.Abort()
		} else {
			_ = blob.Close()
		}
	}()

	cw, err := compress.NewWriter(blob, compress.FromName(name))
	if err != nil {
		return err
	}
	if err := Write(cw, r, f); err != nil {
		_ = cw.Close()
		return err
	}
	return cw.Close()
}

// Tee returns a sink that passes each result to every sink in order and
// joins their errors.
func Tee(sinks ...isodata.Sink) isodata.Sink {
	return isodata.SinkFunc(func(ctx context.Context, r *isodata.Result) error {
		var errs []error
		for _, s := range sinks {
			if s == nil {
				continue
			}
			if err := s.WriteResult(ctx, r); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})
}
