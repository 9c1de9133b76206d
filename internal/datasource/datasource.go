// Package datasource defines where pipeline bytes come from and go to.
package datasource

import (
	"context"
	"io"
)

// Source yields the raw bytes of one input dataset.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

// Sink receives one output artifact. The artifact becomes visible only when
// the returned writer is closed without error.
type Sink interface {
	Create(ctx context.Context) (io.WriteCloser, error)
}
