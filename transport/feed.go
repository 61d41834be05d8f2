package transport

import (
	"context"
	"io"

	"github.com/andaru/featurestream/stream"
	"github.com/golang/glog"
	"github.com/pkg/errors"
)

const (
	defaultBufferSize = 32 * 1024
	minBufferSize     = 16
)

type feedConfig struct {
	bufsize int
	onChunk func([]byte)
}

// Option is an option function for Feed
type Option func(*feedConfig)

// WithBufferSize sets the read buffer size, and so the largest chunk
// pushed. Size has a floor of 16 bytes.
func WithBufferSize(size int) Option {
	return func(c *feedConfig) {
		if size < minBufferSize {
			size = minBufferSize
		}
		c.bufsize = size
	}
}

// WithChunkCallback sets a function called with every chunk before it is
// pushed. The chunk must not be retained.
func WithChunkCallback(fn func(chunk []byte)) Option {
	return func(c *feedConfig) { c.onChunk = fn }
}

// Feed reads src until io.EOF, pushing every chunk read to f, and finishes
// f. It returns the number of bytes pushed.
//
// ctx is checked between reads. Once it is done, f is finished to release
// its buffers, with the error discarded, and the context error returned.
// A Read blocking forever is not interrupted; close src for that.
func Feed(ctx context.Context, f stream.Feeder, src io.Reader, opts ...Option) (n int64, err error) {
	cfg := feedConfig{bufsize: defaultBufferSize}
	for _, opt := range opts {
		opt(&cfg)
	}
	buf := make([]byte, cfg.bufsize)
	for {
		if err = ctx.Err(); err != nil {
			if finErr := f.Finish(); finErr != nil {
				glog.V(2).Infof("transport: finish after cancel: %v", finErr)
			}
			return n, errors.WithStack(err)
		}
		read, rerr := src.Read(buf)
		if read > 0 {
			if cfg.onChunk != nil {
				cfg.onChunk(buf[:read])
			}
			if err = f.Push(buf[:read]); err != nil {
				return n, err
			}
			n += int64(read)
		}
		switch {
		case rerr == io.EOF:
			glog.V(2).Infof("transport: fed %d bytes", n)
			return n, f.Finish()
		case rerr != nil:
			return n, errors.Wrap(rerr, "transport read")
		}
	}
}
