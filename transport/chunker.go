package transport

import "io"

// ChunkReader is an io.Reader wrapper returning at most Max bytes per Read.
//
// Decoders must produce the same events however their input is sliced;
// ChunkReader makes a source deliver arbitrarily small chunks.
type ChunkReader struct {
	src io.Reader
	max int
}

// NewChunkReader returns a ChunkReader reading from src. A max below one
// is treated as one.
func NewChunkReader(src io.Reader, max int) *ChunkReader {
	if max < 1 {
		max = 1
	}
	return &ChunkReader{src: src, max: max}
}

func (cr *ChunkReader) Read(p []byte) (n int, err error) {
	if len(p) > cr.max {
		p = p[:cr.max]
	}
	return cr.src.Read(p)
}
