package iodoc

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

// CompressedWriter wraps w with a zstd encoder at the given level, for the
// CLI's -Z flag (design doc Section 6.1). level must be in [1, 22] — the
// conventional zstd level space, which is the reason zstd (rather than
// gzip or flate) is the compressor this level range implies. The caller
// must Close the returned writer to flush the trailing frame.
func CompressedWriter(w io.Writer, level int) (io.WriteCloser, error) {
	if level < 1 || level > 22 {
		return nil, fmt.Errorf("iodoc: compression level %d out of range [1, 22]", level)
	}
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
	if err != nil {
		return nil, fmt.Errorf("iodoc: new zstd writer: %w", err)
	}
	return enc, nil
}
