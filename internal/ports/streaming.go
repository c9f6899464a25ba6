package ports

import (
	"context"
	"io"
)

// StreamProcessor normalizes a stream line by line, writing every line
// (terminator included) to the writer.
type StreamProcessor interface {
	ProcessStream(ctx context.Context, reader io.Reader, writer io.Writer) (StreamStats, error)
}

// StreamStats describes a completed stream run.
type StreamStats struct {
	Lines          int
	BytesProcessed int64
	BytesWritten   int64
	RuleHits       map[string]int
}
