package lineprocessor

import (
	"bufio"
	"context"
	"io"
	"time"

	"github.com/baditaflorin/go_subs_normalize/internal/core/domain"
	"github.com/baditaflorin/go_subs_normalize/internal/ports"
)

// Constants for line processing
const (
	// DefaultChunkSize defines the default read buffer size
	DefaultChunkSize = 64 * 1024 // 64KB

	// ContextCheckFrequency defines how often to check for context cancellation
	ContextCheckFrequency = 500 // lines
)

// Processor normalizes a stream one line at a time. Every rule of the
// pipeline is line-local, so running the rules per line with one shared
// State gives the same output as running them over the whole buffer.
type Processor struct {
	logger      ports.Logger
	transformer ports.TextTransformer
	chunkSize   int
}

// ProcessingConfig defines configuration for line processing
type ProcessingConfig struct {
	ChunkSize int
}

// NewProcessor creates a new line processor
func NewProcessor(
	logger ports.Logger,
	transformer ports.TextTransformer,
	config ProcessingConfig,
) *Processor {
	if config.ChunkSize <= 0 {
		config.ChunkSize = DefaultChunkSize
	}

	return &Processor{
		logger:      logger,
		transformer: transformer,
		chunkSize:   config.ChunkSize,
	}
}

var _ ports.StreamProcessor = (*Processor)(nil)

// ProcessStream reads reader line by line, normalizes each line and writes
// it with its original terminator.
func (p *Processor) ProcessStream(
	ctx context.Context,
	reader io.Reader,
	writer io.Writer,
) (ports.StreamStats, error) {
	startTime := time.Now()
	state := domain.NewState()
	stats := ports.StreamStats{RuleHits: make(map[string]int)}

	br := bufio.NewReaderSize(reader, p.chunkSize)
	bw := bufio.NewWriterSize(writer, p.chunkSize)
	contextCheckCounter := 0

	for {
		contextCheckCounter++
		if contextCheckCounter >= ContextCheckFrequency {
			select {
			case <-ctx.Done():
				p.logger.Warn("Processing cancelled by context", "error", ctx.Err())
				bw.Flush()
				return stats, ctx.Err()
			default:
			}
			contextCheckCounter = 0
		}

		line, err := br.ReadString('\n')
		if len(line) > 0 {
			stats.Lines++
			stats.BytesProcessed += int64(len(line))

			result := p.transformer.Transform(line, state)
			for name, n := range result.RuleHits {
				stats.RuleHits[name] += n
			}
			n, werr := bw.WriteString(result.Output)
			stats.BytesWritten += int64(n)
			if werr != nil {
				return stats, werr
			}
		}

		if err != nil {
			if err != io.EOF {
				p.logger.Warn("Error reading from input", "error", err)
				bw.Flush()
				return stats, err
			}
			break
		}
	}

	if err := bw.Flush(); err != nil {
		return stats, err
	}

	p.logger.Debug("Line processing completed",
		"lines", stats.Lines,
		"bytes_processed", stats.BytesProcessed,
		"duration", time.Since(startTime),
	)
	return stats, nil
}
