// Package subsnorm normalizes proxy subscription lists: it decodes Unicode
// escapes, collapses flag emoji into a country marker and rewrites noisy
// name/ps values (provider names, addresses, domains, rate tokens,
// decorative symbols) into a placeholder.
package subsnorm

import (
	"context"
	"io"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/baditaflorin/go_subs_normalize/internal/adapters/logger"
	"github.com/baditaflorin/go_subs_normalize/internal/adapters/normalizer"
	"github.com/baditaflorin/go_subs_normalize/internal/adapters/store"
	"github.com/baditaflorin/go_subs_normalize/internal/adapters/stream/lineprocessor"
	"github.com/baditaflorin/go_subs_normalize/internal/adapters/verify"
	"github.com/baditaflorin/go_subs_normalize/internal/core/domain"
	"github.com/baditaflorin/go_subs_normalize/internal/core/pipeline"
	"github.com/baditaflorin/go_subs_normalize/internal/core/rules"
	"github.com/baditaflorin/go_subs_normalize/internal/ports"
	"github.com/baditaflorin/l"
)

// DefaultWorkers is the number of files fixed concurrently by FixFiles.
const DefaultWorkers = 4

// Normalizer rewrites subscription text and files.
type Normalizer struct {
	engine     *pipeline.Engine
	stream     *lineprocessor.Processor
	store      ports.FileStore
	logger     ports.Logger
	verifyYAML bool
	workers    int
}

// Option defines a functional option for configuring the Normalizer.
type Option func(*normalizerConfig)

type normalizerConfig struct {
	Rules      rules.Options
	Logger     ports.Logger
	Store      ports.FileStore
	VerifyYAML bool
	Workers    int
}

// WithThreshold sets the rune length above which a value is simplified.
func WithThreshold(n int) Option {
	return func(cfg *normalizerConfig) {
		cfg.Rules.Threshold = n
	}
}

// WithPlaceholder sets the value used for simplified names.
func WithPlaceholder(p string) Option {
	return func(cfg *normalizerConfig) {
		cfg.Rules.Placeholder = p
	}
}

// WithReturnPlaceholder sets the value used for return-route names.
func WithReturnPlaceholder(p string) Option {
	return func(cfg *normalizerConfig) {
		cfg.Rules.ReturnPlaceholder = p
	}
}

// WithDedup enables or disables the _N uniqueness suffixes.
func WithDedup(enabled bool) Option {
	return func(cfg *normalizerConfig) {
		cfg.Rules.Dedup = enabled
	}
}

// WithSimplifyTokens replaces the tokens that trigger simplification.
func WithSimplifyTokens(tokens ...string) Option {
	return func(cfg *normalizerConfig) {
		cfg.Rules.SimplifyTokens = tokens
	}
}

// WithStripTokens replaces the provider tokens that trigger stripping.
func WithStripTokens(tokens ...string) Option {
	return func(cfg *normalizerConfig) {
		cfg.Rules.StripTokens = tokens
	}
}

// WithReturnTokens replaces the tokens mapped to the return placeholder.
func WithReturnTokens(tokens ...string) Option {
	return func(cfg *normalizerConfig) {
		cfg.Rules.ReturnTokens = tokens
	}
}

// WithSymbols replaces the set of decorative symbols.
func WithSymbols(symbols string) Option {
	return func(cfg *normalizerConfig) {
		cfg.Rules.Symbols = symbols
	}
}

// WithRuleOptions replaces the whole rule configuration.
func WithRuleOptions(opts rules.Options) Option {
	return func(cfg *normalizerConfig) {
		cfg.Rules = opts
	}
}

// WithVerifyYAML refuses to write output that no longer parses as YAML
// when the input did.
func WithVerifyYAML(enabled bool) Option {
	return func(cfg *normalizerConfig) {
		cfg.VerifyYAML = enabled
	}
}

// WithWorkers sets how many files FixFiles processes at once.
func WithWorkers(n int) Option {
	return func(cfg *normalizerConfig) {
		cfg.Workers = n
	}
}

// WithLogger sets a custom l.Logger.
func WithLogger(lg l.Logger) Option {
	return func(cfg *normalizerConfig) {
		cfg.Logger = logger.FromExisting(lg)
	}
}

// WithPortsLogger sets a logger implementing ports.Logger.
func WithPortsLogger(lg ports.Logger) Option {
	return func(cfg *normalizerConfig) {
		cfg.Logger = lg
	}
}

// WithStore sets the file store used by FixFile.
func WithStore(s ports.FileStore) Option {
	return func(cfg *normalizerConfig) {
		cfg.Store = s
	}
}

// New creates a new Normalizer.
func New(opts ...Option) (*Normalizer, error) {
	config := &normalizerConfig{
		Rules:   rules.DefaultOptions(),
		Workers: DefaultWorkers,
	}
	for _, opt := range opts {
		opt(config)
	}

	if config.Logger == nil {
		var err error
		config.Logger, err = logger.New(logger.Options{Level: "warn", Format: "text"})
		if err != nil {
			return nil, err
		}
	}
	if config.Store == nil {
		config.Store = store.NewFS(false)
	}
	if config.Workers < 1 {
		config.Workers = 1
	}

	list, err := rules.Build(config.Rules, normalizer.NewFoldNormalizer())
	if err != nil {
		return nil, err
	}
	engine, err := pipeline.NewEngine(pipeline.EngineConfig{Rules: list}, config.Logger)
	if err != nil {
		return nil, err
	}

	return &Normalizer{
		engine:     engine,
		stream:     lineprocessor.NewProcessor(config.Logger, engine, lineprocessor.ProcessingConfig{}),
		store:      config.Store,
		logger:     config.Logger,
		verifyYAML: config.VerifyYAML,
		workers:    config.Workers,
	}, nil
}

// Normalize returns the normalized text.
func (n *Normalizer) Normalize(text string) string {
	return n.engine.Normalize(text)
}

// Run normalizes text and returns the full result with rule diagnostics.
func (n *Normalizer) Run(ctx context.Context, text string) domain.Result {
	return n.engine.Run(ctx, text)
}

// Stream normalizes reader into writer line by line.
func (n *Normalizer) Stream(ctx context.Context, reader io.Reader, writer io.Writer) (ports.StreamStats, error) {
	return n.stream.ProcessStream(ctx, reader, writer)
}

// Engine exposes the rule engine.
func (n *Normalizer) Engine() *pipeline.Engine {
	return n.engine
}

// Close releases the logger.
func (n *Normalizer) Close() error {
	return n.logger.Close()
}

// FileResult is the outcome of fixing one file.
type FileResult struct {
	Path    string
	Result  domain.Result
	Written bool
	Err     error
}

// FixFile normalizes the file at path in place. The file is only written
// after the whole transform succeeded, and not at all when nothing changed.
func (n *Normalizer) FixFile(ctx context.Context, path string) (FileResult, error) {
	fr := FileResult{Path: path}
	start := time.Now()

	data, perm, err := n.store.Read(path)
	if err != nil {
		fr.Err = &domain.FileError{Op: "read", Path: path, Err: err}
		return fr, fr.Err
	}
	if err := ctx.Err(); err != nil {
		fr.Err = &domain.FileError{Op: "normalize", Path: path, Err: err}
		return fr, fr.Err
	}

	fr.Result = n.engine.Run(ctx, string(data))
	if !fr.Result.Changed {
		n.logger.Debug("File already normalized", "path", path)
		return fr, nil
	}

	output := []byte(fr.Result.Output)
	if n.verifyYAML {
		if err := verify.YAML(data, output); err != nil {
			fr.Err = &domain.FileError{Op: "verify", Path: path, Err: err}
			return fr, fr.Err
		}
	}

	if err := n.store.Write(path, output, perm); err != nil {
		fr.Err = &domain.FileError{Op: "write", Path: path, Err: err}
		return fr, fr.Err
	}
	fr.Written = true

	n.logger.Info("File normalized",
		"path", path,
		"rule_hits", fr.Result.Hits(),
		"decode_failures", fr.Result.DecodeFailures,
		"duration", time.Since(start),
	)
	return fr, nil
}

// FixFiles fixes every path, up to the configured number at once. A failing
// file does not stop the others; results keep the order of paths.
func (n *Normalizer) FixFiles(ctx context.Context, paths []string) []FileResult {
	results := make([]FileResult, len(paths))

	var g errgroup.Group
	g.SetLimit(n.workers)
	for i, path := range paths {
		g.Go(func() error {
			fr, err := n.FixFile(ctx, path)
			if err != nil {
				n.logger.Error("Failed to normalize file", "path", path, "error", err)
			}
			results[i] = fr
			return nil
		})
	}
	_ = g.Wait()

	return results
}
