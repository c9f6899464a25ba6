// Package subsnormalize normalizes node names in proxy subscription lists.
//
// The package level functions use a shared Normalizer built with the
// default rules:
//
//	out := subsnormalize.Normalize(`  - {name: "CloudFlare-Pro|1|5.8MB/s", type: ss}`)
//	// out == `  - {name: "节点", type: ss}`
//
// Use New with options for custom thresholds, denylists or logging.
package subsnormalize

import (
	"context"
	"sync"

	"github.com/baditaflorin/go_subs_normalize/internal/adapters/logger"
	"github.com/baditaflorin/go_subs_normalize/pkg/subsnorm"
)

// Normalizer is the configurable normalizer.
type Normalizer = subsnorm.Normalizer

// Option configures a Normalizer.
type Option = subsnorm.Option

// FileResult is the outcome of fixing one file.
type FileResult = subsnorm.FileResult

// Re-exported options.
var (
	WithThreshold         = subsnorm.WithThreshold
	WithPlaceholder       = subsnorm.WithPlaceholder
	WithReturnPlaceholder = subsnorm.WithReturnPlaceholder
	WithDedup             = subsnorm.WithDedup
	WithSimplifyTokens    = subsnorm.WithSimplifyTokens
	WithStripTokens       = subsnorm.WithStripTokens
	WithReturnTokens      = subsnorm.WithReturnTokens
	WithSymbols           = subsnorm.WithSymbols
	WithVerifyYAML        = subsnorm.WithVerifyYAML
	WithWorkers           = subsnorm.WithWorkers
	WithLogger            = subsnorm.WithLogger
)

var (
	defaultOnce       sync.Once
	defaultNormalizer *Normalizer
	defaultErr        error
)

// New creates a Normalizer with the given options.
func New(opts ...Option) (*Normalizer, error) {
	return subsnorm.New(opts...)
}

func shared() (*Normalizer, error) {
	defaultOnce.Do(func() {
		defaultNormalizer, defaultErr = subsnorm.New(
			subsnorm.WithPortsLogger(logger.NewNopLogger()),
		)
	})
	return defaultNormalizer, defaultErr
}

// Normalize returns text with the default rules applied. If the default
// Normalizer cannot be built the text is returned unchanged.
func Normalize(text string) string {
	n, err := shared()
	if err != nil {
		return text
	}
	return n.Normalize(text)
}

// FixFile normalizes the file at path in place with the default rules.
func FixFile(ctx context.Context, path string) (FileResult, error) {
	n, err := shared()
	if err != nil {
		return FileResult{Path: path, Err: err}, err
	}
	return n.FixFile(ctx, path)
}
