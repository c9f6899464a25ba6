package normalizer

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"

	"github.com/baditaflorin/go_subs_normalize/internal/pool"
	"github.com/baditaflorin/go_subs_normalize/internal/ports"
)

// FoldNormalizer builds matching keys for denylist lookups: NFKC, width
// folding and Unicode case folding, so ＣｌｏｕｄＦｌａｒｅ and cloudflare
// produce the same key. Keys are never written back to the text.
type FoldNormalizer struct {
	// Pre-computed lowercase table for ASCII characters (0-127)
	asciiTable [128]byte

	bytePool  *pool.BufferPool
	chainPool *pool.TransformerPool
}

// NewFoldNormalizer creates a new folding normalizer
func NewFoldNormalizer() ports.Normalizer {
	n := &FoldNormalizer{
		bytePool: pool.NewBufferPool(256),
		chainPool: pool.NewTransformerPool(func() transform.Transformer {
			return transform.Chain(norm.NFKC, width.Fold, cases.Fold())
		}),
	}
	for i := 0; i < 128; i++ {
		b := byte(i)
		if b >= 'A' && b <= 'Z' {
			b += 'a' - 'A'
		}
		n.asciiTable[i] = b
	}
	return n
}

// Normalize returns the matching key of text
func (n *FoldNormalizer) Normalize(text string) string {
	if len(text) == 0 {
		return ""
	}

	asciiOnly := true
	for i := 0; i < len(text); i++ {
		if text[i] >= 128 {
			asciiOnly = false
			break
		}
	}

	if asciiOnly {
		buffer := n.bytePool.Get()
		defer n.bytePool.Put(buffer)
		for i := 0; i < len(text); i++ {
			*buffer = append(*buffer, n.asciiTable[text[i]])
		}
		return string(*buffer)
	}

	t := n.chainPool.Get()
	defer n.chainPool.Put(t)
	folded, _, err := transform.String(t, text)
	if err != nil {
		return text
	}
	return folded
}
