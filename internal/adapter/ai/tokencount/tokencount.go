// Package tokencount counts and bounds the tokens of text sent to the
// embedding model, using tiktoken-go with the offline BPE loader.
package tokencount

import (
	"log/slog"
	"strings"
	"sync"

	tiktoken "github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

func init() {
	tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
}

// fallbackEncoding is used by OpenAI's current embedding and chat models.
const fallbackEncoding = "cl100k_base"

// Counter provides thread-safe token counting per model.
type Counter struct {
	encodingCache map[string]*tiktoken.Tiktoken
	mu            sync.RWMutex
}

// NewCounter creates a new token counter instance.
func NewCounter() *Counter {
	return &Counter{
		encodingCache: make(map[string]*tiktoken.Tiktoken),
	}
}

// DefaultCounter is shared by Truncators built without an explicit counter.
var DefaultCounter = NewCounter()

func (c *Counter) getEncodingForModel(model string) (*tiktoken.Tiktoken, error) {
	normalized := normalizeModelName(model)

	c.mu.RLock()
	if enc, ok := c.encodingCache[normalized]; ok {
		c.mu.RUnlock()
		return enc, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if enc, ok := c.encodingCache[normalized]; ok {
		return enc, nil
	}

	enc, err := tiktoken.EncodingForModel(normalized)
	if err != nil {
		slog.Debug("falling back to cl100k_base encoding",
			slog.String("model", model),
			slog.String("normalized", normalized),
			slog.Any("error", err))
		enc, err = tiktoken.GetEncoding(fallbackEncoding)
		if err != nil {
			return nil, err
		}
	}
	c.encodingCache[normalized] = enc
	return enc, nil
}

// normalizeModelName strips provider prefixes such as "openai/".
func normalizeModelName(model string) string {
	model = strings.ToLower(strings.TrimSpace(model))
	if i := strings.LastIndex(model, "/"); i >= 0 {
		model = model[i+1:]
	}
	if model == "" {
		return "text-embedding-ada-002"
	}
	return model
}

// CountTokens counts the tokens of text under model's encoding.
func (c *Counter) CountTokens(text, model string) (int, error) {
	enc, err := c.getEncodingForModel(model)
	if err != nil {
		return 0, err
	}
	return len(enc.Encode(text, nil, nil)), nil
}

// Truncate cuts text to at most maxTokens tokens. The bool reports whether it was cut.
// maxTokens <= 0 disables the limit.
func (c *Counter) Truncate(text, model string, maxTokens int) (string, bool, error) {
	if maxTokens <= 0 || text == "" {
		return text, false, nil
	}
	enc, err := c.getEncodingForModel(model)
	if err != nil {
		return text, false, err
	}
	tokens := enc.Encode(text, nil, nil)
	if len(tokens) <= maxTokens {
		return text, false, nil
	}
	return enc.Decode(tokens[:maxTokens]), true, nil
}

// Truncator bounds query and job text to the embedding model's input limit.
type Truncator struct {
	Counter   *Counter
	Model     string
	MaxTokens int
}

// NewTruncator returns a Truncator over DefaultCounter.
func NewTruncator(model string, maxTokens int) Truncator {
	return Truncator{Counter: DefaultCounter, Model: model, MaxTokens: maxTokens}
}

// Truncate implements the retriever's truncation hook. If the encoding is
// unavailable it falls back to roughly four characters per token.
func (t Truncator) Truncate(text string) string {
	c := t.Counter
	if c == nil {
		c = DefaultCounter
	}
	out, cut, err := c.Truncate(text, t.Model, t.MaxTokens)
	if err != nil {
		slog.Warn("token truncation failed, using character estimate", slog.String("model", t.Model), slog.Any("error", err))
		runes := []rune(text)
		if limit := t.MaxTokens * 4; t.MaxTokens > 0 && len(runes) > limit {
			return string(runes[:limit])
		}
		return text
	}
	if cut {
		slog.Debug("embedding input truncated", slog.String("model", t.Model), slog.Int("max_tokens", t.MaxTokens))
	}
	return out
}
