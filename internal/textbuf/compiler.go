package textbuf

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/dlclark/regexp2"

	"github.com/zjrosen/hopper/internal/cachemanager"
	"github.com/zjrosen/hopper/internal/log"
)

// DefaultMatchTimeout bounds a single regexp2 match attempt so a
// catastrophically backtracking pattern cannot hang a hop.
const DefaultMatchTimeout = 2 * time.Second

type variant byte

// Bounded variants run over the whole text and bound the match end by the
// number of runes that must follow it.
const (
	plain       variant = 'p'
	anchorStart variant = 's' // \G(?:expr)
	endWithin   variant = 'w' // (?:expr) followed by at least tail runes
	startWithin variant = 'a' // \G(?:expr) followed by at least tail runes
	endExactly  variant = 'e' // (?:expr) followed by exactly tail runes
)

func (v variant) wrap(expr string, tail int) string {
	switch v {
	case anchorStart:
		return `\G(?:` + expr + `)`
	case endWithin:
		return `(?:` + expr + `)` + atLeast(tail)
	case startWithin:
		return `\G(?:` + expr + `)` + atLeast(tail)
	case endExactly:
		return `(?:` + expr + `)(?=[\s\S]{` + strconv.Itoa(tail) + `}\z)`
	default:
		return expr
	}
}

func atLeast(tail int) string {
	if tail <= 0 {
		return ""
	}
	return `(?=[\s\S]{` + strconv.Itoa(tail) + `})`
}

type compileRequest struct {
	expr    string
	variant variant
	tail    int
}

// Compiler compiles and caches regexp2 programs. It is safe for concurrent
// use and may be shared by many buffers.
type Compiler struct {
	cache   *cachemanager.ReadThroughCache[string, *regexp2.Regexp, compileRequest]
	ttl     time.Duration
	timeout time.Duration
}

// NewCompiler creates a compiler whose entries live for ttl after last use.
// A ttl <= 0 uses cachemanager.DefaultExpiration.
func NewCompiler(ttl, matchTimeout time.Duration) *Compiler {
	if ttl <= 0 {
		ttl = cachemanager.DefaultExpiration
	}
	if matchTimeout <= 0 {
		matchTimeout = DefaultMatchTimeout
	}
	c := &Compiler{ttl: ttl, timeout: matchTimeout}
	c.cache = cachemanager.NewReadThroughCache(
		cachemanager.NewInMemoryCacheManager[string, *regexp2.Regexp]("patterns", ttl, cachemanager.DefaultCleanupInterval),
		c.load,
		false,
	)
	return c
}

func (c *Compiler) load(_ context.Context, req compileRequest) (*regexp2.Regexp, error) {
	re, err := regexp2.Compile(req.variant.wrap(req.expr, req.tail), regexp2.None)
	if err != nil {
		return nil, err
	}
	re.MatchTimeout = c.timeout
	log.Debug(log.CatCache, "Compiled pattern", "expr", req.expr, "variant", string(req.variant), "tail", req.tail)
	return re, nil
}

func (c *Compiler) compile(expr string, v variant) (*regexp2.Regexp, error) {
	return c.compileTail(expr, v, 0)
}

// compileTail compiles a bounded variant. tail is ignored by the unbounded ones.
func (c *Compiler) compileTail(expr string, v variant, tail int) (*regexp2.Regexp, error) {
	if v == plain || v == anchorStart {
		tail = 0
	}
	key := string(v) + strconv.Itoa(tail) + "\x00" + expr
	re, err := c.cache.Get(context.Background(), key, compileRequest{expr: expr, variant: v, tail: tail}, c.ttl)
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", expr, err)
	}
	return re, nil
}

// ValidatePattern reports whether expr compiles in the regexp2 dialect.
func ValidatePattern(expr string) error {
	if _, err := regexp2.Compile(expr, regexp2.None); err != nil {
		return fmt.Errorf("compile %q: %w", expr, err)
	}
	return nil
}
