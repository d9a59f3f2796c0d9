package decomp

import (
	"bufio"
	"context"
	"io"
	"log"

	"github.com/coregx/reflexgrep/archive"
)

// Config configures a Chain. DefaultConfig mirrors meta/config.go's
// DefaultConfig() style: a plain struct, no flags/viper.
type Config struct {
	// MaxDepth bounds how many compression/archive layers a Chain will
	// peel (spec §4.8's zmax). Once that many workers are active, Next
	// returns further parts as they are, without decoding deeper layers
	// and without an error.
	MaxDepth int
	Logger   *log.Logger
}

// DefaultConfig returns a Config with zmax = 8, matching ugrep's own
// default nesting limit.
func DefaultConfig() Config {
	return Config{MaxDepth: 8}
}

// Chain peels nested compression/archive layers off one file, producing a
// sequence of Parts, per spec §4.8.
type Chain struct {
	cfg       Config
	workers   []*Worker
	cur       *Part
	cancelled bool
}

// Open begins decompressing r under pathname, identifying the first
// stage's codec by magic bytes.
func Open(pathname string, r io.Reader, cfg Config) (*Chain, error) {
	c := &Chain{cfg: cfg}
	br := bufio.NewReaderSize(r, 512)
	lead, _ := br.Peek(512)
	kind := Detect(lead)
	w := NewWorker(br, kind, cfg.Logger)
	part, err := w.Start(pathname)
	if err == io.EOF {
		return c, nil
	}
	if err != nil {
		return nil, err
	}
	c.workers = append(c.workers, w)
	c.cur = part
	return c, nil
}

// Next returns the next Part in the chain: either the next entry from the
// current archive-mode worker, or (when the current part's bytes
// themselves look like a nested compressed stream) a new Worker stage one
// level deeper, up to Config.MaxDepth.
func (c *Chain) Next() (*Part, error) {
	if c.cancelled {
		return nil, ErrCancelled
	}
	if c.cur == nil {
		return nil, io.EOF
	}
	part := c.cur
	c.cur = nil

	if len(c.workers) >= c.cfg.MaxDepth {
		return part, nil
	}

	br := bufio.NewReaderSize(part.Body, 512)
	lead, _ := br.Peek(512)
	_, isArchive := archive.Detect(lead)
	if Detect(lead) == None && !isArchive {
		return &Part{Name: part.Name, Body: c.deferredAdvance(br, part.Body)}, nil
	}

	nested := NewWorker(br, Detect(lead), c.cfg.Logger)
	nestedPart, err := nested.Start(part.Name)
	if err == io.EOF {
		return &Part{Name: part.Name, Body: c.deferredAdvance(br, part.Body)}, nil
	}
	if err != nil {
		return nil, err
	}
	c.workers = append(c.workers, nested)
	c.cur = nestedPart
	return c.Next()
}

// bufCloser pairs a bufio.Reader (which may hold peeked-but-unread bytes)
// with the underlying stream's Close, so a Peek used for format detection
// never loses bytes to the consumer.
type bufCloser struct {
	*bufio.Reader
	io.Closer
}

// deferredAdvance wraps a part's body so advanceTop (which blocks on the
// worker's OpenNext, in turn waiting for the worker to finish writing the
// *current* part) only fires once the caller has actually drained or
// closed this part. Calling advanceTop eagerly, before the caller has
// read a single byte, deadlocks: the worker is still blocked inside its
// pipe Write for the current entry, so it never reaches the point where
// OpenNext's signal is observed.
func (c *Chain) deferredAdvance(br *bufio.Reader, closer io.Closer) io.ReadCloser {
	return &advanceOnceBody{r: br, closer: closer, chain: c}
}

type advanceOnceBody struct {
	r      *bufio.Reader
	closer io.Closer
	chain  *Chain
	fired  bool
}

func (b *advanceOnceBody) Read(p []byte) (int, error) {
	n, err := b.r.Read(p)
	if err == io.EOF {
		b.advance()
	}
	return n, err
}

func (b *advanceOnceBody) Close() error {
	b.advance()
	return b.closer.Close()
}

func (b *advanceOnceBody) advance() {
	if b.fired {
		return
	}
	b.fired = true
	b.chain.advanceTop()
}

// advanceTop requests the next entry from the shallowest worker that still
// has more to give, unwinding exhausted deeper stages.
func (c *Chain) advanceTop() {
	for len(c.workers) > 0 {
		top := c.workers[len(c.workers)-1]
		next, err := top.OpenNext()
		if err == io.EOF {
			c.workers = c.workers[:len(c.workers)-1]
			continue
		}
		if err == ErrCancelled {
			c.cancelled = true
			return
		}
		if err != nil {
			return
		}
		c.cur = next
		return
	}
}

// Close stops every active worker in the chain (spec §4.8 cancellation).
func (c *Chain) Close() {
	for _, w := range c.workers {
		w.Stop()
		w.Quit()
	}
}

// WatchContext arranges for Close to run as soon as ctx is done, modeling
// spec §5's "stop is modeled as context.CancelFunc plus the spec's own
// sync.Cond gates so that workers blocked in cond.Wait() still observe
// cancellation". Every worker's Quit broadcasts all four gates, so a
// waiter blocked in Start/OpenNext unblocks with ErrCancelled in bounded
// time regardless of pipe state (spec §8's cancellation-liveness
// invariant), and copyGuarded diverts any in-flight stage to a bitbucket.
func (c *Chain) WatchContext(ctx context.Context) {
	if ctx.Done() == nil {
		return
	}
	go func() {
		<-ctx.Done()
		c.Close()
	}()
}
