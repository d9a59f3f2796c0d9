package match

import (
	"context"
	"io"
	"os"

	"github.com/coregx/reflexgrep/decomp"
	"github.com/coregx/reflexgrep/input"
)

// Session drives one Pattern over every Part a decomp.Chain yields for a
// single file, closing the gap spec §4.9 names explicitly: "Orchestrator
// is generalized to drive Prefilter -> Interpreter -> OutputSink over
// DecompChain-provided parts". facade.go's Regex.Find* stay in-memory,
// one-shot searches; Session is the entry point that actually exercises
// decomp, archive (transitively, via decomp's archive.Walk) and store.
type Session struct {
	Pattern *Pattern
	Sink    Sink
	Config  decomp.Config

	// Index, when non-nil, is consulted before decompressing a file; its
	// ShouldSkip call records the file's fresh bitmap in memory at that
	// point. Session never writes the store file: that is Index.Flush,
	// whose basename-sorted output keeps spec §6's "running the indexer
	// twice on an unchanged tree leaves the store files byte-identical"
	// round-trip property. Nil disables indexing.
	Index *Index
}

// NewSession returns a Session driving p over decomp.Chain-provided parts
// and reporting matches to sink.
func NewSession(p *Pattern, sink Sink) *Session {
	return &Session{Pattern: p, Sink: sink, Config: decomp.DefaultConfig()}
}

// SearchPath opens the file at path, consults Index (if set) to decide
// whether its content bitmap has changed since the last run, and — if
// not skipped — hands it to SearchFile. Indexing needs its own read pass
// over the file ahead of decomp.Open's, so it opens path twice rather
// than sharing a single io.Reader across both.
func (s *Session) SearchPath(ctx context.Context, path string) error {
	if s.Index != nil {
		hf, err := os.Open(path)
		if err != nil {
			return err
		}
		skip, err := s.Index.ShouldSkip(path, hf)
		hf.Close()
		if err != nil {
			return err
		}
		if skip {
			return nil
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return s.SearchFile(ctx, path, f)
}

// SearchFile opens pathname over r through a decomp.Chain, feeding every
// decompressed/un-archived Part in turn to an Orchestrator, with
// Partname set to the Part's real name (archive entries get the
// "outer:inner" form decomp.Worker assigns). ctx cancellation is wired
// through decomp.Chain.WatchContext, per spec §5: workers blocked on a
// sync.Cond gate still observe cancellation via the ErrCancelled path
// decomp's Quit/WatchContext broadcast triggers.
func (s *Session) SearchFile(ctx context.Context, pathname string, r io.Reader) error {
	chain, err := decomp.Open(pathname, r, s.Config)
	if err != nil {
		return err
	}
	chain.WatchContext(ctx)
	defer chain.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		part, err := chain.Next()
		if err == io.EOF {
			return nil
		}
		if err == decomp.ErrCancelled {
			return ctx.Err()
		}
		if err != nil {
			return err
		}

		if err := s.runPart(part); err != nil {
			return err
		}
	}
}

func (s *Session) runPart(part *decomp.Part) error {
	in := input.NewStream(part.Body, nil, false)
	defer in.Close()

	o := New(s.Pattern, part.Name, s.Sink)
	return o.Run(in)
}
