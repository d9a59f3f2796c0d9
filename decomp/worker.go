package decomp

import (
	"bufio"
	"bytes"
	"io"
	"log"

	"github.com/coregx/reflexgrep/archive"
)

// Part is one (partname, bytestream) pair produced by a Worker, per spec
// §3's Archive part data model.
type Part struct {
	Name string
	Body io.ReadCloser
}

// Worker decompresses one stage of a DecompChain. Its state matches spec
// §4.8's per-worker fields, with the four named condition variables
// (pipe_ready, pipe_close, pipe_zstream, part_ready) implemented as
// sync.Cond sharing one mutex.
type Worker struct {
	gates

	src    io.Reader
	kind   Kind
	logger *log.Logger

	partname     string
	pipeR        *io.PipeReader
	pipeW        *io.PipeWriter
	isExtracting bool
	isWaiting    bool
	isAssigned   bool
	quit         bool
	stop         bool

	advance chan struct{} // signaled by OpenNext to let the run loop proceed to the next entry
	done    bool
	failed  error
}

// NewWorker constructs a Worker over src, already identified as kind by
// Detect (or container detection happens lazily in run, for stages the
// caller has not pre-sniffed).
func NewWorker(src io.Reader, kind Kind, logger *log.Logger) *Worker {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Worker{src: src, kind: kind, logger: logger, advance: make(chan struct{}, 1)}
}

// Start begins decompression of pathname and returns the read end of the
// first part's pipe, per spec §4.8 protocol step 1.
func (w *Worker) Start(pathname string) (*Part, error) {
	w.gates.init()
	w.mu.Lock()
	w.isExtracting = true
	w.mu.Unlock()

	go w.run(pathname)

	w.mu.Lock()
	defer w.mu.Unlock()
	for !w.isAssigned && w.failed == nil && !w.done && !w.quit {
		w.isWaiting = true
		w.partReady.Wait()
	}
	w.isWaiting = false
	if w.failed != nil {
		return nil, w.failed
	}
	if w.done {
		return nil, io.EOF
	}
	if w.quit {
		return nil, ErrCancelled
	}
	return &Part{Name: w.partname, Body: w.pipeR}, nil
}

// OpenNext requests the next part from an archive-mode worker, per spec
// §4.8 protocol step 3. It returns io.EOF once the archive is exhausted.
func (w *Worker) OpenNext() (*Part, error) {
	w.mu.Lock()
	w.isAssigned = false
	w.mu.Unlock()

	select {
	case w.advance <- struct{}{}:
	default:
	}
	w.pipeZstream.Signal()

	w.mu.Lock()
	defer w.mu.Unlock()
	for !w.isAssigned && w.failed == nil && !w.done && !w.quit {
		w.isWaiting = true
		w.partReady.Wait()
	}
	w.isWaiting = false
	if w.failed != nil {
		return nil, w.failed
	}
	if w.done {
		return nil, io.EOF
	}
	if w.quit {
		return nil, ErrCancelled
	}
	return &Part{Name: w.partname, Body: w.pipeR}, nil
}

// Stop requests cancellation (spec §4.8: "the worker drains remaining
// decompressed bytes into a bitbucket ... and exits gracefully").
func (w *Worker) Stop() {
	w.mu.Lock()
	w.stop = true
	w.mu.Unlock()
	w.pipeClose.Broadcast()
}

// Quit sets the worker's quit flag and broadcasts all four gates, waking
// any waiter in Start/OpenNext. It does not close the worker's pipe and
// does not wait for the run goroutine to exit; the run goroutine checks
// quit only between archive entries.
func (w *Worker) Quit() {
	w.mu.Lock()
	w.quit = true
	w.mu.Unlock()
	w.pipeReady.Broadcast()
	w.pipeClose.Broadcast()
	w.pipeZstream.Broadcast()
	w.partReady.Broadcast()
}

func (w *Worker) run(pathname string) {
	rc, err := NewReader(w.kind, w.src)
	if err != nil {
		w.fail(err)
		return
	}
	defer rc.Close()

	br := bufio.NewReaderSize(rc, 512)
	lead, _ := br.Peek(512)
	if kind, ok := archive.Detect(lead); ok {
		w.runArchive(br, pathname, kind)
		return
	}
	w.runSingle(br, pathname)
}

// runSingle streams a non-container stage to a single part, per spec
// §4.8's base case (no container detected).
func (w *Worker) runSingle(r io.Reader, pathname string) {
	pr, pw := io.Pipe()
	w.mu.Lock()
	w.partname = pathname
	w.pipeR, w.pipeW = pr, pw
	w.isAssigned = true
	w.partReady.Broadcast()
	w.mu.Unlock()

	w.copyGuarded(pw, r)
	pw.Close()

	w.mu.Lock()
	w.done = true
	w.partReady.Broadcast()
	w.mu.Unlock()
}

// runArchive walks a container stage entry by entry, assigning
// "outer:inner" partnames and pacing each entry's delivery against
// OpenNext calls, per spec §4.8 protocol steps 2-4.
func (w *Worker) runArchive(r io.Reader, outer string, kind archive.Kind) {
	entries := archive.Walk(r, kind)
	first := true
	for {
		name, body, err := entries.Next()
		if err == archive.ErrEndOfArchive {
			break
		}
		if err != nil {
			w.fail(err)
			return
		}
		if !first {
			<-w.advance
		}
		first = false

		pr, pw := io.Pipe()
		w.mu.Lock()
		w.partname = outer + ":" + name
		w.pipeR, w.pipeW = pr, pw
		w.isAssigned = true
		w.partReady.Broadcast()
		w.mu.Unlock()

		w.copyGuarded(pw, body)
		pw.Close()

		w.mu.Lock()
		if w.quit {
			w.mu.Unlock()
			return
		}
		w.mu.Unlock()
	}

	w.mu.Lock()
	w.done = true
	w.partReady.Broadcast()
	w.mu.Unlock()
}

// copyGuarded copies src into dst, diverting to a bitbucket once Stop has
// been requested so a cancelled worker cannot deadlock a blocked peer
// (spec §4.8's cancellation semantics).
func (w *Worker) copyGuarded(dst io.Writer, src io.Reader) {
	buf := make([]byte, 32*1024)
	for {
		n, rerr := src.Read(buf)
		if n > 0 {
			w.mu.Lock()
			stopped := w.stop
			w.mu.Unlock()
			if stopped {
				io.Copy(io.Discard, bytes.NewReader(buf[:n]))
			} else if _, werr := dst.Write(buf[:n]); werr != nil {
				return
			}
		}
		if rerr != nil {
			return
		}
	}
}

func (w *Worker) fail(err error) {
	w.mu.Lock()
	w.failed = err
	w.partReady.Broadcast()
	w.mu.Unlock()
	w.logger.Printf("decomp: worker failed: %v", err)
}
