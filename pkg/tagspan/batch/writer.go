package batch

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/cognicore/tagspan/pkg/tagspan/internalerr"
)

// Defaults for Options fields left zero
const (
	DefaultDocumentsPerFile = 5000
	DefaultPadWidth         = 8
	DefaultPrefix           = "entities"
	defaultBufSize          = 64 * 1024
)

// Options configures a Writer
type Options struct {
	Dir              string
	Prefix           string
	DocumentsPerFile int
	PadWidth         int
	// StartBatch resumes numbering at this batch index, as if
	// StartBatch*DocumentsPerFile documents were already written.
	StartBatch int
	BufSize    int
	Metrics    *Metrics
}

type state int

const (
	stateClosed state = iota
	stateOpen
	stateCompleted
)

// Stats is a snapshot of writer progress
type Stats struct {
	DocumentsWritten int64
	FilesOpened      int
	CurrentFile      string
}

// Writer appends formatted document blocks to batch files, starting a new
// file every DocumentsPerFile documents. The rotation check runs before
// the block is written, so each file begins empty and holds exactly
// DocumentsPerFile documents except possibly the last.
//
// A Writer is meant for one pipeline driver; Append calls are serialized.
type Writer struct {
	mu      sync.Mutex
	opts    Options
	state   state
	f       *os.File
	bw      *bufio.Writer
	written int64
	files   int
	err     error
}

// New creates a Writer and the output directory if it is missing
func New(opts Options) (*Writer, error) {
	if strings.TrimSpace(opts.Dir) == "" {
		return nil, fmt.Errorf("batch: output directory required: %w", internalerr.ErrInvalidConfig)
	}
	if opts.DocumentsPerFile < 0 || opts.PadWidth < 0 || opts.StartBatch < 0 {
		return nil, fmt.Errorf("batch: negative option: %w", internalerr.ErrInvalidConfig)
	}
	if opts.DocumentsPerFile == 0 {
		opts.DocumentsPerFile = DefaultDocumentsPerFile
	}
	if opts.PadWidth == 0 {
		opts.PadWidth = DefaultPadWidth
	}
	if opts.Prefix == "" {
		opts.Prefix = DefaultPrefix
	}
	if opts.BufSize <= 0 {
		opts.BufSize = defaultBufSize
	}

	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("batch: create output directory: %w", err)
	}

	return &Writer{
		opts:    opts,
		written: int64(opts.StartBatch) * int64(opts.DocumentsPerFile),
	}, nil
}

// FileName returns the name of the file holding batch index
func (w *Writer) FileName(index int64) string {
	return fmt.Sprintf("%s_%0*d.xml", w.opts.Prefix, w.opts.PadWidth, index)
}

// Append writes one document block, rotating to a new file first when the
// current one is full. I/O errors close the open file and are returned by
// every later call.
func (w *Writer) Append(ctx context.Context, block []byte) (err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.err != nil {
		return w.err
	}
	if w.state == stateCompleted {
		return internalerr.ErrWriterClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	defer func() {
		if err != nil {
			w.abort(err)
		}
	}()

	if w.state == stateClosed || w.written%int64(w.opts.DocumentsPerFile) == 0 {
		if err := w.rotate(); err != nil {
			return err
		}
	}

	if _, err := w.bw.Write(block); err != nil {
		return fmt.Errorf("batch: write %s: %w", w.f.Name(), err)
	}
	w.written++
	w.opts.Metrics.document(len(block))
	return nil
}

// rotate closes the open file, if any, and opens the file for the batch
// that the next document belongs to.
func (w *Writer) rotate() error {
	if err := w.closeFile(); err != nil {
		return err
	}

	index := w.written / int64(w.opts.DocumentsPerFile)
	path := filepath.Join(w.opts.Dir, w.FileName(index))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("batch: open %s: %w", path, err)
	}

	w.f = f
	w.bw = bufio.NewWriterSize(f, w.opts.BufSize)
	w.state = stateOpen
	w.files++
	w.opts.Metrics.rotated()
	return nil
}

// closeFile flushes and closes the open file. The handle is released even
// when flushing fails.
func (w *Writer) closeFile() error {
	if w.f == nil {
		return nil
	}
	f, bw := w.f, w.bw
	w.f, w.bw = nil, nil
	w.state = stateClosed

	err := bw.Flush()
	if err == nil {
		err = f.Sync()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("batch: close %s: %w", f.Name(), err)
	}
	return nil
}

// abort records err and releases the open file without reporting a second error
func (w *Writer) abort(err error) {
	w.err = err
	if w.f != nil {
		_ = w.f.Close()
		w.f, w.bw = nil, nil
	}
	w.state = stateClosed
}

// Complete flushes and closes the open file. Calling it again is a no-op.
func (w *Writer) Complete() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state == stateCompleted {
		return nil
	}
	err := w.closeFile()
	w.state = stateCompleted
	if err != nil && w.err == nil {
		w.err = err
	}
	return err
}

// Err returns the error that stopped the writer, if any
func (w *Writer) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

// Stats returns a snapshot of progress
func (w *Writer) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()

	s := Stats{DocumentsWritten: w.written, FilesOpened: w.files}
	if w.f != nil {
		s.CurrentFile = w.f.Name()
	}
	return s
}
