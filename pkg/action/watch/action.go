package watch

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"

	"github.com/cmmoran/hdrport/pkg/action/convert"
	"github.com/cmmoran/hdrport/pkg/manifest"
	"github.com/cmmoran/hdrport/pkg/porter"
)

// DefaultDebounce is how long a header must stay quiet before it is
// converted again. Editors often write a file in several steps.
const DefaultDebounce = 300 * time.Millisecond

// Watcher re-converts headers as they change.
type Watcher struct {
	p        *porter.Porter
	fw       *fsnotify.Watcher
	debounce time.Duration
	targets  map[string]string // header → output

	mu      sync.Mutex
	timers  map[string]*time.Timer
	results chan Event
}

// Event reports one re-conversion.
type Event struct {
	Header     string
	Conversion manifest.Conversion
	Err        error
}

// New watches the header named in opts, or every header of opts.InDir.
func New(opts *porter.Options, debounce time.Duration) (*Watcher, error) {
	p, err := porter.NewWithOpts(opts)
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	targets := map[string]string{}
	var dir string
	switch {
	case p.Opts.Header != "":
		targets[filepath.Clean(p.Opts.Header)] = p.Opts.Output
		dir = filepath.Dir(p.Opts.Header)
	case p.Opts.InDir != "":
		headers, err := porter.FindHeaders(p.Opts.InDir)
		if err != nil {
			return nil, err
		}
		for _, h := range headers {
			targets[filepath.Clean(h)] = convert.OutputPath(p.Opts.OutDir, h)
		}
		dir = porter.HeaderDir(p.Opts.InDir)
	default:
		return nil, errors.New("nothing to watch: set a header and output, or an input directory")
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "create watcher")
	}
	// The directory is watched rather than the files so that editors which
	// replace a file by rename keep being noticed.
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, errors.Wrapf(err, "watch %s", dir)
	}

	return &Watcher{
		p:        p,
		fw:       fw,
		debounce: debounce,
		targets:  targets,
		timers:   map[string]*time.Timer{},
		results:  make(chan Event, 16),
	}, nil
}

// Events delivers the outcome of every re-conversion. It is closed when Run
// returns.
func (w *Watcher) Events() <-chan Event {
	return w.results
}

// Run blocks until ctx is done or the underlying watcher fails.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() {
		w.mu.Lock()
		for _, t := range w.timers {
			t.Stop()
		}
		w.timers = nil
		w.mu.Unlock()
		_ = w.fw.Close()
		close(w.results)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fw.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if _, ok := w.targets[filepath.Clean(ev.Name)]; !ok {
				w.track(ev.Name)
			}
			w.schedule(filepath.Clean(ev.Name))
		case err, ok := <-w.fw.Errors:
			if !ok {
				return nil
			}
			return errors.Wrap(err, "watch headers")
		}
	}
}

// track adds a header created after the watch started. Only batch runs pick
// up new headers.
func (w *Watcher) track(name string) {
	if w.p.Opts.Header != "" || filepath.Ext(name) != ".h" {
		return
	}
	w.targets[filepath.Clean(name)] = convert.OutputPath(w.p.Opts.OutDir, name)
	slog.Info("tracking new header", "header", name)
}

func (w *Watcher) schedule(header string) {
	output, ok := w.targets[header]
	if !ok {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timers == nil {
		return
	}
	if t, ok := w.timers[header]; ok {
		t.Stop()
	}
	w.timers[header] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		if w.timers == nil {
			w.mu.Unlock()
			return
		}
		delete(w.timers, header)
		w.mu.Unlock()

		c, err := convert.File(w.p, header, output)
		if err != nil {
			slog.Error("reconvert failed", "header", header, "error", err)
		}
		w.send(Event{Header: header, Conversion: c, Err: err})
	})
}

func (w *Watcher) send(ev Event) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timers == nil {
		return
	}
	select {
	case w.results <- ev:
	default:
		slog.Warn("dropping watch event, nobody is reading", "header", ev.Header)
	}
}
