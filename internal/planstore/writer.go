package planstore

import (
	"context"
	"errors"
	"sync"
	"time"

	"alcyxob/palestra-app/internal/domain"
	"alcyxob/palestra-app/internal/metrics"
	"alcyxob/palestra-app/internal/storage"

	"github.com/sirupsen/logrus"
)

var ErrWriterClosed = errors.New("snapshot writer closed")

// writeOp is either a full snapshot write or a key removal.
type writeOp struct {
	clients []domain.Client // immutable, shared with the store
	remove  bool
	done    chan error // buffered; only set for callers that wait
}

func (o *writeOp) finish(err error) {
	if o.done != nil {
		o.done <- err
	}
}

// snapshotWriter performs persistence on one goroutine. Only the newest
// pending op is kept, so storage always moves forward in time.
type snapshotWriter struct {
	kv      storage.KeyValueStore
	key     string
	timeout time.Duration
	log     logrus.FieldLogger
	metrics *metrics.Manager

	mu       sync.Mutex
	pending  *writeOp
	closed   bool
	wake     chan struct{}
	quit     chan struct{}
	finished chan struct{}
}

func newSnapshotWriter(kv storage.KeyValueStore, key string, timeout time.Duration, log logrus.FieldLogger, m *metrics.Manager) *snapshotWriter {
	w := &snapshotWriter{
		kv:       kv,
		key:      key,
		timeout:  timeout,
		log:      log,
		metrics:  m,
		wake:     make(chan struct{}, 1),
		quit:     make(chan struct{}),
		finished: make(chan struct{}),
	}
	go w.run()
	return w
}

// submit queues op, superseding whatever was still pending.
func (w *snapshotWriter) submit(op *writeOp) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		op.finish(ErrWriterClosed)
		return
	}
	if prev := w.pending; prev != nil {
		// Newer state replaces it in storage anyway.
		prev.finish(nil)
	}
	w.pending = op
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *snapshotWriter) run() {
	defer close(w.finished)
	for {
		select {
		case <-w.wake:
			w.drain()
		case <-w.quit:
			w.drain()
			return
		}
	}
}

func (w *snapshotWriter) drain() {
	for {
		w.mu.Lock()
		op := w.pending
		w.pending = nil
		w.mu.Unlock()
		if op == nil {
			return
		}
		op.finish(w.apply(op))
	}
}

func (w *snapshotWriter) apply(op *writeOp) error {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	if op.remove {
		if err := w.kv.Remove(ctx, w.key); err != nil {
			w.failed("remove", err)
			return err
		}
		return nil
	}

	payload, err := Encode(op.clients)
	if err != nil {
		w.failed("encode", err)
		return err
	}
	if err := w.kv.Set(ctx, w.key, payload); err != nil {
		w.failed("set", err)
		return err
	}
	if w.metrics != nil {
		w.metrics.CounterPersistWrites.Inc()
	}
	return nil
}

func (w *snapshotWriter) failed(op string, err error) {
	w.log.WithError(err).WithField("op", op).Error("snapshot persistence failed")
	if w.metrics != nil {
		w.metrics.CounterPersistFailures.Inc()
	}
}

// close flushes what is pending and stops the goroutine.
func (w *snapshotWriter) close(ctx context.Context) error {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.quit)
	}
	w.mu.Unlock()

	select {
	case <-w.finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
