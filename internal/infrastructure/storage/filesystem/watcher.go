package filesystem

import (
	"context"

	"github.com/fsnotify/fsnotify"

	"github.com/turtacn/ecowarn/internal/domain/exposure"
	"github.com/turtacn/ecowarn/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ecowarn/pkg/errors"
)

// ChangeFunc is called when the table of (medium, endpoint) is written,
// created, removed or renamed.
type ChangeFunc func(medium exposure.Medium, endpoint exposure.Endpoint)

// Watcher reports edits to the reference tables of a Source.
type Watcher struct {
	fw       *fsnotify.Watcher
	source   *Source
	onChange ChangeFunc
	logger   logging.Logger
}

// NewWatcher watches the directory of source.
func NewWatcher(source *Source, onChange ChangeFunc, log logging.Logger) (*Watcher, error) {
	if onChange == nil {
		return nil, errors.InvalidParam("watcher needs a change callback")
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to create file watcher")
	}
	if err := fw.Add(source.Dir()); err != nil {
		fw.Close()
		return nil, errors.Wrap(err, errors.ErrCodeServiceUnavailable, "failed to watch reference directory").
			WithDetail(source.Dir())
	}
	return &Watcher{fw: fw, source: source, onChange: onChange, logger: log.Named("fs_watcher")}, nil
}

const relevantOps = fsnotify.Write | fsnotify.Create | fsnotify.Remove | fsnotify.Rename

// Run dispatches events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fw.Events:
			if !ok {
				return nil
			}
			if ev.Op&relevantOps == 0 {
				continue
			}
			medium, endpoint, ok := w.source.TableFor(ev.Name)
			if !ok {
				continue
			}
			w.logger.Info("reference table changed",
				logging.String("path", ev.Name),
				logging.String("op", ev.Op.String()))
			w.onChange(medium, endpoint)
		case err, ok := <-w.fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("file watcher error", logging.Err(err))
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fw.Close()
}

//Personal.AI order the ending
