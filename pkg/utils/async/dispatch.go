package async

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/storevoice/pkg/utils/errutil"
	"github.com/secmon-lab/storevoice/pkg/utils/logging"
)

// Dispatch runs handler in a new goroutine detached from the caller's cancellation but keeping
// its logger. Errors and panics are logged and never returned.
func Dispatch(ctx context.Context, task string, handler func(ctx context.Context) error) {
	bgCtx := context.Background()
	if logger := logging.From(ctx); logger != nil {
		bgCtx = logging.With(bgCtx, logger.With("task", task))
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				errutil.Handle(bgCtx, goerr.New("panic in async handler", goerr.V("panic", r)), "async task panicked")
			}
		}()

		if err := handler(bgCtx); err != nil {
			errutil.Handle(bgCtx, err, "async task failed")
		}
	}()
}
