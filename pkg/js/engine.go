package js

import (
	"fmt"
	"time"

	"github.com/dop251/goja"
	"go.uber.org/zap"

	"boxwalk/pkg/html"
)

// Engine executes a document's scripts against its DOM before styling and
// layout.
type Engine struct {
	vm      *goja.Runtime
	logger  *zap.Logger
	timeout time.Duration
}

type Option func(*Engine)

// WithTimeout interrupts a script that runs longer than d. Zero disables the limit.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) { e.timeout = d }
}

// New creates an engine with a fresh goja runtime. A nil logger discards
// console output.
func New(logger *zap.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		vm:     goja.New(),
		logger: logger.Named("js"),
	}
	for _, opt := range opts {
		opt(e)
	}

	c := &consoleAPI{logger: e.logger}
	c.register(e.vm)
	return e
}

// Execute runs doc.Scripts in order. The first failing script stops
// execution; its error is returned wrapped with the script's index.
func (e *Engine) Execute(doc *html.Document) error {
	registerDocument(e.vm, doc)

	for i, script := range doc.Scripts {
		if err := e.run(script); err != nil {
			return fmt.Errorf("script %d: %w", i, err)
		}
		e.logger.Debug("script executed", zap.Int("index", i), zap.Int("bytes", len(script)))
	}
	return nil
}

func (e *Engine) run(script string) error {
	if e.timeout > 0 {
		timer := time.AfterFunc(e.timeout, func() {
			e.vm.Interrupt(fmt.Sprintf("timeout after %s", e.timeout))
		})
		defer func() {
			timer.Stop()
			e.vm.ClearInterrupt()
		}()
	}
	_, err := e.vm.RunString(script)
	return err
}
