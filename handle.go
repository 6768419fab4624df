package sash

import "reflect"

// RawLoopHandle schedules work onto the loop without knowing the handler
// type. It may be copied and used from any goroutine.
type RawLoopHandle struct {
	app *application
}

// RunOnMainRaw runs f on the loop goroutine with the launched handler. It
// returns ErrLoopStopped once the loop has stopped; f then never runs.
func (h RawLoopHandle) RunOnMainRaw(f func(Handler, *Platform)) error {
	app := h.app
	return app.loop.Post(func() { f(app.handler, app.platform()) })
}

// Stop stops the loop from any goroutine.
func (h RawLoopHandle) Stop() {
	h.app.loop.Stop()
}

// LoopHandle schedules work onto the loop with the concrete handler.
type LoopHandle[H Handler] struct {
	raw RawLoopHandle
}

// Handle returns a typed loop handle. It panics with
// *HandlerTypeMismatchError if H is not the type the loop was launched
// with.
func Handle[H Handler](p *Platform) LoopHandle[H] {
	want := reflect.TypeFor[H]()
	if want != p.app.handlerType {
		panic(&HandlerTypeMismatchError{Want: want, Launched: p.app.handlerType})
	}
	return LoopHandle[H]{raw: p.RawHandle()}
}

// RunOnMain runs f on the loop goroutine with the launched handler. It
// returns ErrLoopStopped once the loop has stopped.
func (h LoopHandle[H]) RunOnMain(f func(H, *Platform)) error {
	return h.raw.RunOnMainRaw(func(handler Handler, p *Platform) {
		f(handler.Self().(H), p)
	})
}

// Raw returns the untyped handle.
func (h LoopHandle[H]) Raw() RawLoopHandle {
	return h.raw
}
