// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package xio

import "sync"

// AbortSignal represents a signal object that allows communication with a
// suspendable operation and abort it if needed, via an AbortController.
//
// This implementation follows the shape of the W3C DOM
// AbortController/AbortSignal specification:
// https://dom.spec.whatwg.org/#interface-abortsignal
//
// Usage:
//
//	controller := xio.NewAbortController()
//	signal := controller.Signal()
//
//	signal.OnAbort(func(reason any) {
//	    fmt.Println("Aborted with reason:", reason)
//	})
//
//	controller.Abort("user cancelled")
type AbortSignal struct { //nolint:govet // betteralign:ignore
	handlers []func(reason any)
	reason   any
	mu       sync.RWMutex
	aborted  bool
}

// newAbortSignal creates a new AbortSignal.
// This is an internal function; signals are created via AbortController.
func newAbortSignal() *AbortSignal {
	return &AbortSignal{
		handlers: make([]func(reason any), 0),
	}
}

// Aborted returns true if the signal has been aborted.
func (s *AbortSignal) Aborted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.aborted
}

// Reason returns the abort reason, or nil if not aborted or no reason was
// provided.
func (s *AbortSignal) Reason() any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reason
}

// OnAbort registers a callback to be invoked when the signal is aborted.
//
// If the signal is already aborted at registration time, the callback is
// invoked immediately with the current reason.
func (s *AbortSignal) OnAbort(handler func(reason any)) {
	if handler == nil {
		return
	}

	s.mu.Lock()
	if s.aborted {
		reason := s.reason
		s.mu.Unlock()
		handler(reason)
		return
	}

	s.handlers = append(s.handlers, handler)
	s.mu.Unlock()
}

// ThrowIfAborted returns an AbortError if the signal has been aborted, nil
// otherwise.
func (s *AbortSignal) ThrowIfAborted() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.aborted {
		return &AbortError{Reason: s.reason}
	}
	return nil
}

// abort is called by AbortController to abort the signal.
func (s *AbortSignal) abort(reason any) {
	s.mu.Lock()

	if s.aborted {
		s.mu.Unlock()
		return
	}

	s.aborted = true
	s.reason = reason

	handlers := make([]func(reason any), len(s.handlers))
	copy(handlers, s.handlers)
	s.mu.Unlock()

	for _, handler := range handlers {
		handler(reason)
	}
}

// AbortController represents a controller that allows aborting one or more
// suspendable operations through its associated AbortSignal.
type AbortController struct {
	signal *AbortSignal
}

// NewAbortController creates a new AbortController with a fresh AbortSignal.
func NewAbortController() *AbortController {
	return &AbortController{
		signal: newAbortSignal(),
	}
}

// Signal returns the AbortSignal associated with this controller.
func (c *AbortController) Signal() *AbortSignal {
	return c.signal
}

// Abort aborts the controller's signal with the given reason. If reason is
// nil, a default AbortError is used.
//
// Calling Abort more than once has no additional effect; the signal keeps
// its original reason.
func (c *AbortController) Abort(reason any) {
	if reason == nil {
		reason = &AbortError{Reason: "Aborted"}
	}
	c.signal.abort(reason)
}

// AbortError represents an error that occurs when an operation is aborted.
type AbortError struct {
	// Reason contains the abort reason provided to AbortController.Abort.
	Reason any
}

// Error implements the error interface.
func (e *AbortError) Error() string {
	if e.Reason == nil {
		return "AbortError: the operation was aborted"
	}
	if s, ok := e.Reason.(string); ok {
		return "AbortError: " + s
	}
	if err, ok := e.Reason.(error); ok {
		return "AbortError: " + err.Error()
	}
	return "AbortError: the operation was aborted"
}

// Is implements errors.Is support for AbortError.
func (e *AbortError) Is(target error) bool {
	_, ok := target.(*AbortError)
	return ok
}

// Unwrap returns the underlying error if Reason is an error, enabling
// errors.Is/errors.As through the cause chain.
func (e *AbortError) Unwrap() error {
	if err, ok := e.Reason.(error); ok {
		return err
	}
	return nil
}

// CancelOnAbort cancels t as soon as signal is aborted (spec's external
// cancellation trigger, distinct from a parent TaskGroup's own failure
// propagation). If signal is already aborted, t is cancelled immediately.
//
// The abort handler calls t.Cancel() directly, so it must run on the same
// goroutine that drives t's owning Run or TaskGroup — exactly like any other
// task cancelling a sibling. Aborting from an unrelated goroutine without
// synchronizing through the scheduler is not supported, per this runtime's
// single-threaded scheduling model.
func (t *Task[T]) CancelOnAbort(signal *AbortSignal) {
	if signal == nil {
		return
	}
	signal.OnAbort(func(reason any) {
		t.cancel()
	})
}

// AbortAny creates a composite AbortSignal that aborts when any of the input
// signals abort, carrying the reason of whichever aborted first.
//
// If an input signal is already aborted, the returned signal is immediately
// aborted with that signal's reason. An empty input slice yields a signal
// that never aborts.
func AbortAny(signals []*AbortSignal) *AbortSignal {
	composite := newAbortSignal()

	if len(signals) == 0 {
		return composite
	}

	var abortOnce sync.Once

	for _, sig := range signals {
		if sig == nil {
			continue
		}
		if sig.Aborted() {
			composite.abort(sig.Reason())
			return composite
		}
	}

	for _, sig := range signals {
		if sig == nil {
			continue
		}
		s := sig
		s.OnAbort(func(reason any) {
			abortOnce.Do(func() {
				composite.abort(reason)
			})
		})
	}

	return composite
}
