package domain

import "fmt"

// LoadError reports a transport failure while fetching the catalog document.
type LoadError struct {
	Source string
	Status int // HTTP status, 0 when the request never completed
	Msg    string
	Err    error
}

func (e *LoadError) Error() string {
	switch {
	case e.Status != 0:
		return fmt.Sprintf("HTTP %d: %s", e.Status, e.Msg)
	case e.Err != nil:
		return fmt.Sprintf("load %s: %v", e.Source, e.Err)
	default:
		return fmt.Sprintf("load %s: %s", e.Source, e.Msg)
	}
}

func (e *LoadError) Unwrap() error { return e.Err }

// MalformedCatalogError reports a catalog document that is not an object with a
// categories array.
type MalformedCatalogError struct {
	Reason string
	Err    error
}

func (e *MalformedCatalogError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed catalog: %s: %v", e.Reason, e.Err)
	}
	return "malformed catalog: " + e.Reason
}

func (e *MalformedCatalogError) Unwrap() error { return e.Err }

// RenderError wraps a failure of a single render step.
type RenderError struct {
	Step string
	Err  error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s: %v", e.Step, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// ExtractionSkip marks a category, product or field the scraper gave up on.
type ExtractionSkip struct {
	Stage  string
	Target string
	Reason string
	Err    error
}

func (e *ExtractionSkip) Error() string {
	msg := fmt.Sprintf("skip %s %s: %s", e.Stage, e.Target, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ExtractionSkip) Unwrap() error { return e.Err }

// Isolate runs one render step and turns both returned errors and panics into a
// RenderError, so the caller can log it and move on to the next step.
func Isolate(step string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &RenderError{Step: step, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	if err := fn(); err != nil {
		return &RenderError{Step: step, Err: err}
	}
	return nil
}
