// Package endpoint defines mock endpoint records and loads them from YAML
// files.
package endpoint

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aarondl/opt/omitnull"

	"github.com/artefactual-labs/apimock/internal/guard"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid endpoint")

// Endpoint is one mock route. Endpoints are not modified after loading.
type Endpoint struct {
	Method string
	Path   string
	Status int

	// Body is unset when the response has no payload and null when the
	// payload is a JSON null.
	Body omitnull.Val[any]

	DelayMs int
	Guard   *guard.Guard

	// Source is the file the endpoint was loaded from.
	Source string
}

// Key identifies an endpoint by method and path.
type Key struct {
	Method string
	Path   string
}

func (k Key) String() string {
	return k.Method + " " + k.Path
}

func (e *Endpoint) Key() Key {
	return Key{Method: e.Method, Path: e.Path}
}

func (e *Endpoint) Delay() time.Duration {
	return time.Duration(e.DelayMs) * time.Millisecond
}

// Validate reports the first problem found in e.
func (e *Endpoint) Validate() error {
	if e.Method == "" {
		return fmt.Errorf("%w: method is required", ErrInvalid)
	}
	if strings.ToUpper(e.Method) != e.Method {
		return fmt.Errorf("%w: method %q must be upper case", ErrInvalid, e.Method)
	}
	if e.Path == "" {
		return fmt.Errorf("%w: path is required", ErrInvalid)
	}
	if !strings.HasPrefix(e.Path, "/") {
		return fmt.Errorf("%w: path %q must start with /", ErrInvalid, e.Path)
	}
	if err := validStatus(e.Status); err != nil {
		return err
	}
	if e.DelayMs < 0 {
		return fmt.Errorf("%w: delayMs must not be negative", ErrInvalid)
	}
	if e.Guard != nil {
		if err := e.Guard.Validate(); err != nil {
			return fmt.Errorf("%w: guard: %v", ErrInvalid, err)
		}
		if err := validStatus(e.Guard.Left.Status); err != nil {
			return fmt.Errorf("guard: left: %w", err)
		}
		if err := validStatus(e.Guard.Right.Status); err != nil {
			return fmt.Errorf("guard: right: %w", err)
		}
	}
	return nil
}

// validStatus accepts zero, meaning the default status.
func validStatus(status int) error {
	if status != 0 && (status < 100 || status > 599) {
		return fmt.Errorf("%w: status %d out of range", ErrInvalid, status)
	}
	return nil
}
