package common

import (
	"fmt"

	"hlatarget/internal/dbg"
)

// ComponentAttachNotifier is the notification interface for attachment.
type ComponentAttachNotifier interface {
	// AttachNotify is called whenever a component is attached or detached.
	// numAttached is the number of remaining components attached to the point.
	AttachNotify(numAttached int)
}

// AttachPt is a generic single-slot attachment point.
// T represents the interface type being attached.
type AttachPt[T any] struct {
	enabled     bool
	hasAttached bool
	notifier    ComponentAttachNotifier
	comp        T
}

// NewAttachPt creates a new attachment point.
func NewAttachPt[T any]() *AttachPt[T] {
	return &AttachPt[T]{
		enabled: true,
	}
}

// Attach attaches an interface of type T to the attachment point.
func (a *AttachPt[T]) Attach(comp T) error {
	if a.hasAttached {
		return NewErrorMsg(dbg.ErrSevError, dbg.ErrFail, "attach point already in use")
	}
	a.comp = comp
	a.hasAttached = true
	if a.notifier != nil {
		a.notifier.AttachNotify(1)
	}
	return nil
}

// Detach detaches the current component from the attachment point.
func (a *AttachPt[T]) Detach() error {
	if !a.hasAttached {
		return NewErrorMsg(dbg.ErrSevError, dbg.ErrFail, "nothing attached")
	}
	var empty T
	a.comp = empty
	a.hasAttached = false
	if a.notifier != nil {
		a.notifier.AttachNotify(0)
	}
	return nil
}

// ReplaceFirst detaches any currently attached component and attaches the new one.
func (a *AttachPt[T]) ReplaceFirst(comp T) error {
	if a.hasAttached {
		_ = a.Detach()
	}
	return a.Attach(comp)
}

// First returns the current attached interface.
// The caller should check HasAttachedAndEnabled before using it.
func (a *AttachPt[T]) First() T {
	if !a.enabled {
		var empty T
		return empty
	}
	return a.comp
}

// SetNotifier sets the notification interface.
func (a *AttachPt[T]) SetNotifier(notifier ComponentAttachNotifier) {
	a.notifier = notifier
}

// Enabled returns true if the attachment point is enabled.
func (a *AttachPt[T]) Enabled() bool {
	return a.enabled
}

// SetEnabled sets the enabled state.
func (a *AttachPt[T]) SetEnabled(enable bool) {
	a.enabled = enable
}

// HasAttached returns true if there is an attached interface.
func (a *AttachPt[T]) HasAttached() bool {
	return a.hasAttached
}

// HasAttachedAndEnabled returns true if there is an attachment and it is enabled.
func (a *AttachPt[T]) HasAttachedAndEnabled() bool {
	return a.hasAttached && a.enabled
}

// Component is the base struct for named session components.
// It provides logger attachment and severity filtering.
type Component struct {
	name      string
	logger    AttachPt[Logger]
	verbosity Severity
}

// InitComponent initializes a Component. This is favored over a constructor
// so it can be safely embedded and initialized in place.
func (c *Component) InitComponent(name string) {
	c.name = name
	c.verbosity = SeverityDebug
	c.logger.enabled = true
}

// ComponentName returns the component's name.
func (c *Component) ComponentName() string {
	return c.name
}

// LoggerAttachPt returns the logger attachment point.
func (c *Component) LoggerAttachPt() *AttachPt[Logger] {
	return &c.logger
}

// SetLogger replaces any attached logger.
func (c *Component) SetLogger(l Logger) {
	_ = c.logger.ReplaceFirst(l)
}

// SetLogLevel sets the lowest severity this component forwards.
func (c *Component) SetLogLevel(level Severity) {
	c.verbosity = level
}

// LogLevel returns the lowest severity this component forwards.
func (c *Component) LogLevel() Severity {
	return c.verbosity
}

// Logf logs a formatted message if a logger is attached and the level passes.
func (c *Component) Logf(severity Severity, format string, args ...interface{}) {
	if severity < c.verbosity || !c.logger.HasAttachedAndEnabled() {
		return
	}
	c.logger.First().Log(severity, c.name+": "+fmt.Sprintf(format, args...))
}

// LogError logs err at error severity.
func (c *Component) LogError(err error) {
	if err == nil {
		return
	}
	c.Logf(SeverityError, "%v", err)
}
