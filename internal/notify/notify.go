package notify

import (
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// IngestFinished is emitted after the backend accepted an ingest trigger
const IngestFinished = "ingest-finished"

// ErrDeliveryFailed is returned when an event cannot reach the UI layer
var ErrDeliveryFailed = errors.New("notification delivery failed")

// Notification is the payload of every UI event
type Notification struct {
	Message string `json:"message"`
}

// Sink delivers a named event to the UI layer
type Sink interface {
	Emit(event string, payload interface{}) error
}

// Toaster shows an OS-level notification
type Toaster func(title, message string) error

// Emitter sends notifications to the UI and optionally to the desktop
type Emitter struct {
	sink   Sink
	toast  Toaster
	title  string
	logger *zap.Logger
}

// NewEmitter creates a new emitter. toast may be nil.
func NewEmitter(sink Sink, toast Toaster, title string, logger *zap.Logger) *Emitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Emitter{
		sink:   sink,
		toast:  toast,
		title:  title,
		logger: logger,
	}
}

// Emit sends {message} under eventName. Delivery is fire-and-forget; the
// returned error is for the caller to log.
func (e *Emitter) Emit(eventName, message string) error {
	payload := Notification{Message: message}

	if e.sink == nil {
		return fmt.Errorf("%w: %s: no UI attached", ErrDeliveryFailed, eventName)
	}
	if _, err := json.Marshal(payload); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrDeliveryFailed, eventName, err)
	}
	if err := e.sink.Emit(eventName, payload); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrDeliveryFailed, eventName, err)
	}

	e.logger.Info("Notification emitted",
		zap.String("event", eventName),
		zap.String("message", message))

	if e.toast != nil {
		if err := e.toast(e.title, message); err != nil {
			e.logger.Warn("Desktop notification failed", zap.Error(err))
		}
	}

	return nil
}
