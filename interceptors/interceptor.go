package interceptors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/glimte/hedwig-go/contracts"
)

// MessageHandler represents a message handler in the interceptor chain
type MessageHandler interface {
	Handle(ctx context.Context, msg contracts.Message) error
}

// MessageHandlerFunc is a function adapter for MessageHandler
type MessageHandlerFunc func(ctx context.Context, msg contracts.Message) error

// Handle implements MessageHandler
func (f MessageHandlerFunc) Handle(ctx context.Context, msg contracts.Message) error {
	return f(ctx, msg)
}

// Interceptor processes messages before they reach the final handler
type Interceptor interface {
	// Intercept processes a message and calls the next handler in the chain
	Intercept(ctx context.Context, msg contracts.Message, next MessageHandler) error

	// Name returns the interceptor name for logging and debugging
	Name() string
}

// InterceptorFunc is a function adapter for Interceptor
type InterceptorFunc struct {
	name string
	fn   func(ctx context.Context, msg contracts.Message, next MessageHandler) error
}

// NewInterceptorFunc creates a new function-based interceptor
func NewInterceptorFunc(name string, fn func(ctx context.Context, msg contracts.Message, next MessageHandler) error) *InterceptorFunc {
	return &InterceptorFunc{name: name, fn: fn}
}

// Intercept implements Interceptor
func (i *InterceptorFunc) Intercept(ctx context.Context, msg contracts.Message, next MessageHandler) error {
	return i.fn(ctx, msg, next)
}

// Name implements Interceptor
func (i *InterceptorFunc) Name() string {
	return i.name
}

// InterceptorChain manages a chain of interceptors
type InterceptorChain struct {
	interceptors []Interceptor
	logger       *slog.Logger
}

// NewInterceptorChain creates a new interceptor chain
func NewInterceptorChain(logger *slog.Logger) *InterceptorChain {
	if logger == nil {
		logger = slog.Default()
	}

	return &InterceptorChain{
		interceptors: make([]Interceptor, 0),
		logger:       logger,
	}
}

// Add adds an interceptor to the chain
func (c *InterceptorChain) Add(interceptor Interceptor) *InterceptorChain {
	c.interceptors = append(c.interceptors, interceptor)
	return c
}

// Execute executes the interceptor chain
func (c *InterceptorChain) Execute(ctx context.Context, msg contracts.Message, finalHandler MessageHandler) error {
	if len(c.interceptors) == 0 {
		return finalHandler.Handle(ctx, msg)
	}

	// Build the chain in reverse order
	handler := finalHandler
	for i := len(c.interceptors) - 1; i >= 0; i-- {
		interceptor := c.interceptors[i]
		currentHandler := handler
		handler = MessageHandlerFunc(func(ctx context.Context, msg contracts.Message) error {
			return interceptor.Intercept(ctx, msg, currentHandler)
		})
	}

	return handler.Handle(ctx, msg)
}

// Built-in interceptors

// LoggingInterceptor logs message processing
type LoggingInterceptor struct {
	logger *slog.Logger
}

// NewLoggingInterceptor creates a new logging interceptor
func NewLoggingInterceptor(logger *slog.Logger) *LoggingInterceptor {
	if logger == nil {
		logger = slog.Default()
	}

	return &LoggingInterceptor{logger: logger}
}

// Intercept implements Interceptor
func (i *LoggingInterceptor) Intercept(ctx context.Context, msg contracts.Message, next MessageHandler) error {
	start := time.Now()

	i.logger.InfoContext(ctx, "processing message",
		"messageId", msg.GetID(),
		"schema", msg.GetSchema(),
	)

	err := next.Handle(ctx, msg)
	duration := time.Since(start)

	if err != nil {
		i.logger.ErrorContext(ctx, "message processing failed",
			"messageId", msg.GetID(),
			"schema", msg.GetSchema(),
			"duration", duration,
			"error", err,
		)
	} else {
		i.logger.InfoContext(ctx, "message processed successfully",
			"messageId", msg.GetID(),
			"schema", msg.GetSchema(),
			"duration", duration,
		)
	}

	return err
}

// Name implements Interceptor
func (i *LoggingInterceptor) Name() string {
	return "LoggingInterceptor"
}

// UnknownMessageType labels metrics for messages whose type could not be established
const UnknownMessageType = "unknown"

// MessageTypeLabel derives the message type label recorded for a message
type MessageTypeLabel func(msg contracts.Message) string

// MetricsInterceptor collects metrics about message processing
type MetricsInterceptor struct {
	collector MetricsCollector
	label     MessageTypeLabel
}

// MetricsCollector defines the interface for collecting metrics
type MetricsCollector interface {
	IncrementMessageCount(messageType string)
	RecordProcessingTime(messageType string, duration time.Duration)
	IncrementErrorCount(messageType string, errorType string)
}

// NewMetricsInterceptor creates a new metrics interceptor
func NewMetricsInterceptor(collector MetricsCollector) *MetricsInterceptor {
	return &MetricsInterceptor{collector: collector}
}

// WithLabel sets how the message type label is derived. Use it when message
// schema references come from untrusted input, so the label set stays bounded.
func (i *MetricsInterceptor) WithLabel(label MessageTypeLabel) *MetricsInterceptor {
	i.label = label
	return i
}

func (i *MetricsInterceptor) messageType(msg contracts.Message) string {
	if i.label == nil {
		return msg.GetMessageType()
	}
	if t := i.label(msg); t != "" {
		return t
	}
	return UnknownMessageType
}

// Intercept implements Interceptor
func (i *MetricsInterceptor) Intercept(ctx context.Context, msg contracts.Message, next MessageHandler) error {
	start := time.Now()
	messageType := i.messageType(msg)

	i.collector.IncrementMessageCount(messageType)

	err := next.Handle(ctx, msg)
	duration := time.Since(start)

	i.collector.RecordProcessingTime(messageType, duration)

	if err != nil {
		i.collector.IncrementErrorCount(messageType, ErrorType(err))
	}

	return err
}

// Name implements Interceptor
func (i *MetricsInterceptor) Name() string {
	return "MetricsInterceptor"
}

// ErrorType classifies an error for metrics: the validation reason, or "processing_error"
func ErrorType(err error) string {
	var ve *contracts.ValidationError
	if errors.As(err, &ve) {
		return string(ve.Reason)
	}
	return "processing_error"
}

// ValidationInterceptor validates messages before processing
type ValidationInterceptor struct {
	validator MessageValidator
	onInvalid InvalidMessageHandler
}

// MessageValidator defines the interface for message validation
type MessageValidator interface {
	Validate(ctx context.Context, msg contracts.Message) error
}

// MessageValidatorFunc is a function adapter for MessageValidator
type MessageValidatorFunc func(ctx context.Context, msg contracts.Message) error

// Validate implements MessageValidator
func (f MessageValidatorFunc) Validate(ctx context.Context, msg contracts.Message) error {
	return f(ctx, msg)
}

// InvalidMessageHandler decides what happens to a message that failed validation.
// Returning nil acknowledges the message without calling the next handler.
type InvalidMessageHandler interface {
	HandleInvalid(ctx context.Context, msg contracts.Message, err error) error
}

// InvalidMessageHandlerFunc is a function adapter for InvalidMessageHandler
type InvalidMessageHandlerFunc func(ctx context.Context, msg contracts.Message, err error) error

// HandleInvalid implements InvalidMessageHandler
func (f InvalidMessageHandlerFunc) HandleInvalid(ctx context.Context, msg contracts.Message, err error) error {
	return f(ctx, msg, err)
}

// DropInvalid logs invalid messages and drops them
func DropInvalid(logger *slog.Logger) InvalidMessageHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return InvalidMessageHandlerFunc(func(ctx context.Context, msg contracts.Message, err error) error {
		attrs := []any{
			"messageId", msg.GetID(),
			"schema", msg.GetSchema(),
			"reason", ErrorType(err),
		}
		var ve *contracts.ValidationError
		if errors.As(err, &ve) && len(ve.Violations) > 0 {
			attrs = append(attrs, "violations", ve.Violations)
		}
		logger.WarnContext(ctx, "dropping invalid message", attrs...)
		return nil
	})
}

// NewValidationInterceptor creates a new validation interceptor that rejects invalid messages
func NewValidationInterceptor(validator MessageValidator) *ValidationInterceptor {
	return &ValidationInterceptor{validator: validator}
}

// OnInvalid sets the handler for invalid messages
func (i *ValidationInterceptor) OnInvalid(handler InvalidMessageHandler) *ValidationInterceptor {
	i.onInvalid = handler
	return i
}

// Intercept implements Interceptor
func (i *ValidationInterceptor) Intercept(ctx context.Context, msg contracts.Message, next MessageHandler) error {
	if err := i.validator.Validate(ctx, msg); err != nil {
		if i.onInvalid != nil {
			return i.onInvalid.HandleInvalid(ctx, msg, err)
		}
		return fmt.Errorf("message validation failed: %w", err)
	}

	return next.Handle(ctx, msg)
}

// Name implements Interceptor
func (i *ValidationInterceptor) Name() string {
	return "ValidationInterceptor"
}

// Default interceptor chain builder

// DefaultInterceptorChainBuilder builds a common interceptor chain
type DefaultInterceptorChainBuilder struct {
	chain  *InterceptorChain
	logger *slog.Logger
}

// NewDefaultInterceptorChainBuilder creates a new builder
func NewDefaultInterceptorChainBuilder(logger *slog.Logger) *DefaultInterceptorChainBuilder {
	if logger == nil {
		logger = slog.Default()
	}

	return &DefaultInterceptorChainBuilder{
		chain:  NewInterceptorChain(logger),
		logger: logger,
	}
}

// WithLogging adds logging interceptor
func (b *DefaultInterceptorChainBuilder) WithLogging() *DefaultInterceptorChainBuilder {
	b.chain.Add(NewLoggingInterceptor(b.logger))
	return b
}

// WithMetrics adds metrics interceptor
func (b *DefaultInterceptorChainBuilder) WithMetrics(collector MetricsCollector) *DefaultInterceptorChainBuilder {
	b.chain.Add(NewMetricsInterceptor(collector))
	return b
}

// WithLabeledMetrics adds metrics interceptor with a custom message type label
func (b *DefaultInterceptorChainBuilder) WithLabeledMetrics(collector MetricsCollector, label MessageTypeLabel) *DefaultInterceptorChainBuilder {
	b.chain.Add(NewMetricsInterceptor(collector).WithLabel(label))
	return b
}

// WithValidation adds validation interceptor that rejects invalid messages
func (b *DefaultInterceptorChainBuilder) WithValidation(validator MessageValidator) *DefaultInterceptorChainBuilder {
	b.chain.Add(NewValidationInterceptor(validator))
	return b
}

// WithValidationPolicy adds validation interceptor with a custom invalid-message handler
func (b *DefaultInterceptorChainBuilder) WithValidationPolicy(validator MessageValidator, onInvalid InvalidMessageHandler) *DefaultInterceptorChainBuilder {
	b.chain.Add(NewValidationInterceptor(validator).OnInvalid(onInvalid))
	return b
}

// WithCustom adds a custom interceptor
func (b *DefaultInterceptorChainBuilder) WithCustom(interceptor Interceptor) *DefaultInterceptorChainBuilder {
	b.chain.Add(interceptor)
	return b
}

// Build returns the built interceptor chain
func (b *DefaultInterceptorChainBuilder) Build() *InterceptorChain {
	return b.chain
}
