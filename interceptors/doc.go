// Package interceptors provides the message-processing pipeline that sits in
// front of hedwig message handlers.
//
// Built-in interceptors:
//   - LoggingInterceptor: Logs message processing with timing information
//   - MetricsInterceptor: Collects counts, durations and failures by reason
//   - ValidationInterceptor: Validates messages against the schema document and
//     applies the configured policy to invalid ones (reject by default, or a
//     custom InvalidMessageHandler such as DropInvalid or a dead-letter hook)
//
// Example usage:
//
//	chain := interceptors.NewDefaultInterceptorChainBuilder(logger).
//		WithLogging().
//		WithMetrics(collector).
//		WithValidation(validator).
//		Build()
//
//	err := chain.Execute(ctx, message, finalHandler)
//
// Interceptors are executed in the order they are added to the chain, with the
// final handler being called last.
package interceptors
