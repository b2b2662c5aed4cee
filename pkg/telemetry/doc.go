// Package telemetry provides observability for the composition runtime:
// structured logging via zerolog, Prometheus metrics for pass and scope
// activity, and the optional loom.yaml configuration that drives both.
//
// Hosts that want runtime logs install a logger on the Composer:
//
//	cfg, _ := telemetry.LoadOptional(".")
//	logger, _ := telemetry.NewLogger(cfg.Logging)
//	composer.SetLogger(logger)
//
// Metrics register lazily on first use; ServeMetrics exposes them over
// HTTP when enabled in the config.
package telemetry
