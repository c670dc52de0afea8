// Package infra holds the adapters behind the scheduling core: Prometheus,
// InfluxDB and SQLite metric sinks, the MQTT event publisher, Sentry error
// reporting and zerolog logging. Nothing under core imports these packages.
package infra
