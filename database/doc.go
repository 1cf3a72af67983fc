// Package database owns the connection to the relational store: YAML and
// environment configuration, a Bun-backed connection manager with health
// checks, query hooks for logging and Prometheus metrics, the model registry,
// migrations with foreign keys, data initializers and SQL error classification.
package database
