// Package config loads the distress engine configuration.
//
// # Configuration Sources
//
// Values are applied in increasing order of precedence:
//
//	1. Default()
//	2. A YAML file: $DISTRESS_CONFIG, distress.yaml, config.yaml, configs/distress.yaml or configs/config.yaml
//	3. DISTRESS_* environment variables
//
// # Environment Variables
//
// Nested sections map to underscored names:
//
//	DISTRESS_SERVER_PORT=8080
//	DISTRESS_SERVER_RATE_LIMIT_RPS=100
//	DISTRESS_LOGGING_LEVEL=debug
//	DISTRESS_ENGINE_CONCURRENCY=8
//	DISTRESS_REPORT_FORMAT=both
//	DISTRESS_TELEMETRY_TRACE_EXPORTER=stdout
//
// The quarter calendar can only be set from the file:
//
//	engine:
//	  quarters:
//	    - {label: "Q3 2022", period_end: "2022-09-30"}
//	    ...
//
// Relative report and log paths in a file resolve against the file's directory.
package config
