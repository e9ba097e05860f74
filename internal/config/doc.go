// Package config loads vtree runtime configuration.
//
// Configuration lives in vtree.yaml (or vtree.yml, or vtree.json) at the
// project root. Durations are written as Go duration strings.
//
// # Configuration File Structure
//
//	runtime:
//	  tickInterval: 16ms
//	  maxScopesPerTick: 0   # 0 = unlimited
//	  queueLimit: 256
//	  historySize: 100
//	  debug: false          # render twice and compare
//	server:
//	  addr: ":8080"
//	  path: /ws
//	  readTimeout: 60s
//	  writeTimeout: 10s
//	  heartbeat: 30s
//	  allowedOrigins: ["https://example.com"]
//	archive:
//	  bucket: my-bucket     # empty disables archiving
//	  prefix: vtree/
//	  region: eu-west-1
//	  interval: 1m
//	log:
//	  level: info
//	  format: text
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	rt := runtime.New(backend, runtime.WithConfig(cfg.RuntimeConfig()))
package config
