// Package config provides configuration management for the graph compiler.
//
// Configuration is loaded from environment variables using the env package.
// All configuration values have sensible defaults for local use: a file
// bundle cache under .dagoc/cache, JSON bundles and no event bus.
//
// Example usage:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Printf("HTTP server will listen on %s\n", cfg.GetHTTPAddr())
package config
