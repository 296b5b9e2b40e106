// Package config loads the storefront server configuration.
//
// Configuration lives in storefront.toml or storefront.json at the project
// root; when both exist the TOML file wins, and when neither exists the
// defaults from New are used.
//
// # Configuration File Structure
//
//	[server]
//	addr = ":8080"
//	base = "/shop"
//	static = "public"
//
//	[catalog]
//	fixture = "data/products.yaml"
//	watch = true
//
//	[storage]
//	backend = "sql"
//	cartKey = "shopping_cart"
//
//	[storage.sql]
//	driver = "sqlite3"
//	dsn = "file:storefront.db"
//
//	[metrics]
//	enabled = true
//
//	[log]
//	level = "debug"
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package config
