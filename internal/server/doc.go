// Package server assembles the storefront HTTP server.
//
// Routes, relative to the configured base path:
//
//	GET /api/products, /api/products/{id}, /api/categories   catalog API
//	GET /live                                                 live session websocket
//	GET /_storefront/live.js                                  live client
//	GET /static/*                                             static files, when configured
//	GET /*                                                    server-rendered pages
//
// /healthz and the metrics path are served at the root.
package server
