// Package server exposes the bridge over HTTP using Gin, served with h2c so
// HTTP/2 clients can stream large bundles without TLS.
//
// Routes:
//
//	POST   /v1/transcriptions[?confidence=true]
//	GET    /v1/languages
//	GET    /v1/workers
//	POST   /v1/workers
//	POST   /v1/workers/:id/transcriptions
//	DELETE /v1/workers/:id
//	GET    /health
//	GET    /version
//
// Every route runs behind the middleware stack in server/middleware:
// recovery, request id, CORS, body size limit and request logging.
//
// A request waits for its job's completion up to Config.RequestTimeout and
// then answers 504 TIMEOUT. The job keeps running and its late completion is
// discarded.
package server
