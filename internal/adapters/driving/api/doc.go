// Package api serves the datasets HTTP API used by datahub serve.
//
// Endpoints:
//
//	GET  /api/datasets   listing with provenance; always 200
//	POST /api/datasets   create one record
//	GET  /api/facets     file type and tag vocabularies
//	GET  /api/stats      record counts
//	GET  /healthz        liveness
//	GET  /metrics        Prometheus exposition
//
// The listing endpoint bypasses the upstream cache when the request
// carries "Cache-Control: no-cache" or "?refresh=1".
package api
