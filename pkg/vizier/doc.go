// Package vizier implements a cone-search client for the VizieR TAP
// service.
//
// [Client] translates a (catalog, sky position, radius) request into an
// ADQL cone search, serializes every outbound request through one rate
// limiter, retries transient failures, and caches parsed results under
// a quantized spatial key with a fixed TTL.
//
// Usage:
//
//	client := vizier.NewClient()
//	defs := catalog.DefaultRegistry().All()
//	results, err := client.QueryMultipleCatalogs(ctx, defs, 180.0, 35.0, 30)
//
// The wire format is CSV (TAP FORMAT=csv): simpler to parse than
// VOTable and sufficient for positional overlays, since only RA/Dec are
// interpreted and all other columns ride along as strings.
package vizier
