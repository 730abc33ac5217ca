// Package handlers contains the JSON endpoints of the preview server.
//
// Handlers use the foundation/errors HTTP adapter for error responses and
// the server/responses package for payload types.
package handlers
