// Package api exposes the HTTP surface: health probe, model listing and
// the chat endpoints (plain JSON and SSE streaming).
package api
