// Package errors provides the classified error primitives used across portfolio-docs.
//
// Every failure the generator can report falls into an ErrorCategory (config,
// content, links, render, ...) and carries an ErrorSeverity. The CLI adapter
// turns categories into process exit codes; the HTTP adapter turns them into
// status codes for the preview server.
//
// Example usage:
//
//	err := errors.LinkError("broken internal link").
//		WithContext("page", "/docs/intro/").
//		WithContext("target", "/docs/missing/").
//		Build()
package errors
