// Package build runs the site build pipeline for portfolio-docs.
//
// A build is a single synchronous pass through fixed stages: config,
// discover, render, assemble, static, feeds, verify and record. Every
// execution path (the build command, the preview server, tests) goes
// through Builder.Run or Builder.Rebuild.
package build
