// Package binder decodes HTTP requests into typed values for handler.Wrap.
//
// JSON reads a strict, size-limited application/json body. Path copies route
// parameters into string fields tagged `path:"name"`.
package binder
