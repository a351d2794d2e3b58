// Package source defines SourceFile, the value passed between every stage
// of the document pipeline, together with helpers for allocating temporary
// files whose lifetime is bound to a single call.
package source
