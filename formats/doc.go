// Package formats turns source files into chunks and PDF previews.
//
// Each supported file family has a Provider. A Registry holds providers in
// registration order and hands out the first one whose matcher accepts a
// file; by default matching is a case-insensitive suffix test on the file
// name. Providers validate chunk size and overlap before doing any work
// and never modify the files they are given.
package formats
