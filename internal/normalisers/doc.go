// Package normalisers turns markup supplied by the search service into text
// that terminals and JSON consumers can show as is.
package normalisers
