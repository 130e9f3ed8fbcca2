// Package html normalises the HTML fragments the search service returns as
// match snippets and page titles. Entities are decoded, tags are dropped,
// script and style contents are removed and whitespace is collapsed.
// Spans wrapped in <mark> survive as marked segments.
package html
