// Package normalize contains the per-field normalizers applied by the Silver
// layer. Every normalizer is a total function: malformed input resolves to
// the typed null for that field, never to an error.
package normalize
