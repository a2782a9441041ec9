// Package normalize canonicalizes raw grocery item text into the lookup key
// used across the system.
//
// A normalized name is trimmed, Unicode NFKC folded, lowercased, has internal
// whitespace collapsed to single spaces, and is finally passed through a static
// synonym table ("scallions" becomes "green onions"). Normalize is idempotent.
package normalize
