// Package parse segments raw grocery text into (name, quantity) pairs.
//
// Deterministic rules handle almost everything: multi-line lists, comma or
// "and" separated batches, and a leading amount such as "2 lbs". Only a single
// segment that still looks complicated (a stray amount, or a very long
// sentence) is sent to an ai.FreeformParser. Each result carries the
// confidence of the rule that produced it.
package parse
