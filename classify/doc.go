// Package classify maps normalized item names onto store aisles.
//
// A Classifier runs a fixed cascade and returns the first match:
//
//  1. a record in the knowledge store, whatever its source
//  2. the whole name in the exact table
//  3. the first word of the name, left to right, found in the exact table
//  4. the longest keyword that matches whole words of the name
//  5. the longest keyword that is a substring of the name
//  6. CategoryOther
//
// Keywords are tried longest first and alphabetically within one length, so
// "ground beef" is considered before "beef" and results are deterministic.
// Classification never fails; lookup errors count as a miss.
package classify
