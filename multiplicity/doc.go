/*
Package multiplicity computes occurrence indexes for repeating structures.

An index list holds one 1-based counter per repeating ancestor of a path,
root first. Two trackers are offered:

Declared is built from the set of paths a schema declares as arrays. It
suits JSON, where arrays are explicit and the schema names them.

Reentry needs no declarations. It infers repetition when an element name
re-appears under the same parent instance, which is the only signal XML
offers. Every level below the configured root levels is a potential
repeater and so carries a counter.

Both trackers do work proportional to the path depth per call, so memory
and time stay bounded regardless of how many elements have been seen.
*/
package multiplicity
