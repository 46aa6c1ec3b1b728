// Package circuits contains gnark definitions of the note constraints that do
// not depend on the hash function: amount range and balance, and ownership of
// a BabyJubJub key. Assignments are built from the native values used by the
// pipeline package, so the same witness can be checked natively and in a
// constraint system.
//
// Points are assigned in the reduced twisted Edwards form used by gnark, the
// conversion from circomlib coordinates is done by the assignment builders.
package circuits
