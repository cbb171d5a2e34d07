// Package seq provides nucleotide sequence helpers shared by the graph model,
// the marginalizer and the consistency checker.
//
// Sequences are plain Go strings over the IUPAC nucleotide alphabet. Case is
// preserved by [ReverseComplement]; characters outside the alphabet map to 'N'.
package seq
