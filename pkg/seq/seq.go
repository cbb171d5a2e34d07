package seq

import "strings"

var complement [256]byte

func init() {
	for i := range complement {
		complement[i] = 'N'
	}
	pairs := []string{"AT", "CG", "RY", "KM", "SS", "WW", "BV", "DH", "NN"}
	for _, p := range pairs {
		a, b := p[0], p[1]
		complement[a], complement[b] = b, a
		la, lb := a+('a'-'A'), b+('a'-'A')
		complement[la], complement[lb] = lb, la
	}
	complement['-'] = '-'
}

// Complement returns the complementary base of b.
func Complement(b byte) byte { return complement[b] }

// ReverseComplement returns the reverse complement of s.
func ReverseComplement(s string) string {
	n := len(s)
	var sb strings.Builder
	sb.Grow(n)
	for i := n - 1; i >= 0; i-- {
		sb.WriteByte(complement[s[i]])
	}
	return sb.String()
}

// Rotate returns s rotated left by k positions, so that the result starts at
// s[k]. k is reduced modulo len(s); negative values rotate right.
func Rotate(s string, k int) string {
	n := len(s)
	if n == 0 {
		return s
	}
	k %= n
	if k < 0 {
		k += n
	}
	if k == 0 {
		return s
	}
	return s[k:] + s[:k]
}

// IsNucleotide reports whether b is an IUPAC nucleotide code or a gap.
func IsNucleotide(b byte) bool {
	switch b {
	case 'N', 'n', '-':
		return true
	}
	return complement[b] != 'N'
}

// Valid reports the index of the first non-nucleotide byte in s, or -1.
func Valid(s string) int {
	for i := 0; i < len(s); i++ {
		if !IsNucleotide(s[i]) {
			return i
		}
	}
	return -1
}

// FirstDiff returns the first index where a and b differ. When one is a
// prefix of the other it returns the shorter length; when equal it returns -1.
func FirstDiff(a, b string) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	if len(a) != len(b) {
		return n
	}
	return -1
}
