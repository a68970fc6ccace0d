// Package dna implements IUPAC-aware DNA alphabet operations: sequence
// normalization, validation, and reverse-complementing of both concrete
// sequences and ambiguity-coded PAM patterns.
package dna

import (
	"fmt"
	"strings"
)

var complement [256]byte

var iupacMask [256]byte // bit0=A bit1=C bit2=G bit3=T

func init() {
	setComplement := func(c, rc byte) { complement[c] = rc }
	setComplement('A', 'T')
	setComplement('C', 'G')
	setComplement('G', 'C')
	setComplement('T', 'A')
	setComplement('R', 'Y')
	setComplement('Y', 'R')
	setComplement('S', 'S')
	setComplement('W', 'W')
	setComplement('K', 'M')
	setComplement('M', 'K')
	setComplement('B', 'V')
	setComplement('V', 'B')
	setComplement('D', 'H')
	setComplement('H', 'D')
	setComplement('N', 'N')

	set := func(c byte, bits byte) { iupacMask[c] = bits }
	set('A', 1)       // 0001
	set('C', 2)       // 0010
	set('G', 4)       // 0100
	set('T', 8)       // 1000
	set('R', 1|4)     // A/G
	set('Y', 2|8)     // C/T
	set('S', 2|4)     // C/G
	set('W', 1|8)     // A/T
	set('K', 4|8)     // G/T
	set('M', 1|2)     // A/C
	set('B', 2|4|8)   // C/G/T
	set('D', 1|4|8)   // A/G/T
	set('H', 1|2|8)   // A/C/T
	set('V', 1|2|4)   // A/C/G
	set('N', 1|2|4|8) // any
}

// bases is the concrete alphabet that a genome sequence or a realized
// PAM letter must resolve to.
var bases = [4]byte{'A', 'C', 'G', 'T'}

// Normalize trims whitespace and uppercases s.
func Normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// ValidateDNA fails if any character of s falls outside the IUPAC
// alphabet (A,C,G,T,N and the extended ambiguity codes).
func ValidateDNA(s string) error {
	for i := 0; i < len(s); i++ {
		if iupacMask[s[i]] == 0 {
			return fmt.Errorf("dna: invalid base %q at position %d", s[i], i)
		}
	}
	return nil
}

// ValidatePAM is ValidateDNA with a PAM-specific error message; PAM
// patterns share the IUPAC alphabet with genomic sequence.
func ValidatePAM(s string) error {
	for i := 0; i < len(s); i++ {
		if iupacMask[s[i]] == 0 {
			return fmt.Errorf("dna: invalid PAM base %q at position %d", s[i], i)
		}
	}
	return nil
}

// ReverseComplement returns the reverse complement of s. IUPAC
// ambiguity codes map to their complement class; unrecognized bytes
// pass through as 'N'.
func ReverseComplement(s string) string {
	n := len(s)
	if n == 0 {
		return ""
	}
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		c := complement[s[n-1-i]]
		if c == 0 {
			c = 'N'
		}
		out[i] = c
	}
	return string(out)
}

// ExpandIUPAC enumerates every concrete A/C/G/T realization of an
// ambiguity-coded pattern such as a PAM. N expands to all four bases;
// unambiguous positions contribute a single base.
func ExpandIUPAC(pattern string) []string {
	if pattern == "" {
		return []string{""}
	}
	var out []string
	var rec func(prefix string, i int)
	rec = func(prefix string, i int) {
		if i == len(pattern) {
			out = append(out, prefix)
			return
		}
		mask := iupacMask[pattern[i]]
		for _, b := range bases {
			if mask&iupacMask[b] != 0 {
				rec(prefix+string(b), i+1)
			}
		}
	}
	rec("", 0)
	return out
}
