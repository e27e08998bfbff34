package catalog

import (
	"cmp"
	"strings"
)

// CompareNames orders names case-insensitively, comparing runs of digits by
// their numeric value so "track2" sorts before "track10".
func CompareNames(a, b string) int {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	i, j := 0, 0
	for i < len(la) && j < len(lb) {
		if isDigit(la[i]) && isDigit(lb[j]) {
			si, sj := i, j
			for i < len(la) && isDigit(la[i]) {
				i++
			}
			for j < len(lb) && isDigit(lb[j]) {
				j++
			}
			na := strings.TrimLeft(la[si:i], "0")
			nb := strings.TrimLeft(lb[sj:j], "0")
			if len(na) != len(nb) {
				return cmp.Compare(len(na), len(nb))
			}
			if c := strings.Compare(na, nb); c != 0 {
				return c
			}
			continue
		}
		if la[i] != lb[j] {
			return cmp.Compare(la[i], lb[j])
		}
		i++
		j++
	}
	if c := cmp.Compare(len(la)-i, len(lb)-j); c != 0 {
		return c
	}
	// Stable tie break for names equal up to case or leading zeros.
	return strings.Compare(a, b)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
