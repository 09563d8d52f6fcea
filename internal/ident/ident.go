// Package ident allocates short reference identifiers.
//
// Identifiers are drawn from [a-z0-9] with an alphabetic first
// character, so every issued name is a valid PHP variable name. The
// successor order exhausts all shorter names before introducing longer
// ones, keeping the average reference token as small as possible.
package ident

// First is the first identifier in the allocation order.
const First = "a"

// Next returns the successor of name.
//
// The name is treated as a mixed-radix counter scanned from its last
// character backward: digits 0-8 and letters a-y increment in place,
// '9' rolls over to 'a' without carrying, and 'z' rolls over to '0'
// and carries into the preceding position. When every position
// carries, an 'a' is prepended and the name grows by one character.
func Next(name string) string {
	b := []byte(name)
	for i := len(b) - 1; i >= 0; i-- {
		switch b[i] {
		case '9':
			b[i] = 'a'
			return string(b)
		case 'z':
			b[i] = '0'
		default:
			b[i]++
			return string(b)
		}
	}
	return "a" + string(b)
}
