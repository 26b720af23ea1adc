// Package hexdump renders a byte slice as a hex/ASCII dump, for
// blockfsctl's dump command and ad-hoc debugging of block contents.
package hexdump

import "fmt"

// Dump renders b in xxd-like rows of bytesPerRow bytes: an 8-digit hex
// offset, the bytes in hex grouped every 8, and the printable ASCII
// rendering of the row.
func Dump(b []byte, bytesPerRow int) string {
	var out string
	numRows := len(b) / bytesPerRow
	if len(b)%bytesPerRow != 0 {
		numRows++
	}
	for i := 0; i < numRows; i++ {
		first := i * bytesPerRow
		last := first + bytesPerRow

		row := fmt.Sprintf("%08x ", first)
		var ascii []byte
		for j := first; j < last; j++ {
			if j%8 == 0 {
				row += " "
			}
			if j < len(b) {
				row += fmt.Sprintf(" %02x", b[j])
				switch {
				case b[j] < 32 || b[j] > 126:
					ascii = append(ascii, '.')
				default:
					ascii = append(ascii, b[j])
				}
			} else {
				row += "   "
				ascii = append(ascii, ' ')
			}
		}
		row += fmt.Sprintf("  %s\n", string(ascii))
		out += row
	}
	return out
}
