// Package pixconv implements the bit-exact pixel conversion kernels the
// decode paths share: per-format row conversion into 32-bit canonical
// pixels, 16-to-32-bit component expansion, and packed-bit utilities.
package pixconv

// reverseTable maps each byte to its bit-reversed value.
var reverseTable = func() (t [256]byte) {
	for i := range t {
		b := byte(i)
		var r byte
		for j := 0; j < 8; j++ {
			r = r<<1 | b&1
			b >>= 1
		}
		t[i] = r
	}
	return
}()

// ReverseBits returns b with its bit order reversed.
func ReverseBits(b byte) byte { return reverseTable[b] }

// TestBitBE reports bit i of a packed row, most significant bit first
// within each byte.
func TestBitBE(row []byte, i int) bool {
	return row[i>>3]&(0x80>>(i&7)) != 0
}

// TestBitLE reports bit i of a packed row, least significant bit first
// within each byte.
func TestBitLE(row []byte, i int) bool {
	return row[i>>3]&(1<<(i&7)) != 0
}

// PutBitsLSB ORs n bits (n <= 8) of val into dst at bit offset off.
// Source bits are taken most significant first; the destination is
// LSB-first packed, so the value is bit-reversed on the way in.
func PutBitsLSB(dst []byte, off int, val byte, n int) {
	i := off >> 3
	off &= 7

	now := 8 - off
	if n < now {
		now = n
	}

	v := reverseTable[val]
	mask := byte((1<<now)-1) << off
	dst[i] |= (v << off) & mask

	if n -= now; n > 0 {
		mask = byte(1<<n) - 1
		dst[i+1] |= (v >> now) & mask
	}
}

// PutRowLSB ORs n bits of the MSB-first packed src row into dst at bit
// offset off, converting to LSB-first packing.
func PutRowLSB(dst []byte, off int, src []byte, n int) {
	for i := 0; n > 0; i++ {
		now := n
		if now > 8 {
			now = 8
		}
		PutBitsLSB(dst, off, src[i], now)
		off += now
		n -= now
	}
}
