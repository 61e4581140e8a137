package pixconv

// Expand555 widens a packed 5-5-5 pixel to a 32-bit 0x00RRGGBB value.
// Each 5-bit component c becomes (c<<3)|(c>>2): the high bits are
// replicated into the low bits so 0x1f maps to 0xff and ordering is
// preserved, rather than zero-filling.
func Expand555(c uint32) uint32 {
	ret := (c&0x001f)<<3 | (c&0x001c)>>2
	ret |= (c&0x03e0)<<6 | (c&0x0380)<<1
	ret |= (c&0x7c00)<<9 | (c&0x7000)<<4
	return ret
}
