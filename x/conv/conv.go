// Package conv formats integers into caller-owned buffers without fmt or
// strconv, so it is safe on the MCU path.
package conv

const hexDigits = "0123456789ABCDEF"

// AppendUint appends the base-10 form of n to dst.
func AppendUint(dst []byte, n uint64) []byte {
	var tmp [20]byte
	i := len(tmp)
	for {
		i--
		tmp[i] = byte('0' + n%10)
		n /= 10
		if n == 0 {
			break
		}
	}
	return append(dst, tmp[i:]...)
}

// AppendHex32 appends n as 0x-prefixed, zero-padded 8-digit uppercase hex.
func AppendHex32(dst []byte, n uint32) []byte {
	dst = append(dst, '0', 'x')
	for shift := 28; shift >= 0; shift -= 4 {
		dst = append(dst, hexDigits[(n>>uint(shift))&0xF])
	}
	return dst
}
