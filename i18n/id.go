package i18n

import "strconv"

// MessageID returns the id of a message: a 63-bit fingerprint of its text,
// combined with the fingerprint of its meaning when there is one, printed
// in decimal.  The id changes with the text or the meaning and is invariant
// to changes in the description.
func MessageID(text, meaning string) string {
	return strconv.FormatUint(calcID([]byte(text), meaning), 10)
}

func calcID(text []byte, meaning string) uint64 {
	var fp = fingerprint(text)
	if meaning != "" {
		var topbit uint64
		if fp&(1<<63) > 0 {
			topbit = 1
		}
		fp = (fp << 1) + topbit + fingerprint([]byte(meaning))
	}
	return fp & 0x7fffffffffffffff
}

// fingerprinting functions ported from the Closure message id generator, so
// that ids match the ones computed by other tools.

func fingerprint(str []byte) uint64 {
	var hi = hash32(str, 0)
	var lo = hash32(str, 102072)
	if (hi == 0) && (lo == 0 || lo == 1) {
		// Turn 0/1 into another fingerprint
		hi ^= 0x130f9bef
		lo ^= 0x94a0a928
	}
	return (uint64(hi) << 32) | uint64(lo)
}

func word(str []byte, i int) uint32 {
	return uint32(str[i]) | uint32(str[i+1])<<8 | uint32(str[i+2])<<16 | uint32(str[i+3])<<24
}

func hash32(str []byte, c uint32) uint32 {
	var a uint32 = 0x9e3779b9
	var b uint32 = 0x9e3779b9

	var i int
	for i = 0; i+12 <= len(str); i += 12 {
		a += word(str, i)
		b += word(str, i+4)
		c += word(str, i+8)
		a, b, c = mix(a, b, c)
	}

	c += uint32(len(str))
	switch len(str) - i { // Deal with rest. Cases fall through.
	case 11:
		c += uint32(str[i+10]) << 24
		fallthrough
	case 10:
		c += uint32(str[i+9]) << 16
		fallthrough
	case 9:
		c += uint32(str[i+8]) << 8
		// the first byte of c is reserved for the length
		fallthrough
	case 8:
		b += uint32(str[i+7]) << 24
		fallthrough
	case 7:
		b += uint32(str[i+6]) << 16
		fallthrough
	case 6:
		b += uint32(str[i+5]) << 8
		fallthrough
	case 5:
		b += uint32(str[i+4])
		fallthrough
	case 4:
		a += uint32(str[i+3]) << 24
		fallthrough
	case 3:
		a += uint32(str[i+2]) << 16
		fallthrough
	case 2:
		a += uint32(str[i+1]) << 8
		fallthrough
	case 1:
		a += uint32(str[i+0])
		// case 0 : nothing left to add
	}

	_, _, c = mix(a, b, c)
	return c
}

func mix(a, b, c uint32) (uint32, uint32, uint32) {
	a -= b
	a -= c
	a ^= (c >> 13)
	b -= c
	b -= a
	b ^= (a << 8)
	c -= a
	c -= b
	c ^= (b >> 13)
	a -= b
	a -= c
	a ^= (c >> 12)
	b -= c
	b -= a
	b ^= (a << 16)
	c -= a
	c -= b
	c ^= (b >> 5)
	a -= b
	a -= c
	a ^= (c >> 3)
	b -= c
	b -= a
	b ^= (a << 10)
	c -= a
	c -= b
	c ^= (b >> 15)
	return a, b, c
}
