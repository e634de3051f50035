package fingerprint

import "encoding/binary"

// Design note (§9 "pointer aliasing for word-level popcount"): the C
// source reinterprets r/dom as arrays of 32- and 16-bit words in place.
// Go forbids that kind of type punning across a byte array without
// unsafe, so every kernel goes through these explicit little-endian
// packing helpers instead; the numeric result is identical to a
// native-endian reinterpret cast on the little-endian hosts this format
// was designed for.

// RWords32 returns r's 348 bytes reinterpreted as 87 little-endian
// 32-bit words (348 / 4 == 87).
func RWords32(r *[RLen]byte) [RLen / 4]uint32 {
	var words [RLen / 4]uint32
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(r[i*4 : i*4+4])
	}
	return words
}

// DomBodyWords32 returns dom's first 512 bits (64 bytes) as 16
// little-endian 32-bit words.
func DomBodyWords32(dom *[DomLen]byte) [DomBodyBits / 32]uint32 {
	var words [DomBodyBits / 32]uint32
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(dom[i*4 : i*4+4])
	}
	return words
}

// DomTail reads dom's last 16 bits as a little-endian 16-bit word.
func DomTail(dom *[DomLen]byte) uint16 {
	return binary.LittleEndian.Uint16(dom[DomLen-2:])
}
