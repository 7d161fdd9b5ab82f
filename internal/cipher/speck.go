// Package cipher implements the fixed-key 64-bit ARX block cipher used to
// obfuscate merchant identifiers. It is a simulation convenience with a
// baked-in key, not a security boundary: anyone running the process can
// recompute tokens. The exact rotation amounts, round count and key-schedule
// recurrence are load-bearing: changing any of them breaks every previously
// issued token.
package cipher

import (
	"fmt"
	"math/bits"
	"strconv"

	"upi/pkg/errors"
)

const rounds = 27

// Fixed 128-bit key, split into 32-bit words from most to least significant.
// The schedule consumes the words in this order - the most significant word
// seeds round key zero.
var keyWords = [4]uint32{0x0f0e0d0c, 0x0b0a0908, 0x07060504, 0x03020100}

var roundKeys = expandKey(keyWords)

// expandKey derives one 32-bit round key per round. Round key zero is the
// first key word; each following key mixes the rotating schedule word with
// the previous round key and the round index.
func expandKey(kw [4]uint32) [rounds]uint32 {
	var keys [rounds]uint32
	keys[0] = kw[0]

	l := make([]uint32, 3, 3+rounds)
	copy(l, kw[1:])

	for i := 0; i < rounds-1; i++ {
		newK := (bits.RotateLeft32(l[i], -3) + keys[i]) ^ uint32(i)
		keys[i+1] = newK
		l = append(l, bits.RotateLeft32(keys[i], 8)^newK)
	}
	return keys
}

// encryptBlock runs the full round function over the two 32-bit halves.
func encryptBlock(x, y uint32) (uint32, uint32) {
	for _, k := range roundKeys {
		x = (bits.RotateLeft32(x, -3) + y) ^ k
		y = bits.RotateLeft32(y, 8) ^ x
	}
	return x, y
}

// Encrypt applies the cipher to a 64-bit block.
func Encrypt(block uint64) uint64 {
	x, y := encryptBlock(uint32(block>>32), uint32(block))
	return uint64(x)<<32 | uint64(y)
}

// ObfuscateMerchantID transforms a 16-hex-digit merchant identifier into
// its externally shareable token. Deterministic: the same MID always yields
// the same token, which is what makes forward-search resolution possible.
func ObfuscateMerchantID(mid string) (string, error) {
	block, err := strconv.ParseUint(mid, 16, 64)
	if err != nil {
		return "", errors.Wrap(errors.ErrInvalidMerchantID, mid)
	}
	return fmt.Sprintf("%016x", Encrypt(block)), nil
}
