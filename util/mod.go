package util

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unsafe"
)

var ErrBadWords = errors.New("malformed state words")

// RotL rotates x left by k bits, 0 < k < bit width of T.
func RotL[T uint8 | uint16 | uint32 | uint64](x T, k uint) T {
	BitWidth := unsafe.Sizeof(x) * 8
	return (x << k) | (x >> (uint(BitWidth) - k))
}

// ArrayToString renders every element as fixed width, zero padded hex,
// most significant element first.
func ArrayToString[T uint8 | uint16 | uint32 | uint64](arr []T) string {
	ret := ""

	for _, v := range arr {
		bitWidth := int(unsafe.Sizeof(v) * 8)
		ret += fmt.Sprintf("%0[1]*[2]x", bitWidth/4, v)
	}

	return ret
}

// StringToWords is the inverse of ArrayToString for 64 bit words.
func StringToWords(s string) ([]uint64, error) {
	if len(s) == 0 || len(s)%16 != 0 {
		return nil, fmt.Errorf("%w: length %d is not a multiple of 16", ErrBadWords, len(s))
	}

	ret := make([]uint64, len(s)/16)

	for i := range ret {
		v, err := strconv.ParseUint(s[i*16:(i+1)*16], 16, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: word %d: %s", ErrBadWords, i, err)
		}

		ret[i] = v
	}

	return ret, nil
}

// ParseWord parses a single 64 bit word, accepting decimal, 0x hex,
// 0o octal and 0b binary notation.
func ParseWord(s string) (uint64, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 0, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %s", ErrBadWords, s, err)
	}

	return v, nil
}

// ParseWordList parses a comma separated list of words with ParseWord.
func ParseWordList(s string) ([]uint64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}

	parts := strings.Split(s, ",")
	ret := make([]uint64, 0, len(parts))

	for _, part := range parts {
		v, err := ParseWord(part)
		if err != nil {
			return nil, err
		}

		ret = append(ret, v)
	}

	return ret, nil
}
