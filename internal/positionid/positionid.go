// Package positionid implements GNU Backgammon position IDs and compact
// position keys.
//
// A position ID is a 14-character base64 string holding an 80-bit key: for
// each side, each of its 25 slots (24 points from its own perspective, then
// the bar) is written as one 1-bit per checker followed by a 0-bit.
package positionid

import (
	"errors"
)

// PositionIDLength is the length of a position ID string.
const PositionIDLength = 14

const base64Chars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

// Board is the per-side layout used by gnubg: [side][slot], slot 0..23 is
// the side's own point 1..24 and slot 24 is its bar. Side 1 is on roll.
type Board [2][25]uint8

// Key packs a board into 4 bits per slot. Keys compare with ==.
type Key [7]uint32

// oldKey is the 80-bit run-length key behind the position ID.
type oldKey [10]uint8

// ErrInvalidPositionID is returned when a position ID cannot be decoded
// into a legal board.
var ErrInvalidPositionID = errors.New("invalid position ID")

// MakeKey packs a board into a Key.
func MakeKey(b Board) Key {
	var k Key
	for j := 0; j < 24; j++ {
		k[j/8] |= uint32(b[1][j]) << (4 * (j % 8))
		k[3+j/8] |= uint32(b[0][j]) << (4 * (j % 8))
	}
	k[6] = uint32(b[0][24]) | uint32(b[1][24])<<4
	return k
}

// FromKey unpacks a Key.
func FromKey(k Key) Board {
	var b Board
	for j := 0; j < 24; j++ {
		shift := 4 * (j % 8)
		b[1][j] = uint8(k[j/8]>>shift) & 0x0f
		b[0][j] = uint8(k[3+j/8]>>shift) & 0x0f
	}
	b[0][24] = uint8(k[6]) & 0x0f
	b[1][24] = uint8(k[6]>>4) & 0x0f
	return b
}

func makeOldKey(b Board) oldKey {
	var k oldKey
	bit := 0
	for side := 0; side < 2; side++ {
		for slot := 0; slot < 25; slot++ {
			for n := 0; n < int(b[side][slot]); n++ {
				k[bit/8] |= 1 << (bit % 8)
				bit++
			}
			bit++
		}
	}
	return k
}

func boardFromOldKey(k oldKey) (Board, bool) {
	var b Board
	side, slot := 0, 0
	for bit := 0; bit < 80; bit++ {
		if k[bit/8]&(1<<(bit%8)) != 0 {
			if side >= 2 {
				return b, false
			}
			b[side][slot]++
			continue
		}
		slot++
		if slot == 25 {
			side++
			slot = 0
		}
	}
	return b, true
}

// PositionID returns the base64 position ID of a board.
func PositionID(b Board) string {
	k := makeOldKey(b)
	out := make([]byte, PositionIDLength)
	src := k[:]
	for i := 0; i < 3; i++ {
		out[i*4] = base64Chars[src[0]>>2]
		out[i*4+1] = base64Chars[(src[0]&0x03)<<4|src[1]>>4]
		out[i*4+2] = base64Chars[(src[1]&0x0f)<<2|src[2]>>6]
		out[i*4+3] = base64Chars[src[2]&0x3f]
		src = src[3:]
	}
	out[12] = base64Chars[src[0]>>2]
	out[13] = base64Chars[(src[0]&0x03)<<4]
	return string(out)
}

func base64Value(ch byte) (uint8, bool) {
	switch {
	case ch >= 'A' && ch <= 'Z':
		return ch - 'A', true
	case ch >= 'a' && ch <= 'z':
		return ch - 'a' + 26, true
	case ch >= '0' && ch <= '9':
		return ch - '0' + 52, true
	case ch == '+':
		return 62, true
	case ch == '/':
		return 63, true
	}
	return 0, false
}

// BoardFromPositionID decodes a position ID and rejects illegal boards.
func BoardFromPositionID(id string) (Board, error) {
	if len(id) != PositionIDLength {
		return Board{}, ErrInvalidPositionID
	}
	var v [PositionIDLength]uint8
	for i := 0; i < PositionIDLength; i++ {
		x, ok := base64Value(id[i])
		if !ok {
			return Board{}, ErrInvalidPositionID
		}
		v[i] = x
	}

	var k oldKey
	for i := 0; i < 3; i++ {
		c := v[i*4:]
		k[i*3] = c[0]<<2 | c[1]>>4
		k[i*3+1] = c[1]<<4 | c[2]>>2
		k[i*3+2] = c[2]<<6 | c[3]
	}
	k[9] = v[12]<<2 | v[13]>>4

	b, ok := boardFromOldKey(k)
	if !ok || !CheckPosition(b) {
		return Board{}, ErrInvalidPositionID
	}
	return b, nil
}

// CheckPosition reports whether a board is legal: at most 15 checkers per
// side, no point shared by both sides, and not both sides on the bar
// against closed boards.
func CheckPosition(b Board) bool {
	var total [2]int
	for slot := 0; slot < 25; slot++ {
		total[0] += int(b[0][slot])
		total[1] += int(b[1][slot])
	}
	if total[0] > 15 || total[1] > 15 {
		return false
	}

	// Side 0's point j is side 1's point 23-j.
	for j := 0; j < 24; j++ {
		if b[0][j] > 0 && b[1][23-j] > 0 {
			return false
		}
	}

	if b[0][24] == 0 || b[1][24] == 0 {
		return true
	}
	for j := 0; j < 6; j++ {
		if b[0][j] < 2 || b[1][j] < 2 {
			return true
		}
	}
	return false
}
