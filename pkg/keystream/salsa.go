package keystream

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/saylorsolutions/vaultkey/pkg/protect"
	"golang.org/x/crypto/salsa20/salsa"
)

const salsaBlockSize = 64

var salsaNonce = [8]byte{0xE8, 0x30, 0x09, 0x4B, 0x97, 0x20, 0x5D, 0x2A}

type salsa20 struct {
	key [32]byte
	// counter holds the nonce in the first 8 bytes and the little endian block counter in the last 8.
	counter [16]byte
	block   [salsaBlockSize]byte
	pos     int
	blocks  uint64
}

func newSalsa20(key []byte) *salsa20 {
	s := &salsa20{
		key: sha256.Sum256(key),
		pos: salsaBlockSize,
	}
	copy(s.counter[:8], salsaNonce[:])
	return s
}

func (s *salsa20) nextBlock() {
	clear(s.block[:])
	binary.LittleEndian.PutUint64(s.counter[8:], s.blocks)
	salsa.XORKeyStream(s.block[:], s.block[:], &s.counter, &s.key)
	s.blocks++
	s.pos = 0
}

func (s *salsa20) keystream(dst []byte) {
	for len(dst) > 0 {
		if s.pos == salsaBlockSize {
			s.nextBlock()
		}
		n := copy(dst, s.block[s.pos:])
		s.pos += n
		dst = dst[n:]
	}
}

func (s *salsa20) blockCount() uint64 {
	return s.blocks
}

func (s *salsa20) wipe() {
	protect.Wipe(s.key[:], s.block[:])
	s.pos = salsaBlockSize
}
