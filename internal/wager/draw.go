package wager

import (
	"encoding/binary"

	"golang.org/x/crypto/blake2b"
)

// WinThreshold is the exclusive upper bound on the first digest byte for a win.
// 128 of 256 byte values win.
const WinThreshold = 128

// DrawInput builds the hashed preimage: seed || NFC(identity) || LE64(nonce).
func DrawInput(seed []byte, id Identity, nonce uint64) []byte {
	idBytes := id.Bytes()
	buf := make([]byte, 0, len(seed)+len(idBytes)+8)
	buf = append(buf, seed...)
	buf = append(buf, idBytes...)
	buf = binary.LittleEndian.AppendUint64(buf, nonce)
	return buf
}

// DrawResult is the verifiable result of one draw.
type DrawResult struct {
	Digest [blake2b.Size256]byte
	Won    bool
}

// Byte returns the digest byte the outcome was decided on.
func (d DrawResult) Byte() byte {
	return d.Digest[0]
}

// Draw hashes the draw input with BLAKE2b-256 and tests the first byte
// against WinThreshold. The same seed, identity and nonce always give the
// same result.
func Draw(seed []byte, id Identity, nonce uint64) DrawResult {
	digest := blake2b.Sum256(DrawInput(seed, id, nonce))
	return DrawResult{
		Digest: digest,
		Won:    digest[0] < WinThreshold,
	}
}
