package game

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
)

// StateDigest hashes the complete mutable state: player pose, inventory,
// clock and every dispenser/appliance. Two games built from the same level
// and fed the same command sequence must produce identical digests; replay
// verification and the determinism tests rely on it.
func (g *Game) StateDigest() string {
	h := sha256.New()
	var tmp [8]byte

	digestI64(h, &tmp, int64(g.Player.X))
	digestI64(h, &tmp, int64(g.Player.Y))
	digestI64(h, &tmp, int64(g.Player.Facing))
	digestI64(h, &tmp, int64(g.Player.Holding))
	digestI64(h, &tmp, int64(g.Player.Time))

	for _, row := range g.Grid {
		for _, b := range row {
			switch blk := b.(type) {
			case *Dispenser:
				h.Write([]byte{'D'})
				digestI64(h, &tmp, int64(blk.ID))
				digestI64(h, &tmp, int64(blk.ExpiresAfter))
			case *Appliance:
				h.Write([]byte{'A', blk.ID})
				digestI64(h, &tmp, int64(len(blk.Contents)))
				for _, id := range blk.Contents {
					digestI64(h, &tmp, int64(id))
				}
				if blk.Active != nil {
					h.Write([]byte{'R'})
					digestI64(h, &tmp, int64(blk.Active.Op.Output))
					digestI64(h, &tmp, int64(blk.Active.Remaining))
				}
				digestI64(h, &tmp, int64(blk.Output))
			}
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

func digestI64(h hash.Hash, tmp *[8]byte, v int64) {
	binary.LittleEndian.PutUint64(tmp[:], uint64(v))
	h.Write(tmp[:])
}
