package records

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/zeebo/xxh3"
)

// Value type tags for the fingerprint encoding. They keep "1" (string) and
// 1 (int64) from hashing to the same bytes.
const (
	tagNil byte = iota
	tagString
	tagInt
	tagFloat
	tagBool
	tagTime
	tagOther
)

// Fingerprint returns a 64-bit xxh3 hash of the column names and every value
// in row order. Two sets with the same shape and values produce the same
// fingerprint, which makes it a cheap equality check between runs.
func (s *Set) Fingerprint() uint64 {
	h := xxh3.New()
	var buf [8]byte

	writeStr := func(v string) {
		binary.LittleEndian.PutUint64(buf[:], uint64(len(v)))
		_, _ = h.Write(buf[:])
		_, _ = h.WriteString(v)
	}

	for _, c := range s.columns {
		writeStr(c)
	}
	for _, row := range s.rows {
		for _, v := range row {
			switch t := v.(type) {
			case nil:
				_, _ = h.Write([]byte{tagNil})
			case string:
				_, _ = h.Write([]byte{tagString})
				writeStr(t)
			case int64:
				_, _ = h.Write([]byte{tagInt})
				binary.LittleEndian.PutUint64(buf[:], uint64(t))
				_, _ = h.Write(buf[:])
			case float64:
				_, _ = h.Write([]byte{tagFloat})
				binary.LittleEndian.PutUint64(buf[:], math.Float64bits(t))
				_, _ = h.Write(buf[:])
			case bool:
				b := byte(0)
				if t {
					b = 1
				}
				_, _ = h.Write([]byte{tagBool, b})
			case time.Time:
				_, _ = h.Write([]byte{tagTime})
				binary.LittleEndian.PutUint64(buf[:], uint64(t.UnixNano()))
				_, _ = h.Write(buf[:])
			default:
				_, _ = h.Write([]byte{tagOther})
				writeStr(String(t))
			}
		}
	}
	return h.Sum64()
}
