package changelog

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"sfview/internal/models"
)

// Format versions of the binary table.
const (
	VersionLegacy  uint32 = 0x01
	VersionCurrent uint32 = 0x02
)

// ErrUnknownVersion is returned for a binary table of an unsupported version.
var ErrUnknownVersion = errors.New("changelog: unknown modification table version")

// ErrCorrupt is returned when a binary table ends early or holds impossible values.
var ErrCorrupt = errors.New("changelog: corrupt modification table")

var byteOrder = binary.LittleEndian

// Table is the decoded content of a binary modification table. Exactly one
// of Entries and Legacy is populated, depending on Version.
type Table struct {
	Version uint32
	Entries []models.ChangeEntry
	Legacy  LegacyTable
}

// Encode writes entries in the current format. Times are stored as Unix
// milliseconds, so version 2 tables of other writers are not readable.
func Encode(w io.Writer, entries []models.ChangeEntry) error {
	bw := bufio.NewWriter(w)
	enc := encoder{w: bw}

	enc.u32(VersionCurrent)
	enc.u32(uint32(len(entries)))
	for _, e := range entries {
		enc.i64(e.Time.UnixMilli())
		enc.i32(e.Position.X)
		enc.i32(e.Position.Y)
		enc.i32(e.Position.Z)
		enc.u32(uint32(len(e.Items)))
		for _, it := range e.Items {
			enc.i32(it.GlobalIndex)
			for _, v := range it.Values {
				enc.c128(v)
			}
		}
	}
	if enc.err != nil {
		return enc.err
	}
	return bw.Flush()
}

// Decode reads a binary table of any supported version.
func Decode(r io.Reader) (*Table, error) {
	dec := decoder{r: bufio.NewReader(r)}

	version := dec.u32()
	if dec.err != nil {
		return nil, fmt.Errorf("%w: missing version: %v", ErrCorrupt, dec.err)
	}

	t := &Table{Version: version}
	switch version {
	case VersionLegacy:
		t.Legacy = decodeLegacy(&dec)
	case VersionCurrent:
		t.Entries = decodeEntries(&dec)
	default:
		return nil, fmt.Errorf("%w %d", ErrUnknownVersion, version)
	}
	if dec.err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, dec.err)
	}
	return t, nil
}

func decodeEntries(dec *decoder) []models.ChangeEntry {
	n := dec.count()
	var entries []models.ChangeEntry
	for i := 0; i < n && dec.err == nil; i++ {
		var e models.ChangeEntry
		e.Time = time.UnixMilli(dec.i64())
		e.Position = models.NewPosition(dec.i32(), dec.i32(), dec.i32())
		items := dec.count()
		for j := 0; j < items && dec.err == nil; j++ {
			it := models.ChangeItem{GlobalIndex: dec.i32()}
			for k := range it.Values {
				it.Values[k] = dec.c128()
			}
			e.Items = append(e.Items, it)
		}
		entries = append(entries, e)
	}
	return entries
}

type encoder struct {
	w   io.Writer
	buf [8]byte
	err error
}

func (e *encoder) write(b []byte) {
	if e.err == nil {
		_, e.err = e.w.Write(b)
	}
}

func (e *encoder) u32(v uint32) {
	byteOrder.PutUint32(e.buf[:4], v)
	e.write(e.buf[:4])
}

func (e *encoder) i32(v int) { e.u32(uint32(int32(v))) }

func (e *encoder) i64(v int64) {
	byteOrder.PutUint64(e.buf[:8], uint64(v))
	e.write(e.buf[:8])
}

func (e *encoder) f64(v float64) {
	byteOrder.PutUint64(e.buf[:8], math.Float64bits(v))
	e.write(e.buf[:8])
}

func (e *encoder) c128(v complex128) {
	e.f64(real(v))
	e.f64(imag(v))
}

type decoder struct {
	r   io.Reader
	buf [8]byte
	err error
}

func (d *decoder) read(n int) []byte {
	if d.err != nil {
		return make([]byte, n)
	}
	if _, err := io.ReadFull(d.r, d.buf[:n]); err != nil {
		d.err = err
	}
	return d.buf[:n]
}

func (d *decoder) u32() uint32 { return byteOrder.Uint32(d.read(4)) }

func (d *decoder) i32() int { return int(int32(d.u32())) }

func (d *decoder) i64() int64 { return int64(byteOrder.Uint64(d.read(8))) }

func (d *decoder) f64() float64 { return math.Float64frombits(byteOrder.Uint64(d.read(8))) }

func (d *decoder) c128() complex128 {
	re := d.f64()
	return complex(re, d.f64())
}

// count reads an element count. Counts are not trusted for preallocation.
func (d *decoder) count() int {
	n := d.u32()
	if d.err == nil && n > math.MaxInt32 {
		d.err = fmt.Errorf("count %d out of range", n)
	}
	return int(n)
}
