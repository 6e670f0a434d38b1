package cpu

import "github.com/born-ml/tensorimpl/internal/parallel"

// PackedBuffer is the opaque handle of a CPU packed tensor.
//
// The tensor is seen as a rows x cols matrix and stored as zero-padded
// BlockRows x BlockCols tiles, tiles in row-major order, elements
// row-major inside a tile. Element (r, c) therefore has no fixed stride.
type PackedBuffer struct {
	data      []byte
	rows      int
	cols      int
	blockRows int
	blockCols int
	elemSize  int
}

func newPackedBuffer(rows, cols, blockRows, blockCols, elemSize int) *PackedBuffer {
	p := &PackedBuffer{
		rows:      rows,
		cols:      cols,
		blockRows: blockRows,
		blockCols: blockCols,
		elemSize:  elemSize,
	}
	p.data = make([]byte, p.tileRows()*p.tileCols()*p.tileBytes())
	return p
}

// Rows returns the number of logical rows.
func (p *PackedBuffer) Rows() int { return p.rows }

// Cols returns the number of logical columns.
func (p *PackedBuffer) Cols() int { return p.cols }

// BlockRows returns the tile height.
func (p *PackedBuffer) BlockRows() int { return p.blockRows }

// BlockCols returns the tile width.
func (p *PackedBuffer) BlockCols() int { return p.blockCols }

// ByteSize returns the packed size including tile padding.
func (p *PackedBuffer) ByteSize() int { return len(p.data) }

func (p *PackedBuffer) tileRows() int  { return (p.rows + p.blockRows - 1) / p.blockRows }
func (p *PackedBuffer) tileCols() int  { return (p.cols + p.blockCols - 1) / p.blockCols }
func (p *PackedBuffer) tileBytes() int { return p.blockRows * p.blockCols * p.elemSize }

// offset returns the byte offset of element (r, c).
func (p *PackedBuffer) offset(r, c int) int {
	tile := (r/p.blockRows)*p.tileCols() + c/p.blockCols
	inTile := (r%p.blockRows)*p.blockCols + c%p.blockCols
	return tile*p.tileBytes() + inTile*p.elemSize
}

// pack copies row-major src into tiles, one tile row per work item.
func (p *PackedBuffer) pack(src []byte, cfg parallel.Config) {
	p.forEachSegment(cfg, func(r, c, n int) {
		srcOff := (r*p.cols + c) * p.elemSize
		copy(p.data[p.offset(r, c):], src[srcOff:srcOff+n*p.elemSize])
	})
}

// unpack copies tiles back into row-major dst.
func (p *PackedBuffer) unpack(dst []byte, cfg parallel.Config) {
	p.forEachSegment(cfg, func(r, c, n int) {
		dstOff := (r*p.cols + c) * p.elemSize
		off := p.offset(r, c)
		copy(dst[dstOff:dstOff+n*p.elemSize], p.data[off:off+n*p.elemSize])
	})
}

// forEachSegment calls f for each run of n elements of row r starting at
// column c that stays inside one tile row.
func (p *PackedBuffer) forEachSegment(cfg parallel.Config, f func(r, c, n int)) {
	parallel.For(p.tileRows(), cfg, func(tr int) {
		rowEnd := min((tr+1)*p.blockRows, p.rows)
		for r := tr * p.blockRows; r < rowEnd; r++ {
			for c := 0; c < p.cols; c += p.blockCols {
				f(r, c, min(p.blockCols, p.cols-c))
			}
		}
	})
}
