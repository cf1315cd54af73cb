// Package kernel is the numeric linear-algebra primitive the intent
// classifier and slot tagger depend on: matrix-vector products,
// softmax, and Viterbi decoding over dense float32 weights.
//
// Model weights are stored row-major in 32-bit float precision using
// gomlx's tensor type (github.com/gomlx/gomlx/pkg/core/tensors), so a
// logistic-regression or CRF weight matrix loaded from a model file
// round-trips through exactly the same byte layout a safetensors-style
// tensor would. The actual arithmetic (matmul, softmax, Viterbi) is a
// plain CPU loop over the tensor's flat backing slice: the accelerated
// path gomlx's graph/XLA backend would otherwise provide is out of scope
// here since this kernel runs tiny per-request matrices, not neural
// network training workloads.
package kernel

import (
	"encoding/binary"
	"math"

	"github.com/gomlx/gomlx/pkg/core/dtypes"
	"github.com/gomlx/gomlx/pkg/core/shapes"
	"github.com/gomlx/gomlx/pkg/core/tensors"
	"github.com/pkg/errors"
)

// Matrix is a dense, row-major float32 matrix backed by a gomlx tensor.
type Matrix struct {
	t    *tensors.Tensor
	rows int
	cols int
}

// NewMatrix builds a row-major Matrix from flat data of length rows*cols.
func NewMatrix(flat []float32, rows, cols int) (*Matrix, error) {
	if len(flat) != rows*cols {
		return nil, errors.Errorf("kernel: matrix data has %d elements, want %d (%dx%d)", len(flat), rows*cols, rows, cols)
	}
	t := tensors.FromFlatDataAndDimensions(flat, rows, cols)
	return &Matrix{t: t, rows: rows, cols: cols}, nil
}

// NewMatrixFromRows builds a row-major Matrix from a slice of row slices,
// all of which must share the same length.
func NewMatrixFromRows(rows [][]float32) (*Matrix, error) {
	if len(rows) == 0 {
		return &Matrix{t: tensors.FromShape(shapes.Make(dtypes.Float32, 0, 0)), rows: 0, cols: 0}, nil
	}
	cols := len(rows[0])
	flat := make([]float32, 0, len(rows)*cols)
	for i, row := range rows {
		if len(row) != cols {
			return nil, errors.Errorf("kernel: row %d has %d columns, want %d", i, len(row), cols)
		}
		flat = append(flat, row...)
	}
	return NewMatrix(flat, len(rows), cols)
}

// Rows returns the number of rows.
func (m *Matrix) Rows() int { return m.rows }

// Cols returns the number of columns.
func (m *Matrix) Cols() int { return m.cols }

// Flat returns a copy of the matrix's row-major backing data.
func (m *Matrix) Flat() []float32 {
	out := make([]float32, m.rows*m.cols)
	m.t.MutableBytes(func(data []byte) {
		for i := range out {
			out[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4 : i*4+4]))
		}
	})
	return out
}

// Row returns a copy of row i.
func (m *Matrix) Row(i int) []float32 {
	row := make([]float32, m.cols)
	m.t.MutableBytes(func(data []byte) {
		base := i * m.cols * 4
		for j := range row {
			off := base + j*4
			row[j] = math.Float32frombits(binary.LittleEndian.Uint32(data[off : off+4]))
		}
	})
	return row
}

// At returns the element at (i, j).
func (m *Matrix) At(i, j int) float32 {
	var v float32
	m.t.MutableBytes(func(data []byte) {
		off := (i*m.cols + j) * 4
		v = math.Float32frombits(binary.LittleEndian.Uint32(data[off : off+4]))
	})
	return v
}

// Tensor exposes the underlying gomlx tensor, e.g. to feed into a
// downstream gomlx graph for accelerated batched inference.
func (m *Matrix) Tensor() *tensors.Tensor {
	return m.t
}
