package sstable

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	log "github.com/golang/glog"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrIndexOutOfRange = errors.New("sstable: index out of range")
	ErrBadShape        = errors.New("sstable: non-positive dimension not allowed")
)

// WriteDense writes the shape of m as "rows,cols" followed by one
// "row,col,value" line per non-zero entry. Values are written with the
// shortest representation that parses back to the same float64.
func WriteDense(w io.Writer, m mat.Matrix) error {
	out := bufio.NewWriter(w)

	r, c := m.Dims()
	// write the matrix shape
	if _, err := fmt.Fprintf(out, "%d,%d\n", r, c); err != nil {
		return err
	}

	buf := make([]byte, 0, 64)
	for ridx := 0; ridx < r; ridx += 1 {
		for cidx := 0; cidx < c; cidx += 1 {
			val := m.At(ridx, cidx)
			if val == 0 { // only write out nonzero value
				continue
			}
			buf = buf[:0]
			buf = strconv.AppendInt(buf, int64(ridx), 10)
			buf = append(buf, ',')
			buf = strconv.AppendInt(buf, int64(cidx), 10)
			buf = append(buf, ',')
			buf = strconv.AppendFloat(buf, val, 'g', -1, 64)
			buf = append(buf, '\n')
			if _, err := out.Write(buf); err != nil {
				return err
			}
		}
	}
	return out.Flush()
}

// ReadDense parses a matrix written by WriteDense. Malformed entry lines
// are logged and skipped.
func ReadDense(r io.Reader) (*mat.Dense, error) {
	lineIdx := 0
	var tmp *mat.Dense
	var row, col uint64

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		txt := scanner.Text()
		if lineIdx == 0 {
			shape := strings.Split(txt, ",")
			if len(shape) != 2 {
				return nil, fmt.Errorf("model corrupted, shape not found: %s", txt)
			}
			var err error
			row, err = strconv.ParseUint(shape[0], 10, 32)
			if err != nil {
				return nil, err
			}
			col, err = strconv.ParseUint(shape[1], 10, 32)
			if err != nil {
				return nil, err
			}
			if row == 0 || col == 0 {
				return nil, fmt.Errorf("%w: %s", ErrBadShape, txt)
			}
			tmp = mat.NewDense(int(row), int(col), nil)
			lineIdx += 1
			continue
		}

		value := strings.Split(txt, ",")
		if len(value) != 3 {
			log.Warningf("data corrupted, row %d, data %s",
				lineIdx, txt)
			lineIdx += 1
			continue
		}
		ridx, err := strconv.ParseUint(value[0], 10, 32)
		if err != nil {
			return nil, err
		}
		cidx, err := strconv.ParseUint(value[1], 10, 32)
		if err != nil {
			return nil, err
		}
		if ridx >= row || cidx >= col {
			return nil, fmt.Errorf("%w: [%d, %d] in %dx%d matrix",
				ErrIndexOutOfRange, ridx, cidx, row, col)
		}
		val, err := strconv.ParseFloat(value[2], 64)
		if err != nil {
			return nil, err
		}
		tmp.Set(int(ridx), int(cidx), val)

		lineIdx += 1
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if tmp == nil {
		return nil, errors.New("model corrupted, empty input")
	}

	return tmp, nil
}

// serialize data to file
func DenseSerialize(m mat.Matrix, fn string) error {
	out, err := os.OpenFile(fn, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0644)
	if err != nil {
		return err
	}
	if err := WriteDense(out, m); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// deserialize data from file
func DenseDeserialize(fn string) (*mat.Dense, error) {
	file, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return ReadDense(file)
}
