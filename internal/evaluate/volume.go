package evaluate

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"strings"
)

// DType names the element type of a raw volume file.
type DType string

const (
	DTypeUint8   DType = "uint8"
	DTypeFloat32 DType = "float32"
)

// ParseDType validates a user-supplied dtype name.
func ParseDType(s string) (DType, error) {
	switch DType(strings.ToLower(strings.TrimSpace(s))) {
	case DTypeUint8:
		return DTypeUint8, nil
	case DTypeFloat32:
		return DTypeFloat32, nil
	default:
		return "", fmt.Errorf("unsupported dtype %q (uint8 or float32)", s)
	}
}

// ReadVolume loads a flat binary volume file into float32 samples. Float32
// files are little-endian. Uint8 values are returned verbatim, so label
// volumes keep their 0/1 values. When dims is non-empty the element count
// must match the product of the dimensions.
func ReadVolume(path string, dtype DType, dims []int) ([]float32, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read volume: %w", err)
	}

	var data []float32
	switch dtype {
	case DTypeUint8:
		data = make([]float32, len(raw))
		for i, v := range raw {
			data[i] = float32(v)
		}
	case DTypeFloat32:
		if len(raw)%4 != 0 {
			return nil, fmt.Errorf("volume %s: size %d not a multiple of 4", path, len(raw))
		}
		data = make([]float32, len(raw)/4)
		for i := range data {
			bits := binary.LittleEndian.Uint32(raw[i*4:])
			data[i] = math.Float32frombits(bits)
		}
	default:
		return nil, fmt.Errorf("unsupported dtype %q", dtype)
	}

	if len(dims) > 0 {
		want := 1
		for _, d := range dims {
			if d <= 0 {
				return nil, fmt.Errorf("non-positive dimension %d", d)
			}
			want *= d
		}
		if len(data) != want {
			return nil, fmt.Errorf("volume %s: %d elements, dims %v expect %d", path, len(data), dims, want)
		}
	}
	return data, nil
}
