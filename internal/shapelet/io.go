package shapelet

import (
	"fmt"
	"strconv"

	"github.com/samcharles93/skyvis/internal/safetensors"
)

const (
	tensorName   = "shapelet_basis_values"
	metaCentre   = "centre"
	metaStep     = "step"
	metaInterp   = "interpolation"
	metaFunction = "function"
)

// Save writes t as a single [Orders, Samples] F64 tensor with the sampling
// parameters in the header metadata.
func Save(path string, t *Table) error {
	if err := t.Validate(); err != nil {
		return err
	}
	return safetensors.WriteFile(path,
		[]safetensors.Tensor{safetensors.F64(tensorName, []int{t.Orders, t.Samples}, t.Values)},
		map[string]string{
			metaCentre:   strconv.FormatFloat(t.Centre, 'g', -1, 64),
			metaStep:     strconv.FormatFloat(t.Step, 'g', -1, 64),
			metaInterp:   t.Interp.String(),
			metaFunction: "hermite",
		})
}

// Load reads a table written by Save or by any producer using the same
// tensor name and metadata keys.
func Load(path string) (*Table, error) {
	f, err := safetensors.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	values, info, err := f.ReadTensorF64(tensorName)
	if err != nil {
		return nil, err
	}
	if len(info.Shape) != 2 {
		return nil, fmt.Errorf("%w: tensor %s has shape %v, expected [orders, samples]", ErrInvalidTable, tensorName, info.Shape)
	}
	centre, err := metaFloat(f.Metadata, metaCentre)
	if err != nil {
		return nil, err
	}
	step, err := metaFloat(f.Metadata, metaStep)
	if err != nil {
		return nil, err
	}
	interp, err := ParseInterpolation(f.Metadata[metaInterp])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTable, err)
	}

	t, err := NewTable(values, info.Shape[1], info.Shape[0], centre, step)
	if err != nil {
		return nil, err
	}
	t.Interp = interp
	return t, nil
}

func metaFloat(meta map[string]string, key string) (float64, error) {
	s, ok := meta[key]
	if !ok {
		return 0, fmt.Errorf("%w: missing metadata %q", ErrInvalidTable, key)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: metadata %q: %v", ErrInvalidTable, key, err)
	}
	return v, nil
}
