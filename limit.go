package wavop

import (
	"slices"

	"github.com/hupe1980/wavop/geometry"
	"github.com/hupe1980/wavop/model"
)

// shotModel is the part of the model one shot is solved on.
type shotModel struct {
	full   *model.Model
	window model.Window
	sub    *model.Model
}

// limitModel returns the model for one shot. Without LimitM the whole
// model is used and nothing is copied.
func limitModel(m *model.Model, mo ModelingOptions, src, rec geometry.Shot) (*shotModel, error) {
	if !mo.LimitM {
		return &shotModel{full: m, window: m.Full(), sub: m}, nil
	}
	xs := slices.Concat(src.X, rec.X)
	ys := slices.Concat(src.Y, rec.Y)
	zs := slices.Concat(src.Z, rec.Z)
	w := m.Window(xs, ys, zs, mo.BufferSize)
	sub, err := m.Sub(w)
	if err != nil {
		return nil, err
	}
	return &shotModel{full: m, window: w, sub: sub}, nil
}

func (s *shotModel) limited() bool { return s.sub != s.full }

// extract restricts a full-grid field to the shot's cells.
func (s *shotModel) extract(field []float32) []float32 {
	if !s.limited() {
		return field
	}
	return s.window.Extract(s.full, field)
}

// addTo accumulates a shot-sized field into a full-grid field.
func (s *shotModel) addTo(dst, part []float32) {
	if !s.limited() {
		for i, v := range part {
			dst[i] += v
		}
		return
	}
	s.window.AddTo(s.full, dst, part)
}

// workingBytes estimates the float32 memory a shot needs.
func workingBytes(cells int, samples ...int) int64 {
	n := cells
	for _, s := range samples {
		n += s
	}
	return int64(n) * 4
}
