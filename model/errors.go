package model

import "errors"

var (
	// ErrInvalidShape is returned for grids that are not 2-D or 3-D or have
	// non-positive extents.
	ErrInvalidShape = errors.New("model: invalid shape")

	// ErrFieldSize is returned when a medium parameter does not have one
	// entry per grid cell.
	ErrFieldSize = errors.New("model: field size does not match grid")

	// ErrInvalidSpacing is returned for non-positive grid spacing.
	ErrInvalidSpacing = errors.New("model: invalid spacing")

	// ErrInvalidWindow is returned when a window does not fit the grid.
	ErrInvalidWindow = errors.New("model: invalid window")
)
