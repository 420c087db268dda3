package boundary

import (
	"fmt"

	"github.com/Abhijit-2592/diplib"
	"github.com/Abhijit-2592/diplib/internal/models"
	"github.com/Abhijit-2592/diplib/pkg/array"
)

// ExtendImage forges a new image enlarged by border pixels on both ends
// of every dimension, copies in into the center, and fills the borders
// dimension by dimension according to the boundary conditions. Both
// border and bc follow the single-element replication rule of
// ArrayUseParameter.
func ExtendImage(in *array.View, border []int, bc []Condition) (*array.View, error) {
	if !in.IsForged() {
		return nil, diplib.ErrNotForged
	}
	nd := in.Dimensionality()
	border, err := IntArrayUseParameter(border, nd)
	if err != nil {
		return nil, err
	}
	bc, err = ArrayUseParameter(bc, nd)
	if err != nil {
		return nil, err
	}
	for d, b := range border {
		if b < 0 {
			return nil, fmt.Errorf("%w: negative border %d in dimension %d", diplib.ErrInvalidShape, b, d)
		}
	}

	inSizes := in.Sizes()
	outSizes := make([]int, nd)
	for d := range outSizes {
		outSizes[d] = inSizes[d] + 2*border[d]
	}
	out, err := array.New(outSizes, in.TensorElements(), in.DataType())
	if err != nil {
		return nil, err
	}
	if err := out.ReshapeTensor(in.Tensor()); err != nil {
		return nil, err
	}

	// Copy the input into the centered window.
	window, err := out.Crop(inSizes, true)
	if err != nil {
		return nil, err
	}
	if err := window.CopyFrom(in); err != nil {
		return nil, err
	}

	// Extend one dimension at a time. Lines along the current dimension
	// run over the region written so far: the centered window grown by
	// the borders of all previously extended dimensions.
	ranges := make([]models.Range, nd)
	for d := range ranges {
		ranges[d] = models.Range{Start: border[d], Stop: border[d] + inSizes[d] - 1, Step: 1}
	}
	for dim := 0; dim < nd; dim++ {
		if border[dim] == 0 {
			ranges[dim] = models.All()
			continue
		}
		region, err := out.At(ranges...)
		if err != nil {
			return nil, err
		}
		if err := expandRegion(region, dim, inSizes[dim], border[dim], bc[dim]); err != nil {
			return nil, err
		}
		ranges[dim] = models.All()
	}
	return out, nil
}

// expandRegion runs ExpandBuffer over every line of the region along
// dim. The region's strides address the full output image, so writing
// past the line ends lands in the border.
func expandRegion(region *array.View, dim, pixels, border int, bc Condition) error {
	sizes := region.Sizes()
	strides := region.Strides()
	nd := len(sizes)
	coords := make([]int, nd)
	for {
		off, err := region.Offset(coords)
		if err != nil {
			return err
		}
		if err := ExpandBuffer(region.Data(), off, strides[dim], region.TensorStride(),
			pixels, region.TensorElements(), border, bc); err != nil {
			return err
		}
		d := 0
		for ; d < nd; d++ {
			if d == dim {
				continue
			}
			coords[d]++
			if coords[d] < sizes[d] {
				break
			}
			coords[d] = 0
		}
		if d == nd {
			return nil
		}
	}
}
