package array

import "github.com/Abhijit-2592/diplib"

// Aliasing detection. Two views share samples iff their occupied sample
// ranges inside a common data segment intersect; sharing a segment alone
// is not enough, since two views can address complementary parts of one
// block. The computation is a pure function over the two views' shape,
// stride and origin metadata.

// SharesData reports whether the two views reference the same data
// segment, regardless of whether any sample is addressed by both.
func (v *View) SharesData(other *View) bool {
	return v.blk != nil && v.blk == other.blk
}

// IsIdenticalView reports whether writing through either view is
// indistinguishable: same segment, origin, element type, sizes, strides
// and tensor layout.
func (v *View) IsIdenticalView(other *View) bool {
	if !v.SharesData(other) || v.origin != other.origin || v.dt != other.dt {
		return false
	}
	if v.tstride != other.tstride || v.TensorElements() != other.TensorElements() {
		return false
	}
	if len(v.sizes) != len(other.sizes) {
		return false
	}
	for i := range v.sizes {
		if v.sizes[i] != other.sizes[i] || v.strides[i] != other.strides[i] {
			return false
		}
	}
	return true
}

// Aliases reports whether writing in this view can change samples
// visible through the other view. Both views must be forged.
func (v *View) Aliases(other *View) (bool, error) {
	if !v.IsForged() || !other.IsForged() {
		return false, diplib.ErrNotForged
	}
	if !v.SharesData(other) {
		return false, nil
	}
	if v.origin == other.origin {
		return true, nil // they share at least the origin sample
	}

	strides1, sizes1 := v.allStrides(), v.allSizes()
	strides2, sizes2 := other.allStrides(), other.allSizes()
	origin1, origin2 := v.origin, other.origin

	// If both views have the same simple stride larger than one and
	// their origins differ by a non-multiple of it, they interleave
	// without touching.
	sstride1, _, start1, ok1 := simpleStride(strides1, sizes1)
	sstride2, size2, start2, ok2 := simpleStride(strides2, sizes2)
	start1 += origin1
	start2 += origin2
	if ok1 && ok2 && sstride1 > 1 && sstride1 == sstride2 {
		if (start1-start2)%sstride1 != 0 {
			return false, nil
		}
	}

	// Disjoint occupied intervals cannot alias.
	size1, _ := dataBlockSizeAndStartPlain(strides1, sizes1)
	if start1+size1 <= start2 || start2+size2 <= start1 {
		return false, nil
	}

	// Un-mirror: make all strides positive, shifting origins to the
	// lowest addressed sample of each dimension.
	for i := range strides1 {
		if strides1[i] < 0 {
			strides1[i] = -strides1[i]
			origin1 -= (sizes1[i] - 1) * strides1[i]
		}
	}
	for i := range strides2 {
		if strides2[i] < 0 {
			strides2[i] = -strides2[i]
			origin2 -= (sizes2[i] - 1) * strides2[i]
		}
	}
	sortByStrides(strides1, sizes1)
	sortByStrides(strides2, sizes2)

	// Walk both stride arrays matching up dimensions, building a common
	// stride basis. Dimensions with stride 0 (singleton expansion) are
	// skipped: they address a single sample along that axis.
	n1, n2 := len(strides1), len(strides2)
	i1, i2 := 0, 0
	for i1 < n1 && strides1[i1] == 0 {
		i1++
	}
	for i2 < n2 && strides2[i2] == 0 {
		i2++
	}
	var comStrides, newStrides1, newStrides2, newSizes1, newSizes2 []int
	for i1 < n1 || i2 < n2 {
		s1, d1 := 0, 1
		s2, d2 := 0, 1
		if i1 < n1 {
			s1, d1 = strides1[i1], sizes1[i1]
		}
		if i2 < n2 {
			s2, d2 = strides2[i2], sizes2[i2]
		}
		switch {
		case s1 == 0:
			// past the end of view 1's dimensions
			s1 = s2
			i2++
		case s2 == 0:
			s2 = s1
			i1++
		case i1+1 < n1 && strides1[i1+1] <= s2*(d2-1):
			// s2 spans more than view 1's next dimension: treat view 2
			// as singleton here
			s2 = s1
			d2 = 1
			i1++
		case i2+1 < n2 && strides2[i2+1] <= s1*(d1-1):
			s1 = s2
			d1 = 1
			i2++
		default:
			i1++
			i2++
		}
		cs := 1
		if len(comStrides) > 0 {
			cs = gcd(s1, s2)
		}
		comStrides = append(comStrides, cs)
		newStrides1 = append(newStrides1, s1/cs)
		newStrides2 = append(newStrides2, s2/cs)
		newSizes1 = append(newSizes1, d1)
		newSizes2 = append(newSizes2, d2)
	}

	newOrigin1 := offsetToCoordinates(origin1, comStrides)
	newOrigin2 := offsetToCoordinates(origin2, comStrides)

	// The views alias only if their index ranges overlap in every
	// common dimension.
	for i := range comStrides {
		if newOrigin1[i]+(newSizes1[i]-1)*newStrides1[i] < newOrigin2[i] {
			return false, nil
		}
		if newOrigin2[i]+(newSizes2[i]-1)*newStrides2[i] < newOrigin1[i] {
			return false, nil
		}
		if newStrides1[i] == newStrides2[i] && newStrides1[i] > 1 &&
			(newOrigin1[i]-newOrigin2[i])%newStrides1[i] != 0 {
			return false, nil
		}
	}
	return true, nil
}

// sortByStrides sorts the stride array smallest to largest, reordering
// the sizes array the same way.
func sortByStrides(strides, sizes []int) {
	for jj := len(strides) - 1; jj > 0; jj-- {
		for ii := 0; ii < jj; ii++ {
			if strides[ii] > strides[ii+1] {
				strides[ii], strides[ii+1] = strides[ii+1], strides[ii]
				sizes[ii], sizes[ii+1] = sizes[ii+1], sizes[ii]
			}
		}
	}
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	if a == 0 {
		return 1
	}
	return a
}
