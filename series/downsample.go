package series

import "math"

// Mode selects how a view is reduced to the render budget.
type Mode uint8

const (
	// LTTB is the largest-triangle-three-buckets reduction. It selects
	// real source points chosen to preserve the visual shape of the
	// plotted line and retains the first and last points verbatim.
	LTTB Mode = iota
	// Average emits one synthetic point per bucket holding the mean of
	// the bucket's finite coordinates.
	Average
	// Max emits the source point with the largest y in each bucket.
	Max
	// Min emits the source point with the smallest y in each bucket.
	Min
)

func (m Mode) String() string {
	switch m {
	case LTTB:
		return "lttb"
	case Average:
		return "average"
	case Max:
		return "max"
	case Min:
		return "min"
	default:
		return "unknown"
	}
}

// Downsample reduces pts to at most target points using the given mode.
// It is deterministic: identical input and target always produce
// identical output. When the input already fits the budget the input
// slice itself is returned, so callers can cheaply detect the no-op
// case by identity. A negative target is rejected with a nil result.
func Downsample(pts []Point, target int, mode Mode) []Point {
	if target < 0 || len(pts) == 0 {
		return nil
	}
	if len(pts) <= target {
		return pts
	}
	switch mode {
	case Average, Max, Min:
		return aggregate(pts, target, mode)
	default:
		return lttb(pts, target)
	}
}

// lttb implements largest-triangle-three-buckets as described in
// Steinarsson's "Downsampling Time Series for Visual Representation".
// The interior is partitioned into target-2 buckets of approximately
// equal index width, and each bucket contributes the point forming the
// largest triangle with the previously selected point and the average
// point of the next bucket. Using the next bucket's average rather than
// its first point is what keeps the output from collapsing into a
// staircase at wide zoom levels.
func lttb(pts []Point, target int) []Point {
	n := len(pts)
	if target <= 1 {
		return []Point{pts[0]}
	}
	if target == 2 {
		return []Point{pts[0], pts[n-1]}
	}

	sampled := make([]Point, 0, target)
	sampled = append(sampled, pts[0])

	every := float64(n-2) / float64(target-2)
	a := 0
	for i := 0; i < target-2; i++ {
		// Average point of the next bucket forms the third triangle
		// vertex.
		avgStart := int(float64(i+1)*every) + 1
		avgEnd := int(float64(i+2)*every) + 1
		if avgEnd > n {
			avgEnd = n
		}
		var avgX, avgY float64
		for j := avgStart; j < avgEnd; j++ {
			avgX += pts[j].X
			avgY += pts[j].Y
		}
		length := float64(avgEnd - avgStart)
		avgX /= length
		avgY /= length

		bucketStart := int(float64(i)*every) + 1
		bucketEnd := int(float64(i+1)*every) + 1

		ax := pts[a].X
		ay := pts[a].Y
		maxArea := -1.0
		next := bucketStart
		for j := bucketStart; j < bucketEnd; j++ {
			area := math.Abs((ax-avgX)*(pts[j].Y-ay)-(ax-pts[j].X)*(avgY-ay)) * 0.5
			if area > maxArea {
				maxArea = area
				next = j
			}
		}
		sampled = append(sampled, pts[next])
		a = next
	}

	return append(sampled, pts[n-1])
}

// aggregate reduces pts to target buckets using the same boundaries as
// lttb: the first and last points occupy singleton buckets so the edges
// of the data are never truncated, and the interior is split into
// target-2 buckets of approximately equal index width.
func aggregate(pts []Point, target int, mode Mode) []Point {
	n := len(pts)
	out := make([]Point, 0, target)
	emit := func(start, end int) {
		if p, ok := aggregateBucket(pts[start:end], mode); ok {
			out = append(out, p)
		}
	}
	switch {
	case target <= 1:
		emit(0, n)
	case target == 2:
		emit(0, n/2)
		emit(n/2, n)
	default:
		emit(0, 1)
		every := float64(n-2) / float64(target-2)
		for i := 0; i < target-2; i++ {
			start := int(float64(i)*every) + 1
			end := int(float64(i+1)*every) + 1
			if end > n-1 {
				end = n - 1
			}
			emit(start, end)
		}
		emit(n-1, n)
	}
	return out
}

// aggregateBucket summarizes one bucket. Non-finite coordinates are
// excluded from counts and sums rather than poisoning the result; a
// bucket with no usable points contributes nothing.
func aggregateBucket(bucket []Point, mode Mode) (Point, bool) {
	switch mode {
	case Average:
		var sumX, sumY float64
		var count int
		var sumSize float64
		var sizeCount int
		for _, p := range bucket {
			if !isFinite(p.X) || !isFinite(p.Y) {
				continue
			}
			sumX += p.X
			sumY += p.Y
			count++
			if p.HasSize && isFinite(p.Size) {
				sumSize += p.Size
				sizeCount++
			}
		}
		if count == 0 {
			return Point{}, false
		}
		out := Point{X: sumX / float64(count), Y: sumY / float64(count)}
		// The size field is omitted entirely unless some point in the
		// bucket carried one; it is never defaulted to zero.
		if sizeCount > 0 {
			out.Size = sumSize / float64(sizeCount)
			out.HasSize = true
		}
		return out, true
	case Max, Min:
		best := -1
		for i, p := range bucket {
			if !isFinite(p.Y) {
				continue
			}
			if best < 0 {
				best = i
				continue
			}
			// Ties keep the first occurrence.
			if mode == Max && p.Y > bucket[best].Y {
				best = i
			} else if mode == Min && p.Y < bucket[best].Y {
				best = i
			}
		}
		if best < 0 {
			return Point{}, false
		}
		return bucket[best], true
	default:
		return Point{}, false
	}
}
