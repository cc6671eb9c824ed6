// Package downsample implements the Largest-Triangle-Three-Buckets visual
// downsampler used to reduce long series to a screen-rate point budget.
package downsample

import "Wavecache/core"

// LTTB reduces s to exactly k points using the Largest-Triangle-Three-Buckets
// rule. If s has k or fewer samples, s is returned unchanged. Every output
// sample is an original sample; no new x values are introduced.
func LTTB(s core.Series, k int) core.Series {
	n := s.Len()
	if n <= k || k < 3 {
		return s
	}

	x, y := s.X, s.Y
	outX := make([]float64, 0, k)
	outY := make([]float64, 0, k)

	outX = append(outX, x[0])
	outY = append(outY, y[0])

	// bucketCount interior buckets partition the interior n-2 points.
	bucketCount := k - 2
	w := float64(n-2) / float64(bucketCount)

	a := 0
	for i := 0; i < bucketCount; i++ {
		lo := int(float64(i)*w) + 1
		hi := int(float64(i+1)*w) + 1
		if lo < 1 {
			lo = 1
		}
		if hi > n-1 {
			hi = n - 1
		}
		if lo >= hi {
			hi = lo + 1
			if hi > n-1 {
				hi = n - 1
			}
		}

		// Average point of the NEXT bucket (or the last point at the end).
		nlo := int(float64(i+1)*w) + 1
		nhi := int(float64(i+2)*w) + 1
		if nlo < 1 {
			nlo = 1
		}
		if nhi > n-1 {
			nhi = n - 1
		}
		if i == bucketCount-1 {
			nlo, nhi = n-1, n
		}
		if nlo >= nhi {
			nhi = nlo + 1
			if nhi > n {
				nhi = n
			}
		}

		var avgX, avgY float64
		cnt := 0
		for j := nlo; j < nhi; j++ {
			avgX += x[j]
			avgY += y[j]
			cnt++
		}
		if cnt > 0 {
			avgX /= float64(cnt)
			avgY /= float64(cnt)
		} else {
			avgX, avgY = x[n-1], y[n-1]
		}

		bestJ := lo
		bestArea := -1.0
		ax, ay := x[a], y[a]
		for j := lo; j < hi; j++ {
			area := triangleArea(ax, ay, x[j], y[j], avgX, avgY)
			if area > bestArea {
				bestArea = area
				bestJ = j
			}
		}

		outX = append(outX, x[bestJ])
		outY = append(outY, y[bestJ])
		a = bestJ
	}

	outX = append(outX, x[n-1])
	outY = append(outY, y[n-1])

	return core.Series{X: outX, Y: outY}
}

func triangleArea(ax, ay, jx, jy, bx, by float64) float64 {
	area := (ax-bx)*(jy-ay) - (ax-jx)*(by-ay)
	if area < 0 {
		return -area / 2
	}
	return area / 2
}
