package tracker

import (
	"errors"
	"fmt"
)

// jvLarge is used as infinity when searching for minimum reduced costs
const jvLarge = 1000000.0

var errJVAugment = errors.New("lapjv augmentation failed")

// jvSolver holds the working state of the Jonker-Volgenant algorithm for a
// dense square cost matrix
type jvSolver struct {
	n    int
	cost [][]float64
	// x is the column assigned to each row, y the row assigned to each column
	x, y []int
	// v are the column dual variables
	v []float64
	// free lists rows without an assignment
	free []int
}

// solveJV solves the linear assignment problem for a square cost matrix,
// returning the column assigned to each row
func solveJV(cost [][]float64) ([]int, error) {

	n := len(cost)

	if n == 0 {
		return nil, nil
	}

	for i, row := range cost {
		if len(row) != n {
			return nil, fmt.Errorf("lapjv cost matrix must be square, row %d has %d columns, want %d",
				i, len(row), n)
		}
	}

	s := &jvSolver{
		n:    n,
		cost: cost,
		x:    make([]int, n),
		y:    make([]int, n),
		v:    make([]float64, n),
		free: make([]int, n),
	}

	nFree := s.reduceColumns()

	// two rounds of augmenting row reduction as in the JV paper
	for i := 0; nFree > 0 && i < 2; i++ {
		nFree = s.augmentRows(nFree)
	}

	if nFree > 0 {
		if err := s.augment(nFree); err != nil {
			return nil, err
		}
	}

	return s.x, nil
}

// reduceColumns performs column reduction and reduction transfer, returning
// the number of rows left unassigned
func (s *jvSolver) reduceColumns() int {

	n := s.n
	unique := make([]bool, n)

	for i := 0; i < n; i++ {
		s.x[i] = -1
		s.v[i] = jvLarge
		s.y[i] = 0
	}

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if c := s.cost[i][j]; c < s.v[j] {
				s.v[j] = c
				s.y[j] = i
			}
		}
	}

	for i := range unique {
		unique[i] = true
	}

	for j := n - 1; j >= 0; j-- {
		i := s.y[j]
		if s.x[i] < 0 {
			s.x[i] = j
		} else {
			unique[i] = false
			s.y[j] = -1
		}
	}

	nFree := 0

	for i := 0; i < n; i++ {

		if s.x[i] < 0 {
			s.free[nFree] = i
			nFree++
			continue
		}

		if !unique[i] {
			continue
		}

		j := s.x[i]
		minVal := jvLarge

		for j2 := 0; j2 < n; j2++ {
			if j2 == j {
				continue
			}
			if c := s.cost[i][j2] - s.v[j2]; c < minVal {
				minVal = c
			}
		}

		s.v[j] -= minVal
	}

	return nFree
}

// augmentRows performs augmenting row reduction over the free rows,
// returning the number of rows still free
func (s *jvSolver) augmentRows(nFree int) int {

	n := s.n
	current := 0
	newFree := 0
	rrCnt := 0

	for current < nFree {

		rrCnt++
		freeI := s.free[current]
		current++

		// find the lowest and second lowest reduced cost of the row
		j1 := 0
		v1 := s.cost[freeI][0] - s.v[0]
		j2 := -1
		v2 := jvLarge

		for j := 1; j < n; j++ {
			c := s.cost[freeI][j] - s.v[j]
			if c >= v2 {
				continue
			}
			if c >= v1 {
				v2 = c
				j2 = j
			} else {
				v2, j2 = v1, j1
				v1, j1 = c, j
			}
		}

		i0 := s.y[j1]
		v1New := s.v[j1] - (v2 - v1)
		v1Lowers := v1New < s.v[j1]

		if rrCnt < current*n {

			if v1Lowers {
				s.v[j1] = v1New
			} else if i0 >= 0 && j2 >= 0 {
				j1 = j2
				i0 = s.y[j2]
			}

			if i0 >= 0 {
				if v1Lowers {
					current--
					s.free[current] = i0
				} else {
					s.free[newFree] = i0
					newFree++
				}
			}

		} else if i0 >= 0 {
			s.free[newFree] = i0
			newFree++
		}

		s.x[freeI] = j1
		s.y[j1] = freeI
	}

	return newFree
}

// augment assigns the remaining free rows along shortest augmenting paths
func (s *jvSolver) augment(nFree int) error {

	n := s.n
	pred := make([]int, n)

	for _, freeI := range s.free[:nFree] {

		j := s.findPath(freeI, pred)

		if j < 0 || j >= n {
			return fmt.Errorf("%w: no augmenting path from row %d", errJVAugment, freeI)
		}

		i := -1

		for k := 0; i != freeI; k++ {

			if k >= n {
				return fmt.Errorf("%w: path from row %d does not terminate", errJVAugment, freeI)
			}

			i = pred[j]
			s.y[j] = i
			j, s.x[i] = s.x[i], j
		}
	}

	return nil
}

// findPath runs a single modified Dijkstra shortest path search from the
// given row and returns the free column reached
func (s *jvSolver) findPath(startI int, pred []int) int {

	n := s.n
	lo, hi := 0, 0
	finalJ := -1
	nReady := 0
	cols := make([]int, n)
	d := make([]float64, n)

	for j := 0; j < n; j++ {
		cols[j] = j
		pred[j] = startI
		d[j] = s.cost[startI][j] - s.v[j]
	}

	for finalJ == -1 {

		// no columns left on the SCAN list
		if lo == hi {
			nReady = lo
			hi = s.findMin(lo, d, cols)

			for k := lo; k < hi; k++ {
				if j := cols[k]; s.y[j] < 0 {
					finalJ = j
				}
			}
		}

		if finalJ == -1 {
			finalJ = s.scan(&lo, &hi, d, cols, pred)
		}
	}

	mind := d[cols[lo]]

	for k := 0; k < nReady; k++ {
		j := cols[k]
		s.v[j] += d[j] - mind
	}

	return finalJ
}

// findMin moves the columns with the minimum d[j] onto the SCAN list,
// returning its new upper bound
func (s *jvSolver) findMin(lo int, d []float64, cols []int) int {

	hi := lo + 1
	mind := d[cols[lo]]

	for k := hi; k < s.n; k++ {

		j := cols[k]

		if d[j] > mind {
			continue
		}

		if d[j] < mind {
			hi = lo
			mind = d[j]
		}

		cols[k] = cols[hi]
		cols[hi] = j
		hi++
	}

	return hi
}

// scan tries to lower d of the TODO columns using the columns on the SCAN
// list.  It returns a free column once one is reached at minimum distance,
// otherwise -1.
func (s *jvSolver) scan(lo, hi *int, d []float64, cols, pred []int) int {

	for *lo != *hi {

		j := cols[*lo]
		*lo++
		i := s.y[j]
		mind := d[j]
		h := s.cost[i][j] - s.v[j] - mind

		for k := *hi; k < s.n; k++ {

			j = cols[k]
			reduced := s.cost[i][j] - s.v[j] - h

			if reduced >= d[j] {
				continue
			}

			d[j] = reduced
			pred[j] = i

			if reduced == mind {
				if s.y[j] < 0 {
					return j
				}

				cols[k] = cols[*hi]
				cols[*hi] = j
				(*hi)++
			}
		}
	}

	return -1
}
