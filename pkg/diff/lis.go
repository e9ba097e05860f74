package diff

// lis returns the positions in seq of one longest strictly increasing
// subsequence. Among equal-length candidates it keeps the one ending with
// the smallest values, scanning left to right.
func lis(seq []int) []int {
	if len(seq) == 0 {
		return nil
	}
	prev := make([]int, len(seq))
	tails := make([]int, 0, len(seq)) // positions in seq
	for i, v := range seq {
		lo, hi := 0, len(tails)
		for lo < hi {
			mid := (lo + hi) / 2
			if seq[tails[mid]] < v {
				lo = mid + 1
			} else {
				hi = mid
			}
		}
		if lo > 0 {
			prev[i] = tails[lo-1]
		} else {
			prev[i] = -1
		}
		if lo == len(tails) {
			tails = append(tails, i)
		} else {
			tails[lo] = i
		}
	}
	out := make([]int, len(tails))
	for i, k := len(tails)-1, tails[len(tails)-1]; i >= 0; i-- {
		out[i] = k
		k = prev[k]
	}
	return out
}
