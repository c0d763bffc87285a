package forecast

// fold is one forward-chaining cross-validation split: training rows
// [0, trainEnd) validated on [valStart, valEnd). Every validation row is
// strictly later in time than every training row, so no future information
// leaks into the fit.
type fold struct {
	trainEnd int
	valStart int
	valEnd   int
}

// forwardChainFolds splits n chronologically ordered rows into k folds. The
// rows are cut into k+1 contiguous blocks; fold i trains on blocks 0..i and
// validates on block i+1, with the last fold absorbing the remainder.
func forwardChainFolds(n, k int) []fold {
	block := n / (k + 1)
	folds := make([]fold, 0, k)
	for i := 0; i < k; i++ {
		f := fold{
			trainEnd: block * (i + 1),
			valStart: block * (i + 1),
			valEnd:   block * (i + 2),
		}
		if i == k-1 {
			f.valEnd = n
		}
		folds = append(folds, f)
	}
	return folds
}
