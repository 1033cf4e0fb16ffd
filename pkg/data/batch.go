package data

import "github.com/pkg/errors"

// Sample is one row of features with a scalar target.
type Sample struct {
	X []float64
	Y float64
}

// Batch is a group of consecutive samples.
type Batch struct {
	X [][]float64
	Y []float64
}

// Len returns the number of samples in the batch.
func (b Batch) Len() int { return len(b.Y) }

// Emit streams X[order[i]], y[order[i]] into the returned channel and closes it.
// A nil order emits rows in their natural order. Closing done stops it early.
func Emit(X [][]float64, y []float64, order []int, done <-chan struct{}) (<-chan Sample, error) {
	if len(X) != len(y) {
		return nil, errors.Errorf("%d feature rows but %d targets", len(X), len(y))
	}
	for _, idx := range order {
		if idx < 0 || idx >= len(X) {
			return nil, errors.Errorf("sample index %d out of range [0, %d)", idx, len(X))
		}
	}
	out := make(chan Sample)
	go func() {
		defer close(out)
		n := len(X)
		if order != nil {
			n = len(order)
		}
		for i := 0; i < n; i++ {
			idx := i
			if order != nil {
				idx = order[i]
			}
			select {
			case <-done:
				return
			case out <- Sample{X: X[idx], Y: y[idx]}:
			}
		}
	}()
	return out, nil
}

// Batcher groups samples from in into batches of batchSize and sends them on out.
// The final batch may be short. out is closed once in is drained or done is closed.
func Batcher(in <-chan Sample, batchSize int, out chan<- Batch) (done chan struct{}) {
	done = make(chan struct{})
	if batchSize <= 0 {
		batchSize = 1
	}

	go func() {
		defer close(out)

		var cur Batch
		flush := func() bool {
			select {
			case <-done:
				return false
			case out <- cur:
				cur = Batch{}
				return true
			}
		}
		for {
			select {
			case <-done:
				return
			case s, ok := <-in:
				if !ok {
					if cur.Len() > 0 {
						flush()
					}
					return
				}
				cur.X = append(cur.X, s.X)
				cur.Y = append(cur.Y, s.Y)
				if cur.Len() == batchSize && !flush() {
					return
				}
			}
		}
	}()
	return done
}
