package zipper

import "strconv"

// Batch is one labeled subset of a folder's normal-file list (spec section
// 4.2: "partition the normal file list into batches of at most
// SPLIT_THRESHOLD entries, labeled Part1..PartN (or Full if exactly one
// batch)").
type Batch struct {
	Label string
	Files []string
}

func partitionBatches(files []string, splitThreshold int) []Batch {
	if len(files) == 0 {
		return nil
	}
	if splitThreshold <= 0 {
		splitThreshold = len(files)
	}

	var batches []Batch
	for start := 0; start < len(files); start += splitThreshold {
		end := start + splitThreshold
		if end > len(files) {
			end = len(files)
		}
		batches = append(batches, Batch{Files: files[start:end]})
	}

	if len(batches) == 1 {
		batches[0].Label = "Full"
		return batches
	}
	for i := range batches {
		batches[i].Label = "Part" + strconv.Itoa(i+1)
	}
	return batches
}
