package beacon

// Merge concatenates the records of runs in the order given. Records of the
// same BSSID from different runs are all kept.
func Merge(runs ...Run) []Record {
	var n int
	for _, r := range runs {
		n += len(r.Records)
	}

	merged := make([]Record, 0, n)
	for _, r := range runs {
		merged = append(merged, r.Records...)
	}
	return merged
}
