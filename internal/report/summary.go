// Package report aggregates beacon records per capture source and draws the
// comparison charts.
package report

import (
	"fmt"
	"math"
	"slices"

	"github.com/montanaflynn/stats"

	"github.com/roman-kulish/wifi-density/internal/beacon"
	"github.com/roman-kulish/wifi-density/internal/chart"
)

// whiskerReach is the distance of the whiskers from the box in IQRs.
const whiskerReach = 1.5

// Distribution describes the values of one measurement within a group.
type Distribution struct {
	Count       int
	Min         float64
	Q1          float64
	Median      float64
	Q3          float64
	Max         float64
	WhiskerLow  float64   // Smallest value no further than 1.5 IQR below Q1
	WhiskerHigh float64   // Largest value no further than 1.5 IQR above Q3
	Outliers    []float64 // Values beyond the whiskers, ascending
}

// BoxStats returns the quantities a box plot draws.
func (d *Distribution) BoxStats() chart.BoxStats {
	return chart.BoxStats{
		Q1:          d.Q1,
		Median:      d.Median,
		Q3:          d.Q3,
		WhiskerLow:  d.WhiskerLow,
		WhiskerHigh: d.WhiskerHigh,
		Outliers:    d.Outliers,
	}
}

// NewDistribution computes the distribution of values. It returns nil when
// there are no values.
func NewDistribution(values []float64) (*Distribution, error) {
	if len(values) == 0 {
		return nil, nil
	}

	data := stats.Float64Data(values)

	median, err := stats.Median(data)
	if err != nil {
		return nil, fmt.Errorf("median: %w", err)
	}
	lo, err := stats.Min(data)
	if err != nil {
		return nil, fmt.Errorf("min: %w", err)
	}
	hi, err := stats.Max(data)
	if err != nil {
		return nil, fmt.Errorf("max: %w", err)
	}
	q, err := stats.Quartile(data)
	if err != nil {
		return nil, fmt.Errorf("quartiles: %w", err)
	}

	// a single value has no halves to take quartiles of
	q1, q3 := q.Q1, q.Q3
	if math.IsNaN(q1) {
		q1 = median
	}
	if math.IsNaN(q3) {
		q3 = median
	}

	d := Distribution{
		Count:       len(values),
		Min:         lo,
		Q1:          q1,
		Median:      median,
		Q3:          q3,
		Max:         hi,
		WhiskerLow:  q1,
		WhiskerHigh: q3,
	}

	iqr := q3 - q1
	lowFence, highFence := q1-whiskerReach*iqr, q3+whiskerReach*iqr

	sorted := slices.Clone(values)
	slices.Sort(sorted)
	for _, v := range sorted {
		switch {
		case v < lowFence || v > highFence:
			d.Outliers = append(d.Outliers, v)
		default:
			d.WhiskerLow = math.Min(d.WhiskerLow, v)
			d.WhiskerHigh = math.Max(d.WhiskerHigh, v)
		}
	}

	return &d, nil
}

// Summary aggregates the records of one capture source.
type Summary struct {
	Source   string
	Networks int // Number of records, one per BSSID
	SSIDs    int // Distinct network names
	PHYTypes int // Distinct radio standards

	Signal *Distribution // nil when no record reports a signal
	Noise  *Distribution // nil when no record reports noise
}

// Summarize groups records by source, in the order sources first appear, and
// summarizes every group.
func Summarize(records []beacon.Record) ([]Summary, error) {
	groups := groupBySource(records)

	summaries := make([]Summary, 0, len(groups))
	for _, g := range groups {
		ssids := map[string]struct{}{}
		phyTypes := map[string]struct{}{}
		var signal, noise []float64

		for _, r := range g.records {
			ssids[r.SSID] = struct{}{}
			phyTypes[r.PHYType] = struct{}{}
			if r.SignalDBm != nil {
				signal = append(signal, float64(*r.SignalDBm))
			}
			if r.NoiseDBm != nil {
				noise = append(noise, float64(*r.NoiseDBm))
			}
		}

		s := Summary{
			Source:   g.source,
			Networks: len(g.records),
			SSIDs:    len(ssids),
			PHYTypes: len(phyTypes),
		}

		var err error
		if s.Signal, err = NewDistribution(signal); err != nil {
			return nil, fmt.Errorf("signal of %s: %w", g.source, err)
		}
		if s.Noise, err = NewDistribution(noise); err != nil {
			return nil, fmt.Errorf("noise of %s: %w", g.source, err)
		}

		summaries = append(summaries, s)
	}

	return summaries, nil
}

type group struct {
	source  string
	records []beacon.Record
}

func groupBySource(records []beacon.Record) []group {
	var groups []group
	index := map[string]int{}

	for _, r := range records {
		i, ok := index[r.Source]
		if !ok {
			i = len(groups)
			index[r.Source] = i
			groups = append(groups, group{source: r.Source})
		}
		groups[i].records = append(groups[i].records, r)
	}
	return groups
}
