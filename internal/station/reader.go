package station

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"time"
)

// minSamplesPerYear is the fewest samples a calendar year may carry before
// the whole year is dropped during cleaning.
const minSamplesPerYear = 120

// Series is one station's daily streamflow record.
type Series struct {
	Name  string
	Dates []time.Time
	Flow  []float64
}

// ReadCSV loads a wide-format CSV: the first column holds dates
// (YYYY-MM-DD), every other column one station's streamflow. Empty cells
// are read as NaN and removed later by CleanStreamflow.
func ReadCSV(path string) ([]*Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseCSV(f)
}

func parseCSV(r io.Reader) ([]*Series, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if len(header) < 2 {
		return nil, fmt.Errorf("want a date column plus at least one station, got %d columns", len(header))
	}

	series := make([]*Series, len(header)-1)
	for i := range series {
		series[i] = &Series{Name: header[i+1]}
	}

	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line+1, err)
		}
		line++
		d, err := time.Parse("2006-01-02", rec[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		for i, s := range series {
			v := math.NaN()
			if cell := rec[i+1]; cell != "" {
				v, err = strconv.ParseFloat(cell, 64)
				if err != nil {
					return nil, fmt.Errorf("line %d station %s: %w", line, s.Name, err)
				}
			}
			s.Dates = append(s.Dates, d)
			s.Flow = append(s.Flow, v)
		}
	}
	return series, nil
}

// CleanStreamflow drops non-finite samples, takes absolute values, and
// removes every calendar year with fewer than minSamplesPerYear remaining
// samples. The series is modified in place.
func CleanStreamflow(s *Series) {
	counts := make(map[int]int)
	k := 0
	for i, v := range s.Flow {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		s.Flow[k] = math.Abs(v)
		s.Dates[k] = s.Dates[i]
		counts[s.Dates[i].Year()]++
		k++
	}
	s.Flow = s.Flow[:k]
	s.Dates = s.Dates[:k]

	k = 0
	for i, d := range s.Dates {
		if counts[d.Year()] < minSamplesPerYear {
			continue
		}
		s.Flow[k] = s.Flow[i]
		s.Dates[k] = d
		k++
	}
	s.Flow = s.Flow[:k]
	s.Dates = s.Dates[:k]
}
