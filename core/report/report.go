// Package report computes derived statistics from raw mark and
// attendance records. Every computation here is a pure function over
// fetched record sets; full float precision is kept throughout, with
// two-decimal rounding applied only when payloads are assembled.
package report

import (
	"math"
	"sort"

	"github.com/shulehq/shule/core/attendance"
	"github.com/shulehq/shule/core/mark"
)

const (
	// TopPerformersLimit caps the toppers ranking.
	TopPerformersLimit = 5
	// WeakThreshold is the average below which a student counts as weak.
	WeakThreshold = 40.0
	// LowAttendanceThreshold is the percentage below which attendance is low.
	LowAttendanceThreshold = 75.0
)

type StudentAverage struct {
	StudentID string
	Average   float64
	Count     int
}

// SingleStudentAverage returns the mean of one student's mark values;
// ok is false when there are no records ("no data", not zero).
func SingleStudentAverage(marks []mark.Mark) (avg float64, ok bool) {
	if len(marks) == 0 {
		return 0, false
	}
	var sum float64
	for _, mk := range marks {
		sum += mk.Marks
	}
	return sum / float64(len(marks)), true
}

// StudentAverages groups marks by student, preserving first-seen order,
// then stable-sorts descending by average so that ties keep document order.
func StudentAverages(marks []mark.Mark) []StudentAverage {
	idx := make(map[string]int, len(marks))
	avgs := make([]StudentAverage, 0, len(marks))
	for _, mk := range marks {
		i, ok := idx[mk.StudentID]
		if !ok {
			i = len(avgs)
			idx[mk.StudentID] = i
			avgs = append(avgs, StudentAverage{StudentID: mk.StudentID})
		}
		avgs[i].Average += mk.Marks
		avgs[i].Count++
	}
	for i := range avgs {
		avgs[i].Average /= float64(avgs[i].Count)
	}
	sort.SliceStable(avgs, func(i, j int) bool { return avgs[i].Average > avgs[j].Average })
	return avgs
}

// ClassAverage is the mean of per-student averages: students are weighted
// equally no matter how many marks each has. Zero with no students.
func ClassAverage(avgs []StudentAverage) float64 {
	if len(avgs) == 0 {
		return 0
	}
	var sum float64
	for _, sa := range avgs {
		sum += sa.Average
	}
	return sum / float64(len(avgs))
}

// TopPerformers returns the first n of the descending averages.
func TopPerformers(avgs []StudentAverage, n int) []StudentAverage {
	if len(avgs) < n {
		n = len(avgs)
	}
	return avgs[:n]
}

// WeakStudents returns every average strictly below the threshold, uncapped.
func WeakStudents(avgs []StudentAverage, threshold float64) []StudentAverage {
	weak := make([]StudentAverage, 0)
	for _, sa := range avgs {
		if sa.Average < threshold {
			weak = append(weak, sa)
		}
	}
	return weak
}

type SubjectAverage struct {
	SubjectID string
	Average   float64
	Count     int
}

// SubjectAverages groups marks by subject, preserving first-seen order.
func SubjectAverages(marks []mark.Mark) []SubjectAverage {
	idx := make(map[string]int, len(marks))
	avgs := make([]SubjectAverage, 0, len(marks))
	for _, mk := range marks {
		i, ok := idx[mk.SubjectID]
		if !ok {
			i = len(avgs)
			idx[mk.SubjectID] = i
			avgs = append(avgs, SubjectAverage{SubjectID: mk.SubjectID})
		}
		avgs[i].Average += mk.Marks
		avgs[i].Count++
	}
	for i := range avgs {
		avgs[i].Average /= float64(avgs[i].Count)
	}
	return avgs
}

type AttendanceTally struct {
	StudentID string
	Total     int
	Present   int
}

// Percent is present/total*100 at full precision.
// Zero recorded days is reported as 0%, not "no data".
func (t AttendanceTally) Percent() float64 {
	if t.Total == 0 {
		return 0
	}
	return float64(t.Present) / float64(t.Total) * 100
}

// AttendanceTallies groups records by student, preserving first-seen order.
func AttendanceTallies(recs []attendance.Attendance) []AttendanceTally {
	idx := make(map[string]int, len(recs))
	tallies := make([]AttendanceTally, 0, len(recs))
	for _, rec := range recs {
		i, ok := idx[rec.StudentID]
		if !ok {
			i = len(tallies)
			idx[rec.StudentID] = i
			tallies = append(tallies, AttendanceTally{StudentID: rec.StudentID})
		}
		tallies[i].Total++
		if rec.Status == attendance.StatusPresent {
			tallies[i].Present++
		}
	}
	return tallies
}

// LowAttendance returns every tally strictly below the threshold percentage.
func LowAttendance(tallies []AttendanceTally, threshold float64) []AttendanceTally {
	low := make([]AttendanceTally, 0)
	for _, t := range tallies {
		if t.Percent() < threshold {
			low = append(low, t)
		}
	}
	return low
}

// Round2 rounds to two decimal places; presentation boundary only.
func Round2(f float64) float64 {
	return math.Round(f*100) / 100
}
