package probe

import "fmt"

type StreamStatistics struct {
	Type       string  `json:"streamType"`
	Pid        uint16  `json:"pid"`
	Pictures   int     `json:"pictures"`
	IDRs       int     `json:"idrs"`
	FrameRate  float64 `json:"frameRate"`
	TimeStamps []int64 `json:"-"`
	MaxStep    int64   `json:"maxStep,omitempty"`
	MinStep    int64   `json:"minStep,omitempty"`
	AvgStep    int64   `json:"avgStep,omitempty"`
	// RAI-markers
	RAIPTS         []int64 `json:"-"`
	IDRPTS         []int64 `json:"-"`
	RAIGOPDuration float64 `json:"RAIGoPDuration,omitempty"`
	IDRGOPDuration float64 `json:"IDRGoPDuration,omitempty"`
	// Errors
	Errors []string `json:"errors,omitempty"`
}

func (s *StreamStatistics) addPicture(p PictureData) {
	s.Pictures++
	s.TimeStamps = append(s.TimeStamps, p.decodeTime())
	if p.RAI {
		s.RAIPTS = append(s.RAIPTS, p.PTS)
	}
	if p.IDR {
		s.IDRs++
		s.IDRPTS = append(s.IDRPTS, p.PTS)
	}
}

// Finish derives frame rate and GoP durations from the collected timestamps.
func (s *StreamStatistics) Finish(timescale int64) {
	s.Errors = nil
	s.calculateFrameRate(timescale)
	s.calculateGoPDuration(timescale)
}

func sliceMinMaxAverage(values []int64) (min, max, avg int64) {
	if len(values) == 0 {
		return 0, 0, 0
	}

	min = values[0]
	max = values[0]
	sum := int64(0)
	for _, number := range values {
		if number < min {
			min = number
		}
		if number > max {
			max = number
		}
		sum += number
	}
	avg = sum / int64(len(values))
	return min, max, avg
}

func CalculateSteps(timestamps []int64) []int64 {
	if len(timestamps) < 2 {
		return nil
	}

	// PTS/DTS are 33-bit values, so it wraps around after 26.5 hours
	steps := make([]int64, len(timestamps)-1)
	for i := 0; i < len(timestamps)-1; i++ {
		steps[i] = SignedPTSDiff(timestamps[i+1], timestamps[i])
	}
	return steps
}

func (s *StreamStatistics) calculateFrameRate(timescale int64) {
	if len(s.TimeStamps) < 2 {
		s.Errors = append(s.Errors, "too few timestamps to calculate frame rate")
		return
	}

	steps := CalculateSteps(s.TimeStamps)
	minStep, maxStep, avgStep := sliceMinMaxAverage(steps)
	if maxStep != minStep {
		s.Errors = append(s.Errors, "irregular PTS/DTS steps")
		s.MinStep, s.MaxStep, s.AvgStep = minStep, maxStep, avgStep
	}
	if avgStep <= 0 {
		s.Errors = append(s.Errors, fmt.Sprintf("non-increasing timestamps (average step %d)", avgStep))
		return
	}
	s.FrameRate = float64(timescale) / float64(avgStep)
}

func (s *StreamStatistics) calculateGoPDuration(timescale int64) {
	if len(s.IDRPTS) < 2 {
		s.Errors = append(s.Errors, "no GoP duration since less than 2 I-frames")
		return
	}

	_, _, idrStep := sliceMinMaxAverage(CalculateSteps(s.IDRPTS))
	s.IDRGOPDuration = float64(idrStep) / float64(timescale)
	if len(s.RAIPTS) >= 2 {
		_, _, raiStep := sliceMinMaxAverage(CalculateSteps(s.RAIPTS))
		s.RAIGOPDuration = float64(raiStep) / float64(timescale)
	}
}
