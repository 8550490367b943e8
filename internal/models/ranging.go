package models

import (
	"github.com/shopspring/decimal"
	"time"
)

// SpeedOfSound is expressed in centimetres per microsecond (343 m/s).
const SpeedOfSound = 0.0343

// RawSample is an echo round-trip time in microseconds. Zero marks a pulse
// whose echo never arrived within the timeout.
type RawSample int64

const NoEcho RawSample = 0

func (s RawSample) Valid() bool {
	return s > 0
}

func (s RawSample) Duration() time.Duration {
	return time.Duration(s) * time.Microsecond
}

type Distance struct {
	Centimeters float64 `json:"centimeters"`
	Valid       bool    `json:"valid"`
}

var InvalidDistance = Distance{}

// DistanceFromSample halves the round trip and scales by the speed of sound.
func DistanceFromSample(sample RawSample) Distance {
	if !sample.Valid() {
		return InvalidDistance
	}
	return Distance{
		Centimeters: float64(sample) * SpeedOfSound / 2,
		Valid:       true,
	}
}

type AveragedReading struct {
	Distance     Distance  `json:"distance"`
	Samples      int       `json:"samples"`
	ValidSamples int       `json:"valid_samples"`
	Timestamp    time.Time `json:"timestamp"`
}

func (r *AveragedReading) Valid() bool {
	return r.Distance.Valid
}

// Rounded returns the centimetre value rounded half away from zero to two
// decimals. The float is read through its shortest decimal form so 18.865
// rounds up even though its binary value sits just below.
func (r *AveragedReading) Rounded() float64 {
	return decimal.NewFromFloat(r.Distance.Centimeters).Round(2).InexactFloat64()
}

type DistanceResponse struct {
	OK         bool     `json:"ok"`
	DistanceCM *float64 `json:"distance_cm"`
}

func NewDistanceResponse(reading *AveragedReading) DistanceResponse {
	if reading == nil || !reading.Valid() {
		return DistanceResponse{OK: false}
	}
	cm := reading.Rounded()
	return DistanceResponse{OK: true, DistanceCM: &cm}
}
