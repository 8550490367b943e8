package services

import (
	"github.com/rs/zerolog"
	"sync"
	"time"
	"ultrasonic-web/internal/interfaces"
	"ultrasonic-web/internal/models"
)

const DefaultSampleCount = 3

type RangingService struct {
	sensor      interfaces.IPulseSensor
	clock       interfaces.IClock
	publisher   interfaces.IReadingPublisher
	samples     int
	sampleDelay time.Duration
	logger      zerolog.Logger

	// one physical sensor: bursts must not interleave
	mu sync.Mutex
}

func NewRangingService(
	sensor interfaces.IPulseSensor,
	clock interfaces.IClock,
	samples int,
	sampleDelay time.Duration,
	logger zerolog.Logger,
) *RangingService {
	if samples <= 0 {
		samples = DefaultSampleCount
	}
	return &RangingService{
		sensor:      sensor,
		clock:       clock,
		samples:     samples,
		sampleDelay: sampleDelay,
		logger:      logger,
	}
}

// SetPublisher attaches telemetry. A nil publisher disables it.
func (s *RangingService) SetPublisher(publisher interfaces.IReadingPublisher) {
	s.mu.Lock()
	s.publisher = publisher
	s.mu.Unlock()
}

// MeasureOnce takes a single reading. Timeouts and sensor errors both come
// back as an invalid distance.
func (s *RangingService) MeasureOnce() models.Distance {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.measureOnce()
}

func (s *RangingService) measureOnce() models.Distance {
	sample, err := s.sensor.EchoPulse()
	if err != nil {
		s.logger.Warn().Err(err).Msg("echo pulse failed")
		return models.InvalidDistance
	}
	s.logger.Debug().
		Dur("echo", sample.Duration()).
		Bool("valid", sample.Valid()).
		Msg("echo pulse")
	return models.DistanceFromSample(sample)
}

// MeasureAveraged takes n readings, pausing after each, and returns the
// arithmetic mean of the valid ones. n <= 0 uses the configured count.
func (s *RangingService) MeasureAveraged(n int) models.AveragedReading {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n <= 0 {
		n = s.samples
	}

	total := 0.0
	valid := 0
	for i := 0; i < n; i++ {
		distance := s.measureOnce()
		if distance.Valid {
			total += distance.Centimeters
			valid++
		}
		s.clock.Sleep(s.sampleDelay)
	}

	reading := models.AveragedReading{
		Samples:      n,
		ValidSamples: valid,
		Timestamp:    s.clock.Now(),
	}
	if valid > 0 {
		reading.Distance = models.Distance{Centimeters: total / float64(valid), Valid: true}
	}

	s.logger.Debug().
		Int("samples", n).
		Int("valid_samples", valid).
		Bool("ok", reading.Valid()).
		Float64("distance_cm", reading.Distance.Centimeters).
		Msg("averaged reading")

	return reading
}

// Reading runs a burst with the configured sample count and, when telemetry
// is attached, publishes the result. Publish failures are logged only.
func (s *RangingService) Reading() models.AveragedReading {
	reading := s.MeasureAveraged(s.samples)

	s.mu.Lock()
	publisher := s.publisher
	s.mu.Unlock()

	if publisher != nil {
		if err := publisher.PublishReading(&reading); err != nil {
			s.logger.Warn().Err(err).Msg("could not publish reading")
		}
	}

	return reading
}
