package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// cronParser accepts the standard five field format without seconds.
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateCronSchedule checks a five field cron expression such as
// "0 3 * * *". Descriptors like "@daily" are rejected.
func ValidateCronSchedule(schedule string) error {
	if schedule == "" {
		return errors.New("cron schedule is empty")
	}
	if _, err := cronParser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", schedule, err)
	}
	return nil
}

// ValidateTimezone checks that name is an IANA zone known to the system.
func ValidateTimezone(name string) error {
	if name == "" {
		return errors.New("timezone is empty")
	}
	if _, err := time.LoadLocation(name); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", name, err)
	}
	return nil
}

// ValidateDuration checks min <= d <= max.
func ValidateDuration(d, min, max time.Duration) error {
	switch {
	case min > max:
		return fmt.Errorf("invalid range: min %v is greater than max %v", min, max)
	case d < min:
		return fmt.Errorf("duration %v is below minimum %v", d, min)
	case d > max:
		return fmt.Errorf("duration %v exceeds maximum %v", d, max)
	}
	return nil
}

// ValidateIntRange checks min <= v <= max.
func ValidateIntRange(v, min, max int) error {
	switch {
	case min > max:
		return fmt.Errorf("invalid range: min %d is greater than max %d", min, max)
	case v < min:
		return fmt.Errorf("value %d is below minimum %d", v, min)
	case v > max:
		return fmt.Errorf("value %d exceeds maximum %d", v, max)
	}
	return nil
}

func ValidatePositiveDuration(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("duration must be positive, got %v", d)
	}
	return nil
}
