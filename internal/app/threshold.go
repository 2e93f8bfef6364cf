package app

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"inactivity_notifier/internal/domain/notification"
)

const day = 24 * time.Hour

// Threshold is one inactivity milestone and the template used for it.
type Threshold struct {
	Days       int
	TemplateID string
}

// Category is the log category used for deduplication of this threshold.
func (t Threshold) Category() notification.Category {
	return notification.InactivityCategory(t.Days)
}

// ThresholdConfig is the ordered set of milestones. Days are distinct and positive.
type ThresholdConfig struct {
	thresholds []Threshold
}

// NewThresholdConfig validates days and maps each one to its default template id.
func NewThresholdConfig(days []int) (ThresholdConfig, error) {
	if len(days) == 0 {
		return ThresholdConfig{}, fmt.Errorf("at least one inactivity threshold is required")
	}
	seen := make(map[int]struct{}, len(days))
	thresholds := make([]Threshold, 0, len(days))
	for _, d := range days {
		if d <= 0 {
			return ThresholdConfig{}, fmt.Errorf("threshold must be a positive number of days, got %d", d)
		}
		if _, dup := seen[d]; dup {
			return ThresholdConfig{}, fmt.Errorf("duplicate threshold %d", d)
		}
		seen[d] = struct{}{}
		thresholds = append(thresholds, Threshold{Days: d, TemplateID: string(notification.InactivityCategory(d))})
	}
	return ThresholdConfig{thresholds: thresholds}, nil
}

// ParseThresholds parses a comma separated list such as "3,7,14". Empty items are rejected.
func ParseThresholds(raw string) (ThresholdConfig, error) {
	if strings.TrimSpace(raw) == "" {
		return NewThresholdConfig(nil)
	}
	var days []int
	for i, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			return ThresholdConfig{}, fmt.Errorf("empty threshold at position %d in %q", i+1, raw)
		}
		d, err := strconv.Atoi(part)
		if err != nil {
			return ThresholdConfig{}, fmt.Errorf("invalid threshold %q: %w", part, err)
		}
		days = append(days, d)
	}
	return NewThresholdConfig(days)
}

// Thresholds returns a copy of the configured milestones in configuration order.
func (c ThresholdConfig) Thresholds() []Threshold {
	out := make([]Threshold, len(c.thresholds))
	copy(out, c.thresholds)
	return out
}

// Match returns every threshold whose day count equals elapsed exactly.
// A user inactive past a milestone that was never hit does not match it later.
func (c ThresholdConfig) Match(elapsed int) []Threshold {
	var matched []Threshold
	for _, t := range c.thresholds {
		if t.Days == elapsed {
			matched = append(matched, t)
		}
	}
	return matched
}

func (c ThresholdConfig) String() string {
	parts := make([]string, len(c.thresholds))
	for i, t := range c.thresholds {
		parts[i] = strconv.Itoa(t.Days)
	}
	return strings.Join(parts, ",")
}

// ElapsedDays is the number of whole 24h periods between lastActivity and now,
// floored. It is negative when lastActivity lies in the future.
func ElapsedDays(now, lastActivity time.Time) int {
	diff := now.Sub(lastActivity)
	days := int(diff / day)
	if diff < 0 && diff%day != 0 {
		days--
	}
	return days
}
