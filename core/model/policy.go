package model

import "fmt"

// PolicyConfig holds the no-meeting and focus-time rules evaluated by the enforcer.
type PolicyConfig struct {
	MinNoMeetingDaysPerWeek   int      `json:"min_no_meeting_days_per_week" yaml:"min_no_meeting_days_per_week"`
	MinFocusBlocksPerDay      int      `json:"min_focus_blocks_per_day" yaml:"min_focus_blocks_per_day"`
	FocusBlockDurationMinutes int      `json:"focus_block_duration_minutes" yaml:"focus_block_duration_minutes"`
	EnforceExceptions         bool     `json:"enforce_exceptions" yaml:"enforce_exceptions"`
	AllowedExceptionTypes     []string `json:"allowed_exception_types" yaml:"allowed_exception_types"`
	// OverrideCodes grant an exception in allowance checks regardless of meeting type.
	OverrideCodes []string `json:"override_codes,omitempty" yaml:"override_codes,omitempty"`
}

// DefaultPolicyConfig returns the system defaults.
func DefaultPolicyConfig() PolicyConfig {
	return PolicyConfig{
		MinNoMeetingDaysPerWeek:   1,
		MinFocusBlocksPerDay:      2,
		FocusBlockDurationMinutes: 90,
		EnforceExceptions:         false,
		AllowedExceptionTypes:     []string{MeetingUrgent.String(), MeetingExecutive.String()},
	}
}

// SetDefaults fills the fields whose zero value is not a valid setting.
// The minimum thresholds accept 0, so they are left as given; callers that
// want the default thresholds start from DefaultPolicyConfig.
func (c *PolicyConfig) SetDefaults() {
	def := DefaultPolicyConfig()
	if c.FocusBlockDurationMinutes == 0 {
		c.FocusBlockDurationMinutes = def.FocusBlockDurationMinutes
	}
	if c.AllowedExceptionTypes == nil {
		c.AllowedExceptionTypes = def.AllowedExceptionTypes
	}
}

// Validate rejects negative thresholds and unknown exception types.
func (c PolicyConfig) Validate() error {
	if c.MinNoMeetingDaysPerWeek < 0 || c.MinNoMeetingDaysPerWeek > 7 {
		return fmt.Errorf("%w: min_no_meeting_days_per_week must be 0-7", ErrInvalidInput)
	}
	if c.MinFocusBlocksPerDay < 0 {
		return fmt.Errorf("%w: min_focus_blocks_per_day must not be negative", ErrInvalidInput)
	}
	if c.FocusBlockDurationMinutes <= 0 {
		return fmt.Errorf("%w: focus_block_duration_minutes must be positive", ErrInvalidInput)
	}
	for _, t := range c.AllowedExceptionTypes {
		if _, err := ParseMeetingType(t); err != nil {
			return err
		}
	}
	return nil
}

// ExceptionAllowed reports whether meetings of type t are exempt from
// no-meeting-day rules under this configuration.
func (c PolicyConfig) ExceptionAllowed(t MeetingType) bool {
	if !c.EnforceExceptions {
		return false
	}
	for _, s := range c.AllowedExceptionTypes {
		if s == t.String() {
			return true
		}
	}
	return false
}
