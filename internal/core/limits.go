package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/vovakirdan/lobbychat/internal/presence"
)

// Limits bounds the size of client-supplied fields.
type Limits struct {
	MaxNameRunes      int `mapstructure:"max_name_runes" yaml:"max_name_runes"`
	MaxLabelRunes     int `mapstructure:"max_label_runes" yaml:"max_label_runes"`
	MaxTextRunes      int `mapstructure:"max_text_runes" yaml:"max_text_runes"`
	MaxAvatarRefBytes int `mapstructure:"max_avatar_ref_bytes" yaml:"max_avatar_ref_bytes"`
}

// DefaultLimits returns limits that fit a casual chat room.
func DefaultLimits() Limits {
	return Limits{
		MaxNameRunes:      64,
		MaxLabelRunes:     32,
		MaxTextRunes:      2000,
		MaxAvatarRefBytes: 512 << 10,
	}
}

func (l Limits) withDefaults() Limits {
	d := DefaultLimits()
	if l.MaxNameRunes <= 0 {
		l.MaxNameRunes = d.MaxNameRunes
	}
	if l.MaxLabelRunes <= 0 {
		l.MaxLabelRunes = d.MaxLabelRunes
	}
	if l.MaxTextRunes <= 0 {
		l.MaxTextRunes = d.MaxTextRunes
	}
	if l.MaxAvatarRefBytes <= 0 {
		l.MaxAvatarRefBytes = d.MaxAvatarRefBytes
	}
	return l
}

type profileInput struct {
	Name   string `validate:"required"`
	Gender string `validate:"required"`
	Region string `validate:"required"`
}

// profileValidator trims and validates join payloads.
type profileValidator struct {
	limits   Limits
	validate *validator.Validate
}

func newProfileValidator(limits Limits) *profileValidator {
	return &profileValidator{
		limits:   limits.withDefaults(),
		validate: validator.New(),
	}
}

// profile returns the trimmed profile, cut to the configured lengths.
func (v *profileValidator) profile(in presence.Profile) (presence.Profile, error) {
	out := presence.Profile{
		Name:      truncateRunes(strings.TrimSpace(in.Name), v.limits.MaxNameRunes),
		Gender:    truncateRunes(strings.TrimSpace(in.Gender), v.limits.MaxLabelRunes),
		Region:    truncateRunes(strings.TrimSpace(in.Region), v.limits.MaxLabelRunes),
		AvatarRef: strings.TrimSpace(in.AvatarRef),
	}

	err := v.validate.Struct(profileInput{Name: out.Name, Gender: out.Gender, Region: out.Region})
	if err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return presence.Profile{}, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		missing := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			missing = append(missing, strings.ToLower(fe.Field()))
		}
		return presence.Profile{}, fmt.Errorf("%w: missing %s", ErrValidation, strings.Join(missing, ", "))
	}

	if len(out.AvatarRef) > v.limits.MaxAvatarRefBytes {
		return presence.Profile{}, fmt.Errorf("%w: avatar_ref exceeds %d bytes", ErrValidation, v.limits.MaxAvatarRefBytes)
	}
	return out, nil
}

// text validates a chat message body. The body itself is kept as sent.
func (v *profileValidator) text(text string) error {
	trimmed := strings.TrimSpace(text)
	if err := v.validate.Var(trimmed, "required"); err != nil {
		return fmt.Errorf("%w: text is empty", ErrValidation)
	}
	if err := v.validate.Var(text, fmt.Sprintf("max=%d", v.limits.MaxTextRunes)); err != nil {
		return fmt.Errorf("%w: text exceeds %d characters", ErrValidation, v.limits.MaxTextRunes)
	}
	return nil
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	count := 0
	for i := range s {
		if count == limit {
			return s[:i]
		}
		count++
	}
	return s
}
