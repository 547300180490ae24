package order

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var seqPlaceholder = regexp.MustCompile(`\{seq(?::0(\d+)d)?\}`)

// NumberFormat renders order numbers from a template such as
// "ORD-{YYYY}-{seq:04d}". Supported tokens: {YYYY}, {YY}, {MM}, {seq} and
// {seq:0Nd}.
type NumberFormat struct {
	template string
}

// NewNumberFormat validates the template
func NewNumberFormat(template string) (NumberFormat, error) {
	if !seqPlaceholder.MatchString(template) {
		return NumberFormat{}, fmt.Errorf("order number template %q has no {seq} placeholder", template)
	}
	return NumberFormat{template: template}, nil
}

// Scope is the sequence bucket a date falls in. Templates that show the
// month restart numbering every month, those that show the year every year.
func (f NumberFormat) Scope(at time.Time) string {
	switch {
	case strings.Contains(f.template, "{MM}"):
		return fmt.Sprintf("%04d%02d", at.Year(), int(at.Month()))
	case strings.Contains(f.template, "{YYYY}"), strings.Contains(f.template, "{YY}"):
		return fmt.Sprintf("%04d", at.Year())
	default:
		return "all"
	}
}

// Format renders the number for the sequence value
func (f NumberFormat) Format(at time.Time, seq int64) string {
	out := strings.NewReplacer(
		"{YYYY}", fmt.Sprintf("%04d", at.Year()),
		"{YY}", fmt.Sprintf("%02d", at.Year()%100),
		"{MM}", fmt.Sprintf("%02d", int(at.Month())),
	).Replace(f.template)

	return seqPlaceholder.ReplaceAllStringFunc(out, func(m string) string {
		groups := seqPlaceholder.FindStringSubmatch(m)
		if groups[1] == "" {
			return strconv.FormatInt(seq, 10)
		}
		width, _ := strconv.Atoi(groups[1])
		return fmt.Sprintf("%0*d", width, seq)
	})
}
