package extract

import (
	"fmt"
	"log/slog"

	"github.com/CodeBeast357/downdrag"
)

// Converter computes detail values from a record's text fields.
type Converter struct {
	Rules  downdrag.TimeRules
	Logger *slog.Logger
}

// Convert computes d for rec. layered holds the values of the details that
// were already computed for the same record, keyed by detail name.
//
// Match and conversion failures degrade to the detail's default and are not
// errors. A non-nil error means the conversion could not run at all; the
// returned outcome then holds empty values in the detail's slots.
func (c *Converter) Convert(d *Detail, rec *downdrag.Record, layered map[string]downdrag.Value) (downdrag.Outcome, error) {
	text := rec.Text(d.Source)

	switch d.Process {
	case downdrag.ProcessLayer:
		n, err := d.Formula.EvalNamed(layered)
		if err != nil {
			c.degrade(d, err)
			return downdrag.Single(d.Type.Zero()), nil
		}
		return downdrag.Single(c.fromNumber(d, n)), nil

	case downdrag.ProcessSchedule:
		start, end, err := ExtractSchedule(d.Pattern, text, c.Rules)
		if err != nil {
			c.degrade(d, err)
			return downdrag.Span(d.Type.Zero(), d.Type.Zero()), nil
		}
		return downdrag.Span(c.convert(d, start), c.convert(d, end)), nil

	case downdrag.ProcessValue, downdrag.ProcessCalculate:
		groups, ok, err := d.Pattern.Search(text)
		if err != nil {
			return empty(d), fmt.Errorf("detail %q: %w", d.Name, err)
		}
		if !ok {
			return downdrag.Single(d.Fallback), nil
		}
		if d.Process == downdrag.ProcessValue {
			return downdrag.Single(c.convert(d, groups[0])), nil
		}
		args := make([]downdrag.Value, len(groups))
		for i, g := range groups {
			if g == "" {
				args[i] = d.Type.Zero()
				continue
			}
			args[i] = downdrag.StringValue(g)
		}
		n, err := d.Formula.Eval(args...)
		if err != nil {
			c.degrade(d, err)
			return downdrag.Single(d.Type.Zero()), nil
		}
		return downdrag.Single(c.fromNumber(d, n)), nil
	}
	return empty(d), downdrag.Errorf(downdrag.EINVALID, "unknown conversion process %q", string(d.Process))
}

// convert coerces text into the detail type. Empty text is the type zero.
func (c *Converter) convert(d *Detail, s string) downdrag.Value {
	if s == "" {
		return d.Type.Zero()
	}
	v, err := d.Type.Convert(s)
	if err != nil {
		c.degrade(d, err)
		return d.Type.Zero()
	}
	return v
}

func (c *Converter) fromNumber(d *Detail, n float64) downdrag.Value {
	v, err := d.Type.FromNumber(n)
	if err != nil {
		c.degrade(d, err)
		return d.Type.Zero()
	}
	return v
}

func (c *Converter) degrade(d *Detail, err error) {
	if c.Logger != nil {
		c.Logger.Debug("detail degraded", "detail", d.Name, "err", err)
	}
}

func empty(d *Detail) downdrag.Outcome {
	if d.Pair() {
		return downdrag.Span(downdrag.Value{}, downdrag.Value{})
	}
	return downdrag.Single(downdrag.Value{})
}
