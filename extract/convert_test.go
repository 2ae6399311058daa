package extract_test

import (
	"errors"
	"testing"

	"github.com/CodeBeast357/downdrag"
	"github.com/CodeBeast357/downdrag/extract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// program compiles a minimal configuration carrying details.
func program(t *testing.T, details ...downdrag.Detail) *extract.Program {
	t.Helper()
	cfg := baseConfig()
	cfg.Details = details
	prog, err := newCompiler().Compile(cfg, wednesday)
	require.NoError(t, err)
	return prog
}

func baseConfig() *downdrag.Config {
	return &downdrag.Config{
		Profiles: []downdrag.Profile{{
			Source:     "bars",
			URL:        "https://example.com/bars",
			Items:      "//li",
			Name:       "//h1",
			Features:   "//p[@class='feature']",
			Evaluator:  `(.+)`,
			Pathfinder: downdrag.Pathfinder{Target: downdrag.TargetIndex, Value: "./span"},
		}},
		Outputs: []downdrag.Output{{Kind: downdrag.OutputCSV, Filename: "out.csv"}},
	}
}

func value(name string, typ downdrag.DetailType, pattern string) downdrag.Detail {
	return downdrag.Detail{
		Name:       name,
		Type:       typ,
		Conversion: downdrag.Conversion{Process: downdrag.ProcessValue, Pattern: pattern},
	}
}

// failingPattern fails every search.
type failingPattern struct{}

func (failingPattern) Search(string) ([]string, bool, error) {
	return nil, false, errors.New("match timeout")
}
func (failingPattern) Groups() int    { return 1 }
func (failingPattern) String() string { return "(.+)" }

func TestConverter_Convert(t *testing.T) {
	t.Parallel()

	convert := func(t *testing.T, d downdrag.Detail, rec *downdrag.Record) downdrag.Outcome {
		t.Helper()
		prog := program(t, d)
		out, err := (&extract.Converter{}).Convert(prog.Details[0], rec, nil)
		require.NoError(t, err)
		return out
	}

	t.Run("value converts the first group", func(t *testing.T) {
		t.Parallel()

		out := convert(t, value("rooms", downdrag.TypeInt, `(\d+) items`), &downdrag.Record{Description: "42 items"})

		assert.Equal(t, downdrag.Single(downdrag.IntValue(42)), out)
	})

	t.Run("value reads the configured source", func(t *testing.T) {
		t.Parallel()

		d := value("zone", downdrag.TypeString, `/(\w+)/`)
		d.Source = downdrag.FieldLink

		out := convert(t, d, &downdrag.Record{Description: "/nope/", Link: "https://example.com/downtown/x"})

		assert.Equal(t, downdrag.StringValue("downtown"), out.Value)
	})

	t.Run("no match yields the default", func(t *testing.T) {
		t.Parallel()

		d := value("rooms", downdrag.TypeInt, `(\d+) items`)
		d.Default = downdrag.Literal{Value: "7", Set: true}

		out := convert(t, d, &downdrag.Record{Description: "none"})

		assert.Equal(t, downdrag.IntValue(7), out.Value)
	})

	t.Run("no match without default yields the type zero", func(t *testing.T) {
		t.Parallel()

		out := convert(t, value("price", downdrag.TypeFloat, `\$(\d+)`), &downdrag.Record{Description: "free"})

		assert.Equal(t, downdrag.FloatValue(0), out.Value)
	})

	t.Run("conversion failure yields the type zero", func(t *testing.T) {
		t.Parallel()

		d := value("rooms", downdrag.TypeInt, `(\w+) items`)
		d.Default = downdrag.Literal{Value: "7", Set: true}

		out := convert(t, d, &downdrag.Record{Description: "many items"})

		assert.Equal(t, downdrag.IntValue(0), out.Value)
	})

	t.Run("calculate fills slots in order", func(t *testing.T) {
		t.Parallel()

		d := downdrag.Detail{
			Name: "sum",
			Type: downdrag.TypeInt,
			Conversion: downdrag.Conversion{
				Process: downdrag.ProcessCalculate,
				Pattern: `(\d+)\D+(\d+)`,
				Formula: "%s+%s",
			},
		}

		out := convert(t, d, &downdrag.Record{Description: "3 and 4"})

		assert.Equal(t, downdrag.IntValue(7), out.Value)
	})

	t.Run("calculate into float", func(t *testing.T) {
		t.Parallel()

		d := downdrag.Detail{
			Name: "ratio",
			Type: downdrag.TypeFloat,
			Conversion: downdrag.Conversion{
				Process: downdrag.ProcessCalculate,
				Pattern: `(\d+)/(\d+)`,
				Formula: "(%s)/(%s)",
			},
		}

		out := convert(t, d, &downdrag.Record{Description: "1/4 off"})

		assert.Equal(t, downdrag.FloatValue(0.25), out.Value)
	})

	t.Run("calculate division by zero yields the type zero", func(t *testing.T) {
		t.Parallel()

		d := downdrag.Detail{
			Name: "ratio",
			Type: downdrag.TypeFloat,
			Conversion: downdrag.Conversion{
				Process: downdrag.ProcessCalculate,
				Pattern: `(\d+)/(\d+)`,
				Formula: "%s/%s",
			},
			Default: downdrag.Literal{Value: "1.5", Set: true},
		}

		out := convert(t, d, &downdrag.Record{Description: "3/0"})

		assert.Equal(t, downdrag.FloatValue(0), out.Value)
	})

	t.Run("calculate without match yields the default", func(t *testing.T) {
		t.Parallel()

		d := downdrag.Detail{
			Name: "sum",
			Type: downdrag.TypeInt,
			Conversion: downdrag.Conversion{
				Process: downdrag.ProcessCalculate,
				Pattern: `(\d+)\+(\d+)`,
				Formula: "%s+%s",
			},
			Default: downdrag.Literal{Value: "-1", Set: true},
		}

		out := convert(t, d, &downdrag.Record{Description: "nothing"})

		assert.Equal(t, downdrag.IntValue(-1), out.Value)
	})

	t.Run("schedule yields a start and end pair", func(t *testing.T) {
		t.Parallel()

		d := downdrag.Detail{
			Name:       "hours",
			Conversion: downdrag.Conversion{Process: downdrag.ProcessSchedule, Pattern: `(\d+PM)-(\d+PM)`},
		}

		out := convert(t, d, &downdrag.Record{Extrainfo: "5PM-8PM", Description: "5PM-8PM"})

		assert.Equal(t, downdrag.Span(downdrag.StringValue("17:00"), downdrag.StringValue("20:00")), out)
	})

	t.Run("schedule case selects the line for now", func(t *testing.T) {
		t.Parallel()

		d := downdrag.Detail{
			Name: "hours",
			Conversion: downdrag.Conversion{
				Process: downdrag.ProcessSchedule,
				Pattern: `%s\s+(\d+PM)-(\d+PM)`,
				Case:    "%A",
			},
		}

		out := convert(t, d, &downdrag.Record{Description: "Tuesday 5PM-9PM\nWednesday 6PM-11PM"})

		assert.Equal(t, downdrag.Span(downdrag.StringValue("18:00"), downdrag.StringValue("23:00")), out)
	})

	t.Run("schedule without match yields two zeros", func(t *testing.T) {
		t.Parallel()

		d := downdrag.Detail{
			Name:       "hours",
			Conversion: downdrag.Conversion{Process: downdrag.ProcessSchedule, Pattern: `(\d+PM)-(\d+PM)`},
		}

		out := convert(t, d, &downdrag.Record{Description: "closed"})

		assert.Equal(t, downdrag.Span(downdrag.StringValue(""), downdrag.StringValue("")), out)
	})

	t.Run("search failure leaves empty slots", func(t *testing.T) {
		t.Parallel()

		d := &extract.Detail{Name: "rooms", Type: downdrag.TypeInt, Process: downdrag.ProcessValue, Pattern: failingPattern{}}

		out, err := (&extract.Converter{}).Convert(d, &downdrag.Record{}, nil)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "rooms")
		assert.True(t, out.Value.IsEmpty())
	})

	t.Run("unknown process is invalid", func(t *testing.T) {
		t.Parallel()

		d := &extract.Detail{Name: "x", Process: "magic"}

		out, err := (&extract.Converter{}).Convert(d, &downdrag.Record{}, nil)

		assert.True(t, downdrag.IsConfigError(err))
		assert.True(t, out.Value.IsEmpty())
	})
}

func TestPipeline_Details(t *testing.T) {
	t.Parallel()

	t.Run("layers combine earlier details", func(t *testing.T) {
		t.Parallel()

		prog := program(t,
			value("price", downdrag.TypeFloat, `\$(\d+\.\d+)`),
			value("qty", downdrag.TypeInt, `(\d+) pcs`),
			downdrag.Detail{
				Name:       "total",
				Type:       downdrag.TypeFloat,
				Conversion: downdrag.Conversion{Process: downdrag.ProcessLayer, Formula: "price*qty"},
			},
		)
		rec := &downdrag.Record{Description: "$2.50, 4 pcs"}

		(&extract.Pipeline{Program: prog}).Details(rec)

		require.Len(t, rec.Details, 3)
		assert.Equal(t, downdrag.FloatValue(2.5), rec.Details[0].Value)
		assert.Equal(t, downdrag.IntValue(4), rec.Details[1].Value)
		assert.Equal(t, downdrag.FloatValue(10), rec.Details[2].Value)
	})

	t.Run("longest name wins", func(t *testing.T) {
		t.Parallel()

		prog := program(t,
			value("rate", downdrag.TypeInt, `r=(\d+)`),
			value("rate2", downdrag.TypeInt, `r2=(\d+)`),
			downdrag.Detail{
				Name:       "spread",
				Type:       downdrag.TypeInt,
				Conversion: downdrag.Conversion{Process: downdrag.ProcessLayer, Formula: "rate2-rate"},
			},
		)
		rec := &downdrag.Record{Description: "r=1 r2=5"}

		(&extract.Pipeline{Program: prog}).Details(rec)

		assert.Equal(t, downdrag.IntValue(4), rec.Details[2].Value)
	})

	t.Run("reference to a later detail yields the type zero", func(t *testing.T) {
		t.Parallel()

		prog := program(t,
			downdrag.Detail{
				Name:       "double",
				Type:       downdrag.TypeInt,
				Conversion: downdrag.Conversion{Process: downdrag.ProcessLayer, Formula: "qty*2"},
			},
			value("qty", downdrag.TypeInt, `(\d+) pcs`),
		)
		rec := &downdrag.Record{Description: "4 pcs"}

		(&extract.Pipeline{Program: prog}).Details(rec)

		assert.Equal(t, downdrag.IntValue(0), rec.Details[0].Value)
		assert.Equal(t, downdrag.IntValue(4), rec.Details[1].Value)
	})

	t.Run("recomputing replaces earlier outcomes", func(t *testing.T) {
		t.Parallel()

		prog := program(t, value("qty", downdrag.TypeInt, `(\d+) pcs`))
		rec := &downdrag.Record{Description: "4 pcs"}
		p := &extract.Pipeline{Program: prog}

		p.Details(rec)
		p.Details(rec)

		assert.Equal(t, []downdrag.Outcome{downdrag.Single(downdrag.IntValue(4))}, rec.Details)
	})
}
