package downdrag

import "fmt"

// Main field names, in emission order. The first is written by
// Sink.BeginRecord.
const (
	HeaderItemIndex   = "itemindex"
	HeaderSource      = "source"
	HeaderIndex       = "index"
	HeaderName        = "name"
	HeaderDescription = "description"
	HeaderExtrainfo   = "extrainfo"
	HeaderLink        = "link"
)

// Field is one declared column of the output.
type Field struct {
	Name string
	Kind Kind
}

// MainFields returns the fixed leading fields of every record.
func MainFields() []Field {
	return []Field{
		{Name: HeaderItemIndex, Kind: KindInt},
		{Name: HeaderSource, Kind: KindString},
		{Name: HeaderIndex, Kind: KindInt},
		{Name: HeaderName, Kind: KindString},
		{Name: HeaderDescription, Kind: KindString},
		{Name: HeaderExtrainfo, Kind: KindString},
		{Name: HeaderLink, Kind: KindString},
	}
}

// Fields returns the ordered field list for the configured details: the main
// fields followed by one field per detail, schedule details expanded to
// "<name> start" and "<name> end".
func Fields(details []Detail) []Field {
	fields := MainFields()
	for i := range details {
		d := &details[i]
		kind := d.Type.Kind()
		if d.Pair() {
			fields = append(fields,
				Field{Name: fmt.Sprintf("%s start", d.Name), Kind: kind},
				Field{Name: fmt.Sprintf("%s end", d.Name), Kind: kind},
			)
			continue
		}
		fields = append(fields, Field{Name: d.Name, Kind: kind})
	}
	return fields
}

// FieldNames returns the names of fields in order.
func FieldNames(fields []Field) []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names
}

// Outcome is the result of one detail conversion: a single value, or a
// start/end pair for schedule details.
type Outcome struct {
	Value Value
	End   Value
	Pair  bool
}

// Single returns a one-slot outcome.
func Single(v Value) Outcome { return Outcome{Value: v} }

// Span returns a two-slot outcome.
func Span(start, end Value) Outcome { return Outcome{Value: start, End: end, Pair: true} }

// Values returns the slot values of the outcome in order.
func (o Outcome) Values() []Value {
	if o.Pair {
		return []Value{o.Value, o.End}
	}
	return []Value{o.Value}
}

// Record is the output of processing one listing item.
type Record struct {
	Source      string
	Index       int
	Name        string
	Description string
	Extrainfo   string
	Link        string

	// Details holds one outcome per configured detail, in configured order.
	Details []Outcome
}

// Text returns the named text field. The empty name means description.
func (r *Record) Text(f TextField) string {
	switch f {
	case FieldSource:
		return r.Source
	case FieldName:
		return r.Name
	case FieldExtrainfo:
		return r.Extrainfo
	case FieldLink:
		return r.Link
	default:
		return r.Description
	}
}

// Values returns the record's values in field order, without the leading
// item index.
func (r *Record) Values() []Value {
	values := []Value{
		StringValue(r.Source),
		IntValue(int64(r.Index)),
		StringValue(r.Name),
		StringValue(r.Description),
		StringValue(r.Extrainfo),
		StringValue(r.Link),
	}
	for _, o := range r.Details {
		values = append(values, o.Values()...)
	}
	return values
}
