package downdrag

import (
	"fmt"
	"strings"
	"time"
)

// Config is the complete run configuration. It is decoded once (see the
// yaml package) and never mutated while a run is in progress.
type Config struct {
	Querier   Querier   `yaml:"querier"`
	Profiles  []Profile `yaml:"-" validate:"required,dive"`
	Details   []Detail  `yaml:"-" validate:"dive"`
	Outputs   []Output  `yaml:"-" validate:"required,dive"`
	TimeRules TimeRules `yaml:"timerules"`
}

// QuerierMode selects how documents are retrieved.
type QuerierMode string

// Querier modes.
const (
	ModePlain   QuerierMode = "plain"
	ModeSecure  QuerierMode = "secure"
	ModeDynamic QuerierMode = "dynamic"
)

// Syntax selects the query language used against parsed documents.
type Syntax string

// Query syntaxes.
const (
	SyntaxXPath Syntax = "xpath"
	SyntaxCSS   Syntax = "css"
	SyntaxXML   Syntax = "xml"
)

// DefaultLinkQuery returns the query used to find an item's link when the
// profile does not set one.
func (s Syntax) DefaultLinkQuery() string {
	switch s {
	case SyntaxCSS:
		return "a"
	case SyntaxXML:
		return "link"
	default:
		return "descendant::a"
	}
}

// Querier configures document retrieval.
type Querier struct {
	Mode      QuerierMode   `yaml:"mode" validate:"omitempty,oneof=plain secure dynamic"`
	Syntax    Syntax        `yaml:"syntax" validate:"omitempty,oneof=xpath css xml"`
	Cached    bool          `yaml:"cached"`
	CacheSize int           `yaml:"cache_size" validate:"gte=0"`
	Driver    string        `yaml:"driver"`
	Argsline  string        `yaml:"argsline"`
	Proxy     string        `yaml:"proxy"`
	Timeout   time.Duration `yaml:"timeout" validate:"gte=0"`
	Retries   int           `yaml:"retries" validate:"gte=0,lte=10"`
	Rate      float64       `yaml:"rate" validate:"gte=0"`
}

// Profile describes one source: where its listing lives and how to turn
// each listing entry into a record.
type Profile struct {
	Source        string     `yaml:"-" validate:"required"`
	URL           string     `yaml:"url" validate:"required,url"`
	Pagers        Pagers     `yaml:"pagers"`
	Items         string     `yaml:"items" validate:"required"`
	Infos         string     `yaml:"infos"`
	ListingSyntax Syntax     `yaml:"listing_syntax" validate:"omitempty,oneof=xpath css xml"`
	Name          string     `yaml:"name" validate:"required"`
	Features      string     `yaml:"features" validate:"required"`
	Evaluator     string     `yaml:"evaluator" validate:"required"`
	Pathfinder    Pathfinder `yaml:"pathfinder"`
}

// Pagers describes pagination. Either Query names the element whose href
// leads to the next listing page, or Action/Value describe an element to act
// on in a live browser until it disappears.
type Pagers struct {
	Query  string `yaml:"-"`
	Action string `yaml:"action" validate:"omitempty,oneof=click"`
	Value  string `yaml:"value" validate:"required_with=Action"`
}

// Dynamic reports whether the pagers need a live browser.
func (p Pagers) Dynamic() bool { return p.Action != "" }

// UnmarshalYAML accepts either a scalar query or an {action, value} mapping.
func (p *Pagers) UnmarshalYAML(unmarshal func(any) error) error {
	var query string
	if err := unmarshal(&query); err == nil {
		*p = Pagers{Query: query}
		return nil
	}
	var action struct {
		Action string `yaml:"action"`
		Value  string `yaml:"value"`
	}
	if err := unmarshal(&action); err != nil {
		return err
	}
	*p = Pagers{Action: action.Action, Value: action.Value}
	return nil
}

// Target selects which document the pathfinder inspects.
type Target string

// Pathfinder targets.
const (
	TargetCurrent  Target = "current"
	TargetExternal Target = "external"
	TargetIndex    Target = "index"
)

// FinderType selects the pathfinder lookup strategy.
type FinderType string

// Pathfinder types.
const (
	TypeFulltext FinderType = "fulltext"
	TypeShowcase FinderType = "showcase"
)

// Format selects the fulltext scan.
type Format string

// Fulltext formats.
const (
	FormatNow  Format = "now"
	FormatList Format = "list"
)

// Pathfinder configures how the extrainfo field is located.
type Pathfinder struct {
	Target  Target     `yaml:"target" validate:"required,oneof=current external index"`
	Type    FinderType `yaml:"type" validate:"omitempty,oneof=fulltext showcase"`
	Format  Format     `yaml:"format" validate:"omitempty,oneof=now list"`
	Pattern string     `yaml:"pattern"`
	Indexer Indexer    `yaml:"indexer"`
	Value   string     `yaml:"value" validate:"required"`
	Link    string     `yaml:"link" validate:"required_if=Target external"`
}

// Validate checks the cross-field rules the struct tags cannot express.
func (p *Pathfinder) Validate() error {
	switch p.Target {
	case TargetIndex:
		return nil
	case TargetCurrent, TargetExternal:
	default:
		return Errorf(EINVALID, "unknown pathfinder target %q", string(p.Target))
	}

	switch p.Type {
	case TypeShowcase:
		return nil
	case TypeFulltext:
	default:
		return Errorf(EINVALID, "unknown pathfinder type %q", string(p.Type))
	}

	switch p.Format {
	case FormatNow, FormatList:
	default:
		return Errorf(EINVALID, "unknown pathfinder format %q", string(p.Format))
	}
	if p.Pattern == "" {
		return Errorf(EINVALID, "pathfinder pattern required for fulltext")
	}
	if p.Target == TargetExternal && p.Indexer == "" {
		return Errorf(EINVALID, "pathfinder indexer required for external fulltext")
	}
	if p.Indexer != "" {
		if _, err := p.Indexer.Predicate(); err != nil {
			return err
		}
	}
	return nil
}

// Indexer names the string predicate an external fulltext line must satisfy
// against the resolved item name.
type Indexer string

// Indexer names.
const (
	IndexerPrefix   Indexer = "prefix"
	IndexerContains Indexer = "contains"
	IndexerSuffix   Indexer = "suffix"
	IndexerEquals   Indexer = "equals"
)

// IndexerFunc reports whether line satisfies the predicate for name.
type IndexerFunc func(line, name string) bool

var indexers = map[Indexer]IndexerFunc{
	IndexerPrefix:   strings.HasPrefix,
	IndexerContains: strings.Contains,
	IndexerSuffix:   strings.HasSuffix,
	IndexerEquals:   func(line, name string) bool { return line == name },

	"startswith":   strings.HasPrefix,
	"endswith":     strings.HasSuffix,
	"__contains__": strings.Contains,
	"__eq__":       func(line, name string) bool { return line == name },
}

// Predicate returns the predicate for the indexer name, or EINVALID.
func (i Indexer) Predicate() (IndexerFunc, error) {
	fn, ok := indexers[i]
	if !ok {
		return nil, Errorf(EINVALID, "unknown indexer %q", string(i))
	}
	return fn, nil
}

// TextField names a text field of a Record that can feed a detail.
type TextField string

// Record text fields.
const (
	FieldSource      TextField = "source"
	FieldName        TextField = "name"
	FieldDescription TextField = "description"
	FieldExtrainfo   TextField = "extrainfo"
	FieldLink        TextField = "link"
)

// Validate returns EINVALID for names that are not record text fields.
func (f TextField) Validate() error {
	switch f {
	case "", FieldSource, FieldName, FieldDescription, FieldExtrainfo, FieldLink:
		return nil
	}
	return Errorf(EINVALID, "unknown detail source %q", string(f))
}

// Process selects how a detail is computed.
type Process string

// Conversion processes.
const (
	ProcessValue     Process = "value"
	ProcessCalculate Process = "calculate"
	ProcessLayer     Process = "layer"
	ProcessSchedule  Process = "schedule"
)

// Detail configures one derived field.
type Detail struct {
	Name       string     `yaml:"-" validate:"required"`
	Type       DetailType `yaml:"type" validate:"omitempty,oneof=string int float"`
	Source     TextField  `yaml:"source" validate:"omitempty,oneof=source name description extrainfo link"`
	Default    Literal    `yaml:"default"`
	Conversion Conversion `yaml:"conversion"`
}

// Conversion configures the computation of a detail.
type Conversion struct {
	Process Process `yaml:"process" validate:"required,oneof=value calculate layer schedule"`
	Pattern string  `yaml:"pattern" validate:"required_unless=Process layer"`
	Formula string  `yaml:"formula" validate:"required_if=Process calculate,required_if=Process layer"`
	Case    string  `yaml:"case"`
}

// Pair reports whether the detail occupies two record slots.
func (d *Detail) Pair() bool { return d.Conversion.Process == ProcessSchedule }

// Validate checks the enum fields of the detail.
func (d *Detail) Validate() error {
	if err := d.Type.Validate(); err != nil {
		return err
	}
	if err := d.Source.Validate(); err != nil {
		return err
	}
	switch d.Conversion.Process {
	case ProcessValue, ProcessCalculate, ProcessLayer, ProcessSchedule:
	default:
		return Errorf(EINVALID, "unknown conversion process %q", string(d.Conversion.Process))
	}
	if d.Default.Set {
		if _, err := d.Type.Convert(d.Default.Value); err != nil {
			return Errorf(EINVALID, "detail %q default %q is not a valid %s", d.Name, d.Default.Value, d.Type.Kind())
		}
	}
	return nil
}

// Literal is an optional configuration scalar kept in its textual form.
type Literal struct {
	Value string
	Set   bool
}

// UnmarshalYAML accepts any scalar.
func (l *Literal) UnmarshalYAML(unmarshal func(any) error) error {
	var v any
	if err := unmarshal(&v); err != nil {
		return err
	}
	if v == nil {
		return nil
	}
	*l = Literal{Value: fmt.Sprint(v), Set: true}
	return nil
}

// OutputKind names a result sink.
type OutputKind string

// Output kinds.
const (
	OutputCSV      OutputKind = "csv"
	OutputMySQL    OutputKind = "mysql"
	OutputSQLite   OutputKind = "sqlite"
	OutputHTML     OutputKind = "html"
	OutputMarkdown OutputKind = "markdown"
)

// Output configures one result sink. Which fields apply depends on Kind.
type Output struct {
	Kind       OutputKind      `yaml:"-" validate:"required,oneof=csv mysql sqlite html markdown"`
	Filename   string          `yaml:"filename" validate:"required_if=Kind csv,required_if=Kind html,required_if=Kind markdown"`
	Title      string          `yaml:"title"`
	Scripts    []string        `yaml:"scripts"`
	Styles     []string        `yaml:"styles"`
	Path       string          `yaml:"path" validate:"required_if=Kind sqlite"`
	Table      string          `yaml:"tablename" validate:"required_if=Kind mysql,required_if=Kind sqlite"`
	Create     bool            `yaml:"create"`
	Connection MySQLConnection `yaml:"connectioninfos"`
}

// MySQLConnection holds MySQL connection settings.
type MySQLConnection struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// Addr returns host:port, defaulting to localhost:3306.
func (c MySQLConnection) Addr() string {
	host, port := c.Host, c.Port
	if host == "" {
		host = "localhost"
	}
	if port == 0 {
		port = 3306
	}
	return fmt.Sprintf("%s:%d", host, port)
}
