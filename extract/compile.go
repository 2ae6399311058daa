package extract

import (
	"fmt"
	"strings"
	"time"

	"github.com/CodeBeast357/downdrag"
)

// Compiler turns a configuration into a Program for one run.
type Compiler struct {
	Patterns downdrag.PatternCompiler
	Times    downdrag.TimeFormatter
}

// Program is a configuration compiled against a fixed "now". It is read-only
// once built.
type Program struct {
	Now      time.Time
	Rules    downdrag.TimeRules
	Syntax   downdrag.Syntax
	Profiles []*Profile
	Details  []*Detail
	Fields   []downdrag.Field
}

// Profile is a compiled source profile.
type Profile struct {
	Config     *downdrag.Profile
	LinkQuery  string
	Evaluator  downdrag.Pattern
	Pathfinder *Pathfinder
}

// Source returns the profile's source id.
func (p *Profile) Source() string { return p.Config.Source }

// Pathfinder is a compiled pathfinder.
type Pathfinder struct {
	Target downdrag.Target
	Type   downdrag.FinderType
	Format downdrag.Format
	Value  string
	Link   string

	// Marker and MarkerConcat are the space-joined and concatenated forms of
	// the uppercased "now" marker tokens.
	Marker       string
	MarkerConcat string

	// Header matches list headers.
	Header downdrag.Pattern

	// Indexer is the stop predicate for the external target.
	Indexer downdrag.IndexerFunc
}

// Detail is a compiled detail.
type Detail struct {
	Name    string
	Type    downdrag.DetailType
	Source  downdrag.TextField
	Process downdrag.Process

	// Fallback is the converted default literal, or the type zero.
	Fallback downdrag.Value

	Pattern downdrag.Pattern
	Formula *downdrag.Formula
}

// Pair reports whether the detail occupies two record slots.
func (d *Detail) Pair() bool { return d.Process == downdrag.ProcessSchedule }

// Compile validates cfg and compiles every pattern, template and formula it
// holds against now. All errors are configuration errors (EINVALID).
func (c *Compiler) Compile(cfg *downdrag.Config, now time.Time) (*Program, error) {
	syntax := cfg.Querier.Syntax
	if syntax == "" {
		syntax = downdrag.SyntaxXPath
	}
	prog := &Program{
		Now:    now,
		Rules:  cfg.TimeRules,
		Syntax: syntax,
		Fields: downdrag.Fields(cfg.Details),
	}

	for i := range cfg.Profiles {
		p, err := c.compileProfile(&cfg.Profiles[i], syntax, now)
		if err != nil {
			return nil, err
		}
		prog.Profiles = append(prog.Profiles, p)
	}

	names := make([]string, len(cfg.Details))
	for i := range cfg.Details {
		names[i] = cfg.Details[i].Name
	}
	seen := make(map[string]bool, len(names))
	for i := range cfg.Details {
		d := &cfg.Details[i]
		if seen[d.Name] {
			return nil, downdrag.Errorf(downdrag.EINVALID, "detail %q declared twice", d.Name)
		}
		seen[d.Name] = true
		cd, err := c.compileDetail(d, names, now)
		if err != nil {
			return nil, err
		}
		prog.Details = append(prog.Details, cd)
	}
	return prog, nil
}

func (c *Compiler) compileProfile(p *downdrag.Profile, syntax downdrag.Syntax, now time.Time) (*Profile, error) {
	evaluator, err := c.pattern(p.Evaluator, 1, "profile %q evaluator", p.Source)
	if err != nil {
		return nil, err
	}
	link := p.Infos
	if link == "" {
		link = syntax.DefaultLinkQuery()
	}
	pf, err := c.compilePathfinder(&p.Pathfinder, now)
	if err != nil {
		return nil, fmt.Errorf("profile %q pathfinder: %w", p.Source, err)
	}
	return &Profile{Config: p, LinkQuery: link, Evaluator: evaluator, Pathfinder: pf}, nil
}

func (c *Compiler) compilePathfinder(p *downdrag.Pathfinder, now time.Time) (*Pathfinder, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	pf := &Pathfinder{
		Target: p.Target,
		Type:   p.Type,
		Format: p.Format,
		Value:  p.Value,
		Link:   p.Link,
	}
	if p.Target == downdrag.TargetIndex {
		return pf, nil
	}
	if p.Type == downdrag.TypeShowcase {
		if n := downdrag.Slots(p.Value); n != 1 {
			return nil, downdrag.Errorf(downdrag.EINVALID, "showcase value %q needs one name slot, has %d", p.Value, n)
		}
		return pf, nil
	}

	if p.Indexer != "" {
		fn, err := p.Indexer.Predicate()
		if err != nil {
			return nil, err
		}
		pf.Indexer = fn
	}

	switch p.Format {
	case downdrag.FormatNow:
		marker, err := c.format(p.Pattern, now)
		if err != nil {
			return nil, err
		}
		tokens := strings.Fields(strings.ToUpper(marker))
		pf.Marker = strings.Join(tokens, " ")
		pf.MarkerConcat = strings.Join(tokens, "")
	case downdrag.FormatList:
		header, err := c.pattern(p.Pattern, 0, "list header")
		if err != nil {
			return nil, err
		}
		pf.Header = header
	}
	return pf, nil
}

func (c *Compiler) compileDetail(d *downdrag.Detail, names []string, now time.Time) (*Detail, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	typ := d.Type
	if typ == "" {
		typ = downdrag.TypeString
	}
	cd := &Detail{
		Name:     d.Name,
		Type:     typ,
		Source:   d.Source,
		Process:  d.Conversion.Process,
		Fallback: typ.Zero(),
	}
	if cd.Source == "" {
		cd.Source = downdrag.FieldDescription
	}
	if d.Default.Set {
		v, err := typ.Convert(d.Default.Value)
		if err != nil {
			return nil, downdrag.Errorf(downdrag.EINVALID, "detail %q default %q is not a valid %s", d.Name, d.Default.Value, typ)
		}
		cd.Fallback = v
	}

	conv := &d.Conversion
	var err error
	switch conv.Process {
	case downdrag.ProcessValue:
		cd.Pattern, err = c.pattern(conv.Pattern, 1, "detail %q pattern", d.Name)
	case downdrag.ProcessCalculate:
		if cd.Pattern, err = c.pattern(conv.Pattern, 0, "detail %q pattern", d.Name); err != nil {
			return nil, err
		}
		if cd.Formula, err = downdrag.CompileFormula(conv.Formula, downdrag.Positional, nil); err != nil {
			return nil, err
		}
		if cd.Formula.Slots() != cd.Pattern.Groups() {
			return nil, downdrag.Errorf(downdrag.EINVALID, "detail %q formula has %d slots for %d pattern groups",
				d.Name, cd.Formula.Slots(), cd.Pattern.Groups())
		}
	case downdrag.ProcessLayer:
		cd.Formula, err = downdrag.CompileFormula(conv.Formula, downdrag.Named, names)
	case downdrag.ProcessSchedule:
		pattern := conv.Pattern
		if conv.Case != "" {
			stamp, ferr := c.format(conv.Case, now)
			if ferr != nil {
				return nil, ferr
			}
			if c.Patterns == nil {
				return nil, downdrag.Errorf(downdrag.EINTERNAL, "no pattern compiler")
			}
			if pattern, err = downdrag.Substitute(pattern, c.Patterns.Quote(stamp)); err != nil {
				return nil, err
			}
		}
		cd.Pattern, err = c.pattern(pattern, 2, "detail %q pattern", d.Name)
	}
	if err != nil {
		return nil, err
	}
	return cd, nil
}

// pattern compiles expr and checks that it has at least groups capture groups.
func (c *Compiler) pattern(expr string, groups int, what string, args ...any) (downdrag.Pattern, error) {
	label := fmt.Sprintf(what, args...)
	if c.Patterns == nil {
		return nil, downdrag.Errorf(downdrag.EINTERNAL, "%s: no pattern compiler", label)
	}
	p, err := c.Patterns.Compile(expr)
	if err != nil {
		return nil, downdrag.Errorf(downdrag.EINVALID, "%s %q: %v", label, expr, err)
	}
	if p.Groups() < groups {
		return nil, downdrag.Errorf(downdrag.EINVALID, "%s %q needs %d capture groups, has %d", label, expr, groups, p.Groups())
	}
	return p, nil
}

func (c *Compiler) format(pattern string, now time.Time) (string, error) {
	if c.Times == nil {
		return "", downdrag.Errorf(downdrag.EINTERNAL, "no time formatter")
	}
	s, err := c.Times.Format(pattern, now)
	if err != nil {
		return "", downdrag.Errorf(downdrag.EINVALID, "time pattern %q: %v", pattern, err)
	}
	return s, nil
}
