package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/CodeBeast357/downdrag"
)

// Resolver resolves the extrainfo field of an item.
type Resolver struct {
	Documents *Documents
}

// Resolve returns the extrainfo of item. page is the item's detail page and
// name its resolved name. "No match" is the empty string with a nil error;
// errors mean the lookup itself failed.
func (r *Resolver) Resolve(ctx context.Context, pf *Pathfinder, item downdrag.SourceItem, page *downdrag.Page, name string) (string, error) {
	switch pf.Target {
	case downdrag.TargetIndex:
		nodes, err := item.Node.Query(pf.Value)
		if err != nil {
			return "", err
		}
		if len(nodes) == 0 {
			return "", downdrag.Errorf(downdrag.ENOTFOUND, "no result for index query %q", pf.Value)
		}
		return strings.TrimSpace(nodes[0].Text()), nil
	case downdrag.TargetCurrent:
	case downdrag.TargetExternal:
		link := pf.Link
		if item.Page != nil {
			link = item.Page.RebaseLink(link)
		}
		external, err := r.Documents.Get(ctx, link)
		if err != nil {
			return "", fmt.Errorf("external target: %w", err)
		}
		page = external
	default:
		return "", downdrag.Errorf(downdrag.EINVALID, "unknown pathfinder target %q", string(pf.Target))
	}

	switch pf.Type {
	case downdrag.TypeShowcase:
		return showcase(pf, page, name)
	case downdrag.TypeFulltext:
		nodes, err := page.Query(pf.Value)
		if err != nil {
			return "", err
		}
		lines := make([]string, len(nodes))
		for i, n := range nodes {
			lines[i] = strings.TrimSpace(n.Text())
		}
		stop := stopCondition(pf, name)
		switch pf.Format {
		case downdrag.FormatNow:
			return scanNow(pf, lines, stop), nil
		case downdrag.FormatList:
			return scanList(pf, lines, stop)
		}
		return "", downdrag.Errorf(downdrag.EINVALID, "unknown pathfinder format %q", string(pf.Format))
	}
	return "", downdrag.Errorf(downdrag.EINVALID, "unknown pathfinder type %q", string(pf.Type))
}

func showcase(pf *Pathfinder, page *downdrag.Page, name string) (string, error) {
	query, err := downdrag.Substitute(pf.Value, name)
	if err != nil {
		return "", err
	}
	nodes, err := page.Query(query)
	if err != nil {
		return "", err
	}
	if len(nodes) == 0 {
		return "", nil
	}
	return strings.TrimSpace(nodes[0].Text()), nil
}

// stopCondition returns the predicate a line must satisfy to be taken after a
// marker or header: the indexer against the uppercased name for the external
// target, non-empty otherwise.
func stopCondition(pf *Pathfinder, name string) func(string) bool {
	if pf.Target == downdrag.TargetExternal && pf.Indexer != nil {
		upper := strings.ToUpper(name)
		return func(line string) bool { return pf.Indexer(line, upper) }
	}
	return func(line string) bool { return line != "" }
}

// scanNow returns the first line satisfying stop after the line carrying the
// "now" marker.
func scanNow(pf *Pathfinder, lines []string, stop func(string) bool) string {
	found := false
	for _, line := range lines {
		if found {
			if stop(line) {
				return line
			}
			continue
		}
		upper := strings.ToUpper(line)
		if strings.Contains(upper, pf.Marker) || strings.Contains(upper, pf.MarkerConcat) {
			found = true
		}
	}
	return ""
}

// scanList pairs every header line with the next line satisfying stop and
// returns the pairs as "header: line" lines.
func scanList(pf *Pathfinder, lines []string, stop func(string) bool) (string, error) {
	var b strings.Builder
	var header string
	found := false
	for _, line := range lines {
		if found && stop(line) {
			fmt.Fprintf(&b, "%s: %s\n", header, line)
			found = false
		}
		_, ok, err := pf.Header.Search(line)
		if err != nil {
			return "", err
		}
		if ok {
			header = line
			found = true
		}
	}
	return b.String(), nil
}
