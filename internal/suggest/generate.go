package suggest

import "strings"

// generate is a total dispatch over the clause kind. Every catalog-backed
// branch goes through filterWiden: prefix filtering that falls back to the
// unfiltered set instead of returning nothing, so over-filtering never
// produces an empty popup once suppression has let the request through.
func (p *Provider) generate(cl Clause, qc QueryContext) []string {
	switch cl.Kind {
	case KindSelectList:
		return filterWiden(p.availableColumns(qc.Tables), cl.Fragment)

	case KindWhereLike:
		if cl.Table != "" {
			return filterWiden(p.columns(cl.Table), cl.Fragment)
		}
		return filterWiden(p.availableColumns(qc.Tables), cl.Fragment)

	case KindFromClause, KindInsertTableTarget, KindUpdateTableTarget, KindDeleteTableTarget:
		return filterWiden(p.tables(), cl.Fragment)

	case KindInsertColumnList, KindUpdateSetList, KindQualifiedColumn:
		return filterWiden(p.columns(cl.Table), cl.Fragment)

	case KindBareIdentifier:
		return filterWiden(dedupe(Keywords), cl.Fragment)

	default:
		return dedupe(Keywords)
	}
}

// tables lists catalog tables, degrading to none on error.
func (p *Provider) tables() []string {
	tables, err := p.catalog.Tables()
	if err != nil {
		return nil
	}
	return tables
}

func (p *Provider) columns(table string) []string {
	if table == "" {
		return nil
	}
	return p.catalog.Columns(table)
}

// availableColumns returns the union of unqualified and table-qualified
// column names of every referenced table, deduplicated with first-seen
// order preserved.
func (p *Provider) availableColumns(tables []string) []string {
	var out []string
	for _, t := range tables {
		cols := p.columns(t)
		out = append(out, cols...)
		for _, c := range cols {
			out = append(out, t+"."+c)
		}
	}
	return dedupe(out)
}

// filterWiden keeps candidates with the given case-insensitive prefix; when
// nothing survives the filter, the full candidate set is returned instead.
func filterWiden(candidates []string, prefix string) []string {
	candidates = dedupe(candidates)
	if prefix == "" {
		return candidates
	}
	lower := strings.ToLower(prefix)
	var filtered []string
	for _, c := range candidates {
		if strings.HasPrefix(strings.ToLower(c), lower) {
			filtered = append(filtered, c)
		}
	}
	if len(filtered) == 0 {
		return candidates
	}
	return filtered
}

// dedupe removes exact duplicates, keeping the first occurrence. The input
// slice is never mutated.
func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
