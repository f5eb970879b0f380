package tdb

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dimascad/ellingham/internal/gibbs"
)

// ParseFile parses a TDB file from disk.
func ParseFile(path string) (*Database, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open tdb: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Parse(f)
}

// Parse parses a TDB database from a reader.
func Parse(r io.Reader) (*Database, error) {
	statements, err := splitStatements(r)
	if err != nil {
		return nil, err
	}

	p := &parser{
		db: &Database{
			Phases:    make(map[string]*Phase),
			functions: make(map[string]*gibbs.Piecewise),
			params:    make(map[string][]*param),
		},
		rawFns: make(map[string][]rawRange),
	}

	// First pass: collect statements. Function bodies are kept raw because
	// they may reference functions defined later in the file.
	var rawParams []rawParam
	for _, st := range statements {
		keyword := strings.ToUpper(firstField(st.text))
		switch keyword {
		case "ELEMENT":
			p.parseElement(st)
		case "FUNCTION":
			p.parseFunction(st)
		case "PHASE":
			p.parsePhase(st)
		case "CONSTITUENT":
			p.parseConstituent(st)
		case "PARAMETER":
			if rp, ok := p.parseParameterRaw(st); ok {
				rawParams = append(rawParams, rp)
			}
		default:
			// TYPE_DEFINITION, SPECIES, references, assessed-systems notes.
		}
	}

	// Second pass: resolve function references.
	for name := range p.rawFns {
		if _, err := p.resolve(name); err != nil {
			p.warnf("function %s: %v", name, err)
		}
	}
	for _, rp := range rawParams {
		fn, err := p.buildPiecewise(rp.key, rp.ranges)
		if err != nil {
			p.warnf("parameter %s: %v", rp.key, err)
			continue
		}
		p.db.params[rp.phase] = append(p.db.params[rp.phase], &param{
			constituent: rp.constituent,
			order:       rp.order,
			fn:          fn,
		})
	}

	return p.db, nil
}

type statement struct {
	line int
	text string
}

// splitStatements reads the file into bang-terminated statements, dropping
// $-comment lines and collapsing continuation whitespace.
func splitStatements(r io.Reader) ([]statement, error) {
	var statements []statement
	var buf strings.Builder
	start := 0

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "$") {
			continue
		}
		if buf.Len() == 0 {
			start = lineNo
		}
		buf.WriteString(" ")
		buf.WriteString(trimmed)

		for {
			text := buf.String()
			bang := strings.Index(text, "!")
			if bang < 0 {
				break
			}
			stmt := strings.TrimSpace(text[:bang])
			if stmt != "" {
				statements = append(statements, statement{line: start, text: stmt})
			}
			buf.Reset()
			buf.WriteString(strings.TrimSpace(text[bang+1:]))
			start = lineNo
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read tdb: %w", err)
	}
	if rest := strings.TrimSpace(buf.String()); rest != "" {
		statements = append(statements, statement{line: start, text: rest})
	}
	return statements, nil
}

func firstField(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

type rawRange struct {
	lo, hi float64
	expr   string
}

type rawParam struct {
	key         string
	phase       string
	constituent string
	order       int
	ranges      []rawRange
}

type parser struct {
	db        *Database
	rawFns    map[string][]rawRange
	resolving map[string]bool
}

func (p *parser) warnf(format string, args ...any) {
	p.db.Warnings = append(p.db.Warnings, fmt.Sprintf(format, args...))
}

func (p *parser) parseElement(st statement) {
	fields := strings.Fields(st.text)
	if len(fields) < 6 {
		p.warnf("line %d: short ELEMENT statement", st.line)
		return
	}
	mass, err1 := strconv.ParseFloat(fields[3], 64)
	h298, err2 := strconv.ParseFloat(fields[4], 64)
	s298, err3 := strconv.ParseFloat(fields[5], 64)
	if err1 != nil || err2 != nil || err3 != nil {
		p.warnf("line %d: bad ELEMENT values for %s", st.line, fields[1])
		return
	}
	p.db.Elements = append(p.db.Elements, Element{
		Symbol:   strings.ToUpper(fields[1]),
		RefPhase: strings.ToUpper(fields[2]),
		Mass:     mass,
		H298:     h298,
		S298:     s298,
	})
}

func (p *parser) parsePhase(st statement) {
	// PHASE name model nsub n1 n2 ...
	fields := strings.Fields(st.text)
	if len(fields) < 4 {
		p.warnf("line %d: short PHASE statement", st.line)
		return
	}
	name := strings.ToUpper(strings.SplitN(fields[1], ":", 2)[0])
	nsub, err := strconv.Atoi(fields[3])
	if err != nil || len(fields) < 4+nsub {
		p.warnf("line %d: bad sublattice count in PHASE %s", st.line, name)
		return
	}
	sites := make([]float64, 0, nsub)
	for _, f := range fields[4 : 4+nsub] {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			p.warnf("line %d: bad site ratio in PHASE %s", st.line, name)
			return
		}
		sites = append(sites, v)
	}
	p.db.Phases[name] = &Phase{Name: name, Model: fields[2], Sublattices: sites}
}

func (p *parser) parseConstituent(st statement) {
	// CONSTITUENT name :CU:O:
	fields := strings.Fields(st.text)
	if len(fields) < 3 {
		p.warnf("line %d: short CONSTITUENT statement", st.line)
		return
	}
	name := strings.ToUpper(strings.SplitN(fields[1], ":", 2)[0])
	phase, ok := p.db.Phases[name]
	if !ok {
		p.warnf("line %d: CONSTITUENT for unknown phase %s", st.line, name)
		return
	}
	spec := strings.Trim(strings.Join(fields[2:], ""), ":")
	for _, sub := range strings.Split(spec, ":") {
		var species []string
		for _, s := range strings.Split(sub, ",") {
			s = strings.TrimSuffix(strings.TrimSpace(s), "%")
			if s != "" {
				species = append(species, strings.ToUpper(s))
			}
		}
		phase.Constituents = append(phase.Constituents, species)
	}
}

func (p *parser) parseFunction(st statement) {
	// FUNCTION NAME lo expr; breakpoint Y expr; hi N
	rest := strings.TrimSpace(st.text[len("FUNCTION"):])
	fields := strings.SplitN(rest, " ", 2)
	if len(fields) < 2 {
		p.warnf("line %d: short FUNCTION statement", st.line)
		return
	}
	name := strings.ToUpper(fields[0])
	ranges, err := parseRanges(fields[1])
	if err != nil {
		p.warnf("line %d: FUNCTION %s: %v", st.line, name, err)
		return
	}
	p.rawFns[name] = ranges
}

func (p *parser) parseParameterRaw(st statement) (rawParam, bool) {
	// PARAMETER G(CU2O,CU:O;0) lo expr; hi N ref
	rest := strings.TrimSpace(st.text[len("PARAMETER"):])
	open := strings.Index(rest, "(")
	if open < 0 {
		p.warnf("line %d: PARAMETER without key", st.line)
		return rawParam{}, false
	}
	depth := 0
	closeIdx := -1
	for i := open; i < len(rest); i++ {
		switch rest[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				closeIdx = i
			}
		}
		if closeIdx >= 0 {
			break
		}
	}
	if closeIdx < 0 {
		p.warnf("line %d: unbalanced PARAMETER key", st.line)
		return rawParam{}, false
	}

	kind := strings.ToUpper(strings.TrimSpace(rest[:open]))
	key := strings.ToUpper(rest[:closeIdx+1])
	if kind != "G" && kind != "GM" {
		// TC, BMAGN and other property parameters are not needed.
		return rawParam{}, false
	}

	inner := rest[open+1 : closeIdx]
	parts := strings.SplitN(inner, ",", 2)
	phase := strings.ToUpper(strings.TrimSpace(parts[0]))
	constituent := ""
	order := 0
	if len(parts) == 2 {
		c := strings.TrimSpace(parts[1])
		if semi := strings.LastIndex(c, ";"); semi >= 0 {
			if n, err := strconv.Atoi(strings.TrimSpace(c[semi+1:])); err == nil {
				order = n
			}
			c = c[:semi]
		}
		constituent = strings.ToUpper(c)
	}

	ranges, err := parseRanges(rest[closeIdx+1:])
	if err != nil {
		p.warnf("line %d: PARAMETER %s: %v", st.line, key, err)
		return rawParam{}, false
	}
	return rawParam{key: key, phase: phase, constituent: constituent, order: order, ranges: ranges}, true
}

// parseRanges splits "lo expr; breakpoint Y expr; hi N [ref]" into raw ranges.
func parseRanges(body string) ([]rawRange, error) {
	chunks := strings.Split(body, ";")
	if len(chunks) < 2 {
		return nil, fmt.Errorf("no range terminator")
	}

	var ranges []rawRange
	lo := 0.0
	for i, chunk := range chunks {
		chunk = strings.TrimSpace(chunk)
		if i == 0 {
			fields := strings.SplitN(chunk, " ", 2)
			if len(fields) < 2 {
				return nil, fmt.Errorf("missing expression")
			}
			v, err := strconv.ParseFloat(fields[0], 64)
			if err != nil {
				return nil, fmt.Errorf("bad lower bound %q", fields[0])
			}
			lo = v
			ranges = append(ranges, rawRange{lo: lo, expr: strings.TrimSpace(fields[1])})
			continue
		}

		fields := strings.Fields(chunk)
		if len(fields) < 2 {
			return nil, fmt.Errorf("bad range continuation %q", chunk)
		}
		hi, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("bad breakpoint %q", fields[0])
		}
		ranges[len(ranges)-1].hi = hi

		switch strings.ToUpper(fields[1]) {
		case "Y":
			expr := strings.TrimSpace(strings.Join(fields[2:], " "))
			ranges = append(ranges, rawRange{lo: hi, expr: expr})
		case "N":
			return ranges, nil
		default:
			return nil, fmt.Errorf("expected Y or N, got %q", fields[1])
		}
	}
	return nil, fmt.Errorf("unterminated range list")
}

// resolve builds the piecewise form of a named function, resolving nested
// function references with cycle detection.
func (p *parser) resolve(name string) (*gibbs.Piecewise, error) {
	name = strings.ToUpper(name)
	if fn, ok := p.db.functions[name]; ok {
		return fn, nil
	}
	raw, ok := p.rawFns[name]
	if !ok {
		return nil, fmt.Errorf("undefined function %s", name)
	}
	if p.resolving == nil {
		p.resolving = make(map[string]bool)
	}
	if p.resolving[name] {
		return nil, fmt.Errorf("circular reference through %s", name)
	}
	p.resolving[name] = true
	defer delete(p.resolving, name)

	fn, err := p.buildPiecewise(name, raw)
	if err != nil {
		return nil, err
	}
	p.db.functions[name] = fn
	return fn, nil
}

func (p *parser) buildPiecewise(name string, raw []rawRange) (*gibbs.Piecewise, error) {
	ranges := make([]gibbs.Range, 0, len(raw))
	for i, rr := range raw {
		expr, err := parseExpr(rr.expr, p.resolve)
		if err != nil {
			return nil, fmt.Errorf("range %d: %w", i, err)
		}
		ranges = append(ranges, gibbs.Range{Lo: rr.lo, Hi: rr.hi, Expr: expr})
	}
	return gibbs.NewPiecewise(name, ranges)
}
