package collector

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"banketl/internal/logger"
	"banketl/internal/model"
)

// Cell positions within a data row of the banks table.
const (
	nameCell      = 1
	marketCapCell = 2
	nameNode      = 2 // flag span, separator text, then the link holding the name
)

// Extract fetches the page at source and parses its first table into a dataset
// whose columns must equal columns.
func Extract(ctx context.Context, f Fetcher, source string, columns []string) (*model.Dataset, error) {
	body, err := f.Fetch(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	ds, err := ParseTable(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	if err := ds.Validate(columns); err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}
	logger.Get().WithFields(logrus.Fields{
		"fetcher": f.Name(),
		"records": ds.Len(),
	}).Debug("table extracted")
	return ds, nil
}

// ParseTable reads the first <table> in document order. Rows without <td>
// cells are skipped; every other row must carry a name and a market cap.
func ParseTable(r io.Reader) (*model.Dataset, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	table := findFirst(doc, atom.Table)
	if table == nil {
		return nil, model.ErrNoTable
	}

	ds := &model.Dataset{}
	for i, row := range tableRows(table) {
		cells := childElements(row, atom.Td)
		if len(cells) == 0 {
			continue
		}
		rec, err := parseRow(cells)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		ds.Records = append(ds.Records, rec)
	}
	return ds, nil
}

func parseRow(cells []*html.Node) (model.Record, error) {
	if len(cells) <= marketCapCell {
		return model.Record{}, fmt.Errorf("%w: %d cells", model.ErrRowShape, len(cells))
	}

	link := nthChild(cells[nameCell], nameNode)
	if link == nil || link.FirstChild == nil || link.FirstChild.Type != html.TextNode {
		return model.Record{}, fmt.Errorf("%w: bank name node not found", model.ErrRowShape)
	}
	name := strings.TrimSpace(link.FirstChild.Data)

	capNode := cells[marketCapCell].FirstChild
	if capNode == nil || capNode.Type != html.TextNode {
		return model.Record{}, fmt.Errorf("%w: market cap for %q is not text", model.ErrRowShape, name)
	}
	mc, err := parseMarketCap(capNode.Data)
	if err != nil {
		return model.Record{}, fmt.Errorf("%s: %w", name, err)
	}
	return model.Record{Name: name, MCUSDBillion: mc}, nil
}

// parseMarketCap drops the one-character unit suffix and parses the rest.
func parseMarketCap(raw string) (float64, error) {
	_, size := utf8.DecodeLastRuneInString(raw)
	if size == 0 {
		return 0, fmt.Errorf("%w: empty value", model.ErrMarketCap)
	}
	s := strings.TrimSpace(raw[:len(raw)-size])
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", model.ErrMarketCap, raw)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: not a finite number %q", model.ErrMarketCap, raw)
	}
	if v < 0 {
		return 0, fmt.Errorf("%w: negative value %q", model.ErrMarketCap, raw)
	}
	return v, nil
}

func findFirst(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, a); found != nil {
			return found
		}
	}
	return nil
}

// tableRows collects the rows of table in document order, including those in
// thead/tbody/tfoot, without descending into nested tables.
func tableRows(table *html.Node) []*html.Node {
	var rows []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.DataAtom {
			case atom.Tr:
				rows = append(rows, c)
			case atom.Thead, atom.Tbody, atom.Tfoot:
				walk(c)
			}
		}
	}
	walk(table)
	return rows
}

func childElements(n *html.Node, a atom.Atom) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == a {
			out = append(out, c)
		}
	}
	return out
}

// nthChild returns the i-th child node, counting text and comment nodes.
func nthChild(n *html.Node, i int) *html.Node {
	c := n.FirstChild
	for ; c != nil && i > 0; i-- {
		c = c.NextSibling
	}
	return c
}
