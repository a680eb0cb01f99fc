package illumina

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// docScan is a schema-free view of one XML document. The instrument
// families place the same logical fields at different depths, so the
// parsers look elements up by local name (first occurrence in document
// order wins) instead of binding to a fixed structure. Anything not asked
// for is ignored.
type docScan struct {
	// text holds the first non-empty character data per leaf element name.
	text map[string]string
	// reads holds the attributes of every <Read>/<RunInfoRead> element in
	// document order.
	reads []map[string]string
	// runAttrs holds the attributes of the first <Run> element.
	runAttrs map[string]string
	// layoutAttrs holds the attributes of the first <FlowcellLayout> element.
	layoutAttrs map[string]string
}

func scanDocument(r io.Reader) (*docScan, error) {
	scan := &docScan{text: make(map[string]string)}
	dec := xml.NewDecoder(r)

	var current string
	var buf strings.Builder
	flush := func() {
		if current != "" {
			if v := strings.TrimSpace(buf.String()); v != "" {
				if _, ok := scan.text[current]; !ok {
					scan.text[current] = v
				}
			}
		}
		buf.Reset()
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("malformed XML: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			flush()
			current = t.Name.Local
			switch t.Name.Local {
			case "Run":
				if scan.runAttrs == nil {
					scan.runAttrs = attrMap(t.Attr)
				}
			case "FlowcellLayout":
				if scan.layoutAttrs == nil {
					scan.layoutAttrs = attrMap(t.Attr)
				}
			case "Read", "RunInfoRead":
				scan.reads = append(scan.reads, attrMap(t.Attr))
			}
		case xml.CharData:
			buf.Write(t)
		case xml.EndElement:
			flush()
			current = ""
		}
	}
	return scan, nil
}

func attrMap(attrs []xml.Attr) map[string]string {
	m := make(map[string]string, len(attrs))
	for _, a := range attrs {
		m[a.Name.Local] = a.Value
	}
	return m
}

// textOf returns the first text value of the named element, or "".
func (s *docScan) textOf(name string) string {
	return s.text[name]
}

// textOr returns the first text value of the named element, or def when
// the element is absent or empty.
func (s *docScan) textOr(name, def string) string {
	if v := s.text[name]; v != "" {
		return v
	}
	return def
}

// intOf returns the first text value of the named element as an integer,
// or 0 when absent or non-numeric.
func (s *docScan) intOf(name string) int {
	n, err := strconv.Atoi(s.text[name])
	if err != nil {
		return 0
	}
	return n
}

func attrInt(attrs map[string]string, name string) (int, error) {
	v, ok := attrs[name]
	if !ok {
		return 0, fmt.Errorf("missing attribute %s", name)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("attribute %s is not a number: %q", name, v)
	}
	return n, nil
}
