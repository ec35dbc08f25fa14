package docx

import (
	"encoding/xml"
	"errors"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/docmetrics/internal/model"
)

// paragraph collects the runs of one <w:p> element.
type paragraph struct {
	style string
	text  strings.Builder
}

// parseBody walks word/document.xml and returns the non-blank paragraphs
// in reading order together with the headings among them.
// Paragraphs nested in text boxes are emitted before their parent.
func parseBody(r io.Reader) ([]string, []model.Heading, error) {
	dec := xml.NewDecoder(r)

	var (
		stack      []*paragraph
		paragraphs []string
		headings   []model.Heading
		inText     bool
		propsDepth int
	)
	current := func() *paragraph {
		if len(stack) == 0 {
			return nil
		}
		return stack[len(stack)-1]
	}

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				stack = append(stack, &paragraph{})
			case "pPr":
				propsDepth++
			case "pStyle":
				if p := current(); p != nil {
					p.style = attrValue(t, "val")
				}
			case "t":
				inText = current() != nil
			case "tab":
				if p := current(); p != nil && propsDepth == 0 {
					p.text.WriteByte('\t')
				}
			case "br", "cr":
				if p := current(); p != nil {
					p.text.WriteByte('\n')
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "pPr":
				propsDepth--
			case "p":
				p := current()
				if p == nil {
					continue
				}
				stack = stack[:len(stack)-1]
				text := strings.TrimSpace(p.text.String())
				if text == "" {
					continue
				}
				paragraphs = append(paragraphs, text)
				if level := headingLevel(p.style); level > 0 {
					headings = append(headings, model.Heading{Level: level, Text: text})
				}
			}
		case xml.CharData:
			if p := current(); p != nil && inText {
				p.text.Write(t)
			}
		}
	}
	return paragraphs, headings, nil
}

func attrValue(se xml.StartElement, local string) string {
	for _, a := range se.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// headingLevel returns the outline level for an OOXML paragraph style id,
// or 0 if the style is not a heading style.
func headingLevel(style string) int {
	s := strings.ToLower(style)
	switch s {
	case "title":
		return 1
	case "subtitle":
		return 2
	}
	for _, prefix := range []string{"heading", "überschrift", "berschrift"} {
		n, ok := strings.CutPrefix(s, prefix)
		if !ok {
			continue
		}
		level, err := strconv.Atoi(n)
		if err != nil || level < 1 || level > 9 {
			return 0
		}
		return level
	}
	return 0
}

type coreProperties struct {
	Title          string `xml:"title"`
	Creator        string `xml:"creator"`
	Subject        string `xml:"subject"`
	Description    string `xml:"description"`
	LastModifiedBy string `xml:"lastModifiedBy"`
	Created        string `xml:"created"`
	Modified       string `xml:"modified"`
}

// parseCoreProperties reads docProps/core.xml.
// Dates that are not W3CDTF timestamps are left zero.
func parseCoreProperties(r io.Reader) (model.Properties, error) {
	var cp coreProperties
	if err := xml.NewDecoder(r).Decode(&cp); err != nil {
		return model.Properties{}, err
	}
	return model.Properties{
		Title:          strings.TrimSpace(cp.Title),
		Author:         strings.TrimSpace(cp.Creator),
		Subject:        strings.TrimSpace(cp.Subject),
		Description:    strings.TrimSpace(cp.Description),
		LastModifiedBy: strings.TrimSpace(cp.LastModifiedBy),
		Created:        parseTimestamp(cp.Created),
		Modified:       parseTimestamp(cp.Modified),
	}, nil
}

func parseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
