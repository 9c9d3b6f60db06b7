package serialize

import (
	"encoding/xml"
	"io"
	"strings"

	"github.com/beevik/etree"
)

type etreeEngine struct{}

func (etreeEngine) write(w io.Writer, root *element, indent string) error {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	appendEtree(&doc.Element, root)
	// Whitespace-only leaf text is content, so indenting must not strip it.
	settings := etree.NewIndentSettings()
	settings.PreserveLeafWhitespace = true
	switch {
	case indent == "":
	case indent == "\t":
		settings.UseTabs = true
		doc.IndentWithSettings(settings)
	case strings.Trim(indent, " ") == "":
		settings.Spaces = len(indent)
		doc.IndentWithSettings(settings)
	default:
		return errIndentUnsupported
	}
	_, err := doc.WriteTo(w)
	return err
}

func appendEtree(parent *etree.Element, el *element) {
	e := parent.CreateElement(el.name)
	for _, a := range el.attrs {
		e.CreateAttr(a.name, a.value)
	}
	if el.hasText && el.text != "" {
		e.SetText(el.text)
	}
	for _, c := range el.children {
		appendEtree(e, c)
	}
}

// stdlibEngine is the built-in writer. It supports any indent string.
type stdlibEngine struct{}

func (stdlibEngine) write(w io.Writer, root *element, indent string) error {
	if _, err := io.WriteString(w, xmlDeclaration); err != nil {
		return err
	}
	if indent != "" {
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", indent)
	if err := encodeElement(enc, root); err != nil {
		return err
	}
	return enc.Close()
}

func encodeElement(enc *xml.Encoder, el *element) error {
	start := xml.StartElement{Name: xml.Name{Local: el.name}}
	for _, a := range el.attrs {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: a.name}, Value: a.value})
	}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	if el.hasText && el.text != "" {
		if err := enc.EncodeToken(xml.CharData(el.text)); err != nil {
			return err
		}
	}
	for _, c := range el.children {
		if err := encodeElement(enc, c); err != nil {
			return err
		}
	}
	return enc.EncodeToken(start.End())
}
