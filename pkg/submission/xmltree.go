package submission

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// element is a generic XML element, the grammar checks and the conversion
// to ParsedSubmission both work on it.
type element struct {
	Name     string
	Attrs    map[string]string
	Children []*element
	Text     string
	Path     string
}

func (e *element) attr(name string) (string, bool) {
	v, ok := e.Attrs[name]
	return v, ok
}

// child returns the first child with the given name.
func (e *element) child(name string) *element {
	for _, c := range e.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func (e *element) childrenNamed(name string) []*element {
	var result []*element
	for _, c := range e.Children {
		if c.Name == name {
			result = append(result, c)
		}
	}
	return result
}

// parseXMLTree parses the whole document. Namespaces are not used by
// submissions, thus only local names are kept.
func parseXMLTree(doc []byte) (*element, error) {
	decoder := xml.NewDecoder(bytes.NewReader(doc))
	decoder.Strict = true

	var (
		root  *element
		stack []*element
		text  []*strings.Builder
	)
	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, ErrParseXML{Err: err}
		}

		switch token := token.(type) {
		case xml.StartElement:
			el := &element{
				Name:  token.Name.Local,
				Attrs: make(map[string]string, len(token.Attr)),
			}
			for _, attr := range token.Attr {
				el.Attrs[attr.Name.Local] = attr.Value
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, ErrParseXML{Err: fmt.Errorf("multiple root elements")}
				}
				root = el
				el.Path = "/" + el.Name
			} else {
				parent := stack[len(stack)-1]
				el.Path = parent.Path + "/" + el.Name
				parent.Children = append(parent.Children, el)
			}
			stack = append(stack, el)
			text = append(text, &strings.Builder{})
		case xml.EndElement:
			el := stack[len(stack)-1]
			el.Text = text[len(text)-1].String()
			stack = stack[:len(stack)-1]
			text = text[:len(text)-1]
		case xml.CharData:
			if len(text) > 0 {
				text[len(text)-1].Write(token)
			}
		}
	}
	if root == nil {
		return nil, ErrParseXML{Err: fmt.Errorf("no root element")}
	}
	return root, nil
}
