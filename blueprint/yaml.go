package blueprint

import (
	"errors"
	"fmt"

	"github.com/npillmayer/reactree/expr"
	"gopkg.in/yaml.v3"
)

// ErrSyntax is returned for YAML documents which do not describe blueprints.
var ErrSyntax = errors.New("invalid blueprint")

// FromYAML reads a list of blueprints from a YAML document.
//
//     - element: border
//       attributes:
//         width: 10
//       children:
//         - switch:
//             - if: $show
//               body: [ { element: text, value: shown } ]
//             - else: [ { element: text, value: hidden } ]
//     - component: counter
//       state: { count: 0 }
//       body:
//         - element: text
//           value: $count
//         - slot: footer
//       slots:
//         footer: [ { element: text, value: bye } ]
//
func FromYAML(src []byte) ([]Blueprint, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(src, &doc); err != nil {
		return nil, err
	}
	if doc.Kind == 0 { // empty document
		return nil, nil
	}
	return decodeList(&doc)
}

func decodeList(node *yaml.Node) ([]Blueprint, error) {
	if node.Kind == yaml.DocumentNode && len(node.Content) == 1 {
		node = node.Content[0]
	}
	if node.Kind != yaml.SequenceNode {
		return nil, errorAt(node, "expected a list of blueprints")
	}
	bps := make([]Blueprint, 0, len(node.Content))
	for _, n := range node.Content {
		bp, err := decode(n)
		if err != nil {
			return nil, err
		}
		bps = append(bps, bp)
	}
	return bps, nil
}

// fields maps the keys of a YAML mapping to their value nodes.
type fields map[string]*yaml.Node

func fieldsOf(node *yaml.Node) (fields, error) {
	if node.Kind != yaml.MappingNode {
		return nil, errorAt(node, "expected a mapping")
	}
	f := make(fields, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		f[node.Content[i].Value] = node.Content[i+1]
	}
	return f, nil
}

func decode(node *yaml.Node) (Blueprint, error) {
	f, err := fieldsOf(node)
	if err != nil {
		return nil, err
	}
	switch {
	case f["element"] != nil:
		return decodeElement(f)
	case f["for"] != nil:
		return decodeFor(node, f)
	case f["switch"] != nil:
		return decodeControlFlow(f["switch"])
	case f["component"] != nil:
		return decodeComponent(f)
	case f["slot"] != nil:
		return &Slot{Name: f["slot"].Value}, nil
	}
	return nil, errorAt(node, "unknown kind of blueprint")
}

func decodeElement(f fields) (*Element, error) {
	e := &Element{Ident: f["element"].Value}
	var err error
	if n := f["value"]; n != nil {
		if e.Value, err = expr.Decode(n); err != nil {
			return nil, err
		}
	}
	if e.Attributes, err = decodeAttributes(f["attributes"]); err != nil {
		return nil, err
	}
	if n := f["children"]; n != nil {
		if e.Children, err = decodeList(n); err != nil {
			return nil, err
		}
	}
	return e, nil
}

func decodeFor(node *yaml.Node, f fields) (*For, error) {
	if f["in"] == nil || f["body"] == nil {
		return nil, errorAt(node, "for needs 'in' and 'body'")
	}
	coll, err := expr.Decode(f["in"])
	if err != nil {
		return nil, err
	}
	body, err := decodeList(f["body"])
	if err != nil {
		return nil, err
	}
	return &For{Binding: f["for"].Value, Collection: coll, Body: body}, nil
}

func decodeControlFlow(node *yaml.Node) (*ControlFlow, error) {
	if node.Kind != yaml.SequenceNode {
		return nil, errorAt(node, "switch needs a list of branches")
	}
	cf := &ControlFlow{}
	for i, n := range node.Content {
		f, err := fieldsOf(n)
		if err != nil {
			return nil, err
		}
		var branch Branch
		switch {
		case f["if"] != nil && f["body"] != nil:
			if branch.Cond, err = expr.Decode(f["if"]); err != nil {
				return nil, err
			}
			branch.Body, err = decodeList(f["body"])
		case f["else"] != nil:
			if i != len(node.Content)-1 {
				return nil, errorAt(n, "else must be the last branch")
			}
			branch.Body, err = decodeList(f["else"])
		default:
			return nil, errorAt(n, "branches need 'if' and 'body', or 'else'")
		}
		if err != nil {
			return nil, err
		}
		cf.Branches = append(cf.Branches, branch)
	}
	return cf, nil
}

func decodeComponent(f fields) (*Component, error) {
	c := &Component{Name: f["component"].Value}
	var err error
	if c.Attributes, err = decodeAttributes(f["attributes"]); err != nil {
		return nil, err
	}
	if c.State, err = decodeAttributes(f["state"]); err != nil {
		return nil, err
	}
	if n := f["body"]; n != nil {
		if c.Body, err = decodeList(n); err != nil {
			return nil, err
		}
	}
	if n := f["slots"]; n != nil {
		sf, err := fieldsOf(n)
		if err != nil {
			return nil, err
		}
		c.Slots = make(map[string][]Blueprint, len(sf))
		for name, sn := range sf {
			if c.Slots[name], err = decodeList(sn); err != nil {
				return nil, err
			}
		}
	}
	return c, nil
}

// decodeAttributes decodes a mapping of attribute names to expressions, keeping the
// order of the document.
func decodeAttributes(node *yaml.Node) ([]Attribute, error) {
	if node == nil {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, errorAt(node, "attributes must be a mapping")
	}
	attrs := make([]Attribute, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		e, err := expr.Decode(node.Content[i+1])
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, Attribute{Name: node.Content[i].Value, Value: e})
	}
	return attrs, nil
}

func errorAt(node *yaml.Node, msg string) error {
	return fmt.Errorf("%w at line %d: %s", ErrSyntax, node.Line, msg)
}
