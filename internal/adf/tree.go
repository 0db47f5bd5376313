// Package adf builds and serializes Auto-lead Data Format (ADF) XML lead
// documents on top of an etree element tree.
package adf

import "github.com/beevik/etree"

// Element creates an element with the given children.
func Element(name string, children ...*etree.Element) *etree.Element {
	return Append(etree.NewElement(name), children...)
}

// TextElement creates a leaf element carrying text. Attributes are given as
// name/value pairs and keep their order.
func TextElement(name, text string, attrs ...string) *etree.Element {
	el := etree.NewElement(name)
	for i := 0; i+1 < len(attrs); i += 2 {
		el.CreateAttr(attrs[i], attrs[i+1])
	}
	if text != "" {
		el.SetText(text)
	}
	return el
}

// Append adds children to parent in order, skipping nil elements.
func Append(parent *etree.Element, children ...*etree.Element) *etree.Element {
	for _, c := range children {
		if c != nil {
			parent.AddChild(c)
		}
	}
	return parent
}
