package format

import (
	"errors"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Node is one entry of a parsed markup tree.
type Node interface {
	node()
}

// Attr is one attribute in source order. Names are lower-cased, values are
// unescaped.
type Attr struct {
	Name  string
	Value string
}

// ElementNode is an element with its children. Open and End keep the raw
// start and end tags; End is empty when the element was closed implicitly.
type ElementNode struct {
	Tag        string
	Attrs      []Attr
	Children   []Node
	Void       bool
	SelfClosed bool
	Open       string
	End        string
}

// TextNode is raw character data, entities untouched.
type TextNode struct{ Raw string }

// CommentNode is a comment or a processing instruction.
type CommentNode struct{ Raw string }

// DoctypeNode is a document type declaration.
type DoctypeNode struct{ Raw string }

// StrayNode is an end tag that matched no open element.
type StrayNode struct{ Raw string }

func (*ElementNode) node() {}
func (*TextNode) node()    {}
func (*CommentNode) node() {}
func (*DoctypeNode) node() {}
func (*StrayNode) node()   {}

// Attr returns the value of the named attribute.
func (e *ElementNode) Attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

func (e *ElementNode) append(n Node) {
	e.Children = append(e.Children, n)
}

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true, "hr": true, "img": true,
	"input": true, "link": true, "meta": true, "param": true, "source": true, "track": true, "wbr": true,
}

// impliedEnd lists, per opening tag, the open elements it closes when they
// are on top of the stack.
var impliedEnd = map[string][]string{
	"li":     {"li"},
	"dt":     {"dt", "dd"},
	"dd":     {"dt", "dd"},
	"p":      {"p"},
	"option": {"option"},
	"tr":     {"tr", "td", "th"},
	"td":     {"td", "th"},
	"th":     {"td", "th"},
}

// ParseMarkup builds a forgiving element tree. End tags close up to the
// nearest matching open element, unmatched end tags become StrayNodes, end
// tags of void elements are dropped, and elements open at EOF stay in the
// tree without an End.
func ParseMarkup(raw string) (*ElementNode, error) {
	z := html.NewTokenizer(strings.NewReader(raw))
	root := &ElementNode{}
	stack := []*ElementNode{root}
	top := func() *ElementNode { return stack[len(stack)-1] }

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if err := z.Err(); !errors.Is(err, io.EOF) {
				return root, err
			}
			// a tag left open at EOF produces no token; its bytes are kept as
			// text after every open element is closed
			if rest := z.Raw(); len(rest) > 0 {
				root.append(&TextNode{Raw: string(rest)})
			}
			return root, nil
		case html.TextToken:
			top().append(&TextNode{Raw: string(z.Raw())})
		case html.CommentToken:
			top().append(&CommentNode{Raw: string(z.Raw())})
		case html.DoctypeToken:
			top().append(&DoctypeNode{Raw: string(z.Raw())})
		case html.StartTagToken, html.SelfClosingTagToken:
			// Raw must be copied before TagName lower-cases the buffer.
			open := string(z.Raw())
			name, more := z.TagName()
			el := &ElementNode{
				Tag:        string(name),
				Open:       open,
				SelfClosed: tt == html.SelfClosingTagToken,
			}
			el.Void = voidElements[el.Tag]
			for more {
				var key, val []byte
				key, val, more = z.TagAttr()
				el.Attrs = append(el.Attrs, Attr{Name: string(key), Value: string(val)})
			}
			stack = closeImplied(stack, el.Tag)
			top().append(el)
			if !el.Void && !el.SelfClosed {
				stack = append(stack, el)
			}
		case html.EndTagToken:
			end := string(z.Raw())
			name, _ := z.TagName()
			tag := string(name)
			if voidElements[tag] {
				continue
			}
			idx := -1
			for i := len(stack) - 1; i > 0; i-- {
				if stack[i].Tag == tag {
					idx = i
					break
				}
			}
			if idx < 0 {
				top().append(&StrayNode{Raw: end})
				continue
			}
			stack[idx].End = end
			stack = stack[:idx]
		}
	}
}

func closeImplied(stack []*ElementNode, tag string) []*ElementNode {
	closes := impliedEnd[tag]
	for len(closes) > 0 && len(stack) > 1 {
		cur := stack[len(stack)-1].Tag
		matched := false
		for _, c := range closes {
			if c == cur {
				matched = true
				break
			}
		}
		if !matched {
			break
		}
		stack = stack[:len(stack)-1]
	}
	return stack
}
