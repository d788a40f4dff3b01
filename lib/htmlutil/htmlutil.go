package htmlutil

import (
	"bytes"
	"strings"
	"unicode"

	"rentscan/lib/textutil"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// GetText concatenates every text node under node, in document order.
func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	// <br> separates words
	if node.Type == html.ElementNode && node.Data == "br" {
		buffer.WriteByte(' ')
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		getTextRecursive(child, buffer)
	}
}

// removeNonPrintable drops control characters and turns every unicode space
// (including &nbsp;) into an ascii space.
func removeNonPrintable(s string) string {
	var out strings.Builder
	for _, c := range s {
		switch {
		case unicode.IsSpace(c):
			out.WriteByte(' ')
		case unicode.IsPrint(c):
			out.WriteRune(c)
		}
	}
	return out.String()
}

// CleanText returns the printable text of the first node of sel with inner
// whitespace collapsed. ok is false when sel matched nothing.
func CleanText(sel *goquery.Selection) (string, bool) {
	if sel.Length() == 0 {
		return "", false
	}
	text := GetText(sel.Nodes[0])
	return textutil.CollapseSpace(removeNonPrintable(text)), true
}

// AttrOf returns attribute `name` of the first node of sel. ok is false when
// sel matched nothing or the attribute is absent.
func AttrOf(sel *goquery.Selection, name string) (string, bool) {
	if sel.Length() == 0 {
		return "", false
	}
	value, ok := sel.First().Attr(name)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(value), true
}
