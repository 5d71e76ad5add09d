package htmlutil

import (
	"bytes"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

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
	if node.Type == html.ElementNode && (node.Data == "script" || node.Data == "style") {
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

var innerWhitespace = regexp.MustCompile(`\s\s+`)

func removeNonPrintable(s string) string {
	newStr := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) || unicode.IsSpace(c) {
			newStr.WriteRune(c)
		}
	}
	return newStr.String()
}

// CleanText collapses the whitespace of text taken out of a page.
func CleanText(s string) string {
	s = removeNonPrintable(s)
	s = strings.TrimSpace(s)
	return innerWhitespace.ReplaceAllString(s, " ")
}

// maxErrorTextLength is counted in runes.
const maxErrorTextLength = 500

// ErrorText turns an error response into something that fits in a log line.
// HTML bodies are reduced to their visible text, anything else is returned as is.
func ErrorText(body []byte) string {
	text := string(body)
	if looksLikeHTML(body) {
		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
		if err == nil {
			var parts []string
			if title := CleanText(doc.Find("title").First().Text()); title != "" {
				parts = append(parts, title)
			}
			for _, node := range doc.Find("body").Nodes {
				if content := CleanText(GetText(node)); content != "" {
					parts = append(parts, content)
				}
			}
			text = strings.Join(parts, ": ")
		}
	}
	text = CleanText(text)
	if runes := []rune(text); len(runes) > maxErrorTextLength {
		text = string(runes[:maxErrorTextLength]) + "..."
	}
	return text
}

func looksLikeHTML(body []byte) bool {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '<' {
		return false
	}
	lower := bytes.ToLower(trimmed[:min(len(trimmed), 512)])
	return bytes.Contains(lower, []byte("<html")) ||
		bytes.Contains(lower, []byte("<!doctype html")) ||
		bytes.Contains(lower, []byte("<body"))
}
