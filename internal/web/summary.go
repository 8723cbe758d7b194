package web

import (
	"net/http"
	"net/url"
	"sort"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
)

const maxLinks = 50

// PageSummary is a readable rendering of fetched content.
type PageSummary struct {
	URL         string   `json:"url"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Text        string   `json:"text"`
	Links       []string `json:"links"`
}

// invisible lists elements that never carry readable text.
const invisible = "script, style, noscript, iframe, object, embed, img, video, picture, svg, canvas, audio, source, track, map, area, form, label, input, button, select, textarea, progress, ins, applet"

// Summarize turns content fetched from rawURL into a PageSummary. HTML is
// reduced to markdown with its links collected; anything else is kept as is.
func Summarize(rawURL, content string) (*PageSummary, error) {
	ps := &PageSummary{URL: rawURL}
	if !isHTML(content) {
		ps.Text = content
		return ps, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil, err
	}
	doc.Find(invisible).Remove()

	ps.Title = strings.TrimSpace(doc.Find("head > title").First().Text())
	ps.Description = strings.TrimSpace(doc.Find("meta[name=description]").AttrOr("content", ""))
	ps.Links = collectLinks(doc, rawURL)

	plain := strings.Join(strings.Fields(doc.Find("body").Text()), " ")

	doc.Find("a").Remove()
	doc.Find("header, footer, aside").Remove()

	html, err := doc.Html()
	if err != nil {
		return nil, err
	}
	md, err := htmltomarkdown.ConvertString(html)
	if err != nil {
		ps.Text = plain
	} else {
		ps.Text = strings.TrimSpace(md)
	}
	return ps, nil
}

func isHTML(content string) bool {
	return strings.HasPrefix(http.DetectContentType([]byte(content)), "text/html")
}

// collectLinks resolves anchors against base, drops fragments and
// non-navigable schemes, and returns at most maxLinks sorted URLs.
func collectLinks(doc *goquery.Document, base string) []string {
	baseURL, _ := url.Parse(base)
	seen := make(map[string]struct{})
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		if href == "" {
			return
		}
		u, err := url.Parse(href)
		if err != nil {
			return
		}
		if !u.IsAbs() && baseURL != nil {
			u = baseURL.ResolveReference(u)
		}
		switch u.Scheme {
		case "http", "https":
		default:
			return
		}
		u.Fragment = ""
		seen[u.String()] = struct{}{}
	})

	links := make([]string, 0, len(seen))
	for l := range seen {
		links = append(links, l)
	}
	sort.Strings(links)
	if len(links) > maxLinks {
		links = links[:maxLinks]
	}
	return links
}
