package detail

import (
	"bytes"
	"context"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"
)

// Candidate containers for the event body, best first. The body is a
// free-form operator-authored block, so it is located loosely rather
// than through the strict field chains.
var descriptionSelectors = []string{
	"#ct-view article .event-detail",
	"#ct-view div[class*='detail-content']",
	"#ct-view > div > div > div.relative.flex-col article section",
}

var descConverter = md.NewConverter("", true, nil)

// captureDescription converts the detail body to markdown. Absence of a
// body is an ordinary outcome and leaves the field unset.
func (e *Extractor) captureDescription(ctx context.Context) (string, bool) {
	var pageHTML string
	if err := chromedp.Run(ctx, chromedp.OuterHTML("html", &pageHTML, chromedp.ByQuery)); err != nil {
		log.Debug().Err(err).Msg("Could not capture page HTML for description")
		return "", false
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		return "", false
	}

	for _, sel := range descriptionSelectors {
		node := doc.Find(sel).First()
		if node.Length() == 0 {
			continue
		}
		if text, ok := renderMarkdown(node.Get(0)); ok {
			return text, true
		}
	}
	return "", false
}

func renderMarkdown(node *html.Node) (string, bool) {
	var buf bytes.Buffer
	if err := html.Render(&buf, node); err != nil {
		return "", false
	}
	text, err := descConverter.ConvertString(buf.String())
	if err != nil {
		log.Debug().Err(err).Msg("Description conversion failed")
		return "", false
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", false
	}
	return text, true
}
