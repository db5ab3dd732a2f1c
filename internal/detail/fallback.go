package detail

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
	"github.com/dop251/goja"
	"github.com/rs/zerolog/log"

	"github.com/bbachinco/yeoshin/pkg/models"
)

// The detail view is a Next.js app and ships its render state in an
// embedded script. When the selector chains miss (typically right after
// a front-end redeploy renames every generated class), the state blob is
// mined as a last fallback before placeholders win.

var initialStateRe = regexp.MustCompile(`window\.__INITIAL_STATE__\s*=\s*(\{.*?\});`)

// fillFromPageState captures the page HTML and fills still-unset fields
// from the embedded state. Best effort throughout; any failure leaves the
// record as it was.
func (e *Extractor) fillFromPageState(ctx context.Context, ev *models.EventRecord) {
	var html string
	if err := chromedp.Run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		log.Debug().Err(err).Msg("Could not capture page HTML for state fallback")
		return
	}

	state, ok := pageState(html)
	if !ok {
		return
	}

	fill := func(dst *models.Field, keys ...string) {
		if dst.OK() {
			return
		}
		if v, found := findStateString(state, keys); found {
			*dst = models.Set(v)
			log.Debug().Strs("keys", keys).Msg("Field recovered from page state")
		}
	}

	fill(&ev.Title, "eventName", "title")
	fill(&ev.Provider, "hospitalName", "clinicName")
	fill(&ev.Location, "address", "region", "location")
	fill(&ev.Rating, "rating", "ratingAvg")
	fill(&ev.ReviewCount, "reviewCount")
	fill(&ev.ScrapCount, "scrapCount", "bookmarkCount")
	fill(&ev.InquiryCount, "qnaCount", "inquiryCount")
}

// pageState extracts the parsed state object from the page HTML. The
// __NEXT_DATA__ script is a plain JSON document; older revisions shipped
// an assignment expression instead, which is evaluated in a throwaway JS
// VM rather than parsed by hand.
func pageState(html string) (any, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, false
	}

	if blob := doc.Find("script#__NEXT_DATA__").Text(); blob != "" {
		var state any
		if jsonErr := json.Unmarshal([]byte(blob), &state); jsonErr != nil {
			log.Debug().Err(jsonErr).Msg("__NEXT_DATA__ blob did not parse")
		} else {
			return state, true
		}
	}

	if m := initialStateRe.FindStringSubmatch(html); m != nil {
		if state, ok := evalStateExpr(m[1]); ok {
			return state, true
		}
	}

	return nil, false
}

func evalStateExpr(expr string) (any, bool) {
	vm := goja.New()
	v, err := vm.RunString("JSON.stringify(" + expr + ")")
	if err != nil {
		log.Debug().Err(err).Msg("State expression did not evaluate")
		return nil, false
	}
	var state any
	if err := json.Unmarshal([]byte(v.String()), &state); err != nil {
		return nil, false
	}
	return state, true
}

// findStateString walks the parsed state depth-first for the first
// non-empty string or number stored under any of the given keys.
func findStateString(data any, keys []string) (string, bool) {
	switch v := data.(type) {
	case map[string]any:
		for _, key := range keys {
			if raw, ok := v[key]; ok {
				if s, ok := stateScalar(raw); ok {
					return s, true
				}
			}
		}
		for _, child := range v {
			if s, ok := findStateString(child, keys); ok {
				return s, true
			}
		}
	case []any:
		for _, child := range v {
			if s, ok := findStateString(child, keys); ok {
				return s, true
			}
		}
	}
	return "", false
}

func stateScalar(raw any) (string, bool) {
	switch s := raw.(type) {
	case string:
		if strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s), true
		}
	case float64:
		b, _ := json.Marshal(s)
		return string(b), true
	}
	return "", false
}
