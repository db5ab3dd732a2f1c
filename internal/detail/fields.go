package detail

import (
	"fmt"
	"time"

	"github.com/bbachinco/yeoshin/internal/selector"
)

// Locator tables for the detail view. Each field keeps a structural XPath
// and a class-based CSS path; the generated class names rot across site
// deploys, so neither strategy is trusted alone.

// titleChain resolves the event title. When a "NEW" badge occupies the
// primary title slot the real title is the next sibling slot, so that
// locator is tried first; with no badge it simply fails to resolve and
// the plain locators take over.
func titleChain(timeout time.Duration) selector.Chain {
	return selector.Chain{
		Field:   "title",
		Timeout: timeout,
		Locators: []selector.Locator{
			selector.XPath(`//*[@id="ct-view"]/div/div/div[1]/div[2]/article/h1/span[normalize-space(text())="NEW"]/following-sibling::span[1]`),
			selector.XPath(`//*[@id="ct-view"]/div/div/div[1]/div[2]/article/h1/span`),
			selector.CSS("#ct-view > div > div > div.relative.flex-col > div.sc-68757109-1.kfwxBJ > article > h1 > span"),
		},
	}
}

func ratingChain(timeout time.Duration) selector.Chain {
	return selector.Chain{
		Field:   "rating",
		Timeout: timeout,
		Locators: []selector.Locator{
			selector.XPath(`//*[@id="ct-view"]/div/div/div[1]/div[2]/article/section[1]/div[2]/div/div/span`),
			selector.CSS(`#ct-view > div > div > div.relative.flex-col > div.sc-68757109-1.kfwxBJ > article > section.flex.flex-col.justify-center.w-full.gap-\[8px\] > div.flex.items-end.justify-between.w-full > div > div > span`),
		},
	}
}

func reviewCountChain(timeout time.Duration) selector.Chain {
	return selector.Chain{
		Field:   "review count",
		Timeout: timeout,
		Locators: []selector.Locator{
			selector.XPath(`//*[@id="ct-view"]/div/div/div[1]/div[2]/article/section[1]/div[2]/div/span`),
			selector.CSS(`#ct-view > div > div > div.relative.flex-col > div.sc-68757109-1.kfwxBJ > article > section.flex.flex-col.justify-center.w-full.gap-\[8px\] > div.flex.items-end.justify-between.w-full > div > span`),
		},
	}
}

func providerChain(timeout time.Duration) selector.Chain {
	return selector.Chain{
		Field:   "provider",
		Timeout: timeout,
		Locators: []selector.Locator{
			selector.XPath(`//*[@id="ct-view"]/div/div/div[1]/div[2]/div[1]/article/div/div/p`),
			selector.CSS("#ct-view > div > div > div.relative.flex-col > div.sc-68757109-1.kfwxBJ > div.sc-1543ab3d-0.sc-1543ab3d-1.sc-509fd85f-0.hQTMVb.bVOgYk.jlAXoU > article > div > div > p"),
		},
	}
}

func locationChain(timeout time.Duration) selector.Chain {
	return selector.Chain{
		Field:   "location",
		Timeout: timeout,
		Locators: []selector.Locator{
			selector.XPath(`//*[@id="ct-view"]/div/div/div[1]/div[2]/div[1]/article/section[2]/div/div/span[1]`),
			selector.CSS("#ct-view > div > div > div.relative.flex-col > div.sc-68757109-1.kfwxBJ > div.sc-1543ab3d-0.sc-1543ab3d-1.sc-509fd85f-0.hQTMVb.bVOgYk.jlAXoU > article > section:nth-child(3) > div > div > span:nth-child(2)"),
		},
	}
}

func inquiryCountChain(timeout time.Duration) selector.Chain {
	return selector.Chain{
		Field:   "inquiry count",
		Timeout: timeout,
		Locators: []selector.Locator{
			selector.XPath(`//*[@id="ct-view"]/div/div/div[1]/div[2]/div[4]/div[1]/div/p[2]`),
			selector.CSS("#ct-view > div > div > div.relative.flex-col > div.sc-68757109-1.kfwxBJ > div.sc-1543ab3d-0.sc-1543ab3d-1.sc-2ad9e729-2.hQTMVb.jrOHqu.bpXUeM > div.sc-1543ab3d-0.sc-1543ab3d-1.hQTMVb.iHBozd > div > p.sc-78093dd3-0.sc-78093dd3-1.knAupo.ePvHjs"),
		},
	}
}

func scrapCountChain(timeout time.Duration) selector.Chain {
	return selector.Chain{
		Field:   "scrap count",
		Timeout: timeout,
		Locators: []selector.Locator{
			selector.XPath(`//*[@id="ct-view"]/div/div/section/div[1]/div/p`),
			selector.CSS("#ct-view > div > div > section > div.sc-1543ab3d-0.sc-1543ab3d-1.hQTMVb.dtvKsa > div > p"),
		},
	}
}

// purchaseSectionChain anchors the section holding the purchase controls.
func purchaseSectionChain(timeout time.Duration) selector.Chain {
	return selector.Chain{
		Field:   "purchase section",
		Timeout: timeout,
		Locators: []selector.Locator{
			selector.XPath(`//*[@id="ct-view"]/div/div/section`),
			selector.CSS("#ct-view > div > div > section"),
		},
	}
}

// optionContainerChain anchors the option list inside the purchase modal.
func optionContainerChain(timeout time.Duration) selector.Chain {
	return selector.Chain{
		Field:   "option container",
		Timeout: timeout,
		Locators: []selector.Locator{
			selector.XPath(optionContainerXPath),
			selector.CSS("#ct-view > div > div > div:nth-child(2) > div > div > div > div:nth-child(2) > div:nth-child(2)"),
		},
	}
}

const optionContainerXPath = `//*[@id="ct-view"]/div/div/div[2]/div/div/div/div[2]/div[2]`

func optionChain(idx int, timeout time.Duration) selector.Chain {
	return selector.Chain{
		Field:   fmt.Sprintf("option %d", idx),
		Timeout: timeout,
		Locators: []selector.Locator{
			selector.XPath(fmt.Sprintf(`%s/div[%d]`, optionContainerXPath, idx)),
		},
	}
}

func optionNameChain(idx int, timeout time.Duration) selector.Chain {
	return selector.Chain{
		Field:   fmt.Sprintf("option %d name", idx),
		Timeout: timeout,
		Locators: []selector.Locator{
			selector.XPath(fmt.Sprintf(`%s/div[%d]/div/p`, optionContainerXPath, idx)),
		},
	}
}

func optionPriceChain(idx int, timeout time.Duration) selector.Chain {
	return selector.Chain{
		Field:   fmt.Sprintf("option %d price", idx),
		Timeout: timeout,
		Locators: []selector.Locator{
			selector.XPath(fmt.Sprintf(`%s/div[%d]/p`, optionContainerXPath, idx)),
		},
	}
}
