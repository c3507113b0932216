package scraper

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	videoHostRe  = regexp.MustCompile(`(?i)^(?:https?:)?//(?:[\w-]+\.)*(?:youtube\.com|youtube-nocookie\.com|youtu\.be|vimeo\.com|dailymotion\.com|dai\.ly)/`)
	badImageRe   = regexp.MustCompile(`(?i)logo|avatar|icon|sprite|pixel|spacer|gravatar|\.svg(?:$|\?)`)
	imageSrcAttr = []string{"src", "data-src", "data-lazy-src", "data-original", "content", "href"}
)

// resolveURL makes ref absolute against base. Protocol-relative references
// get https. Data URIs and unparseable references yield "".
func resolveURL(base *url.URL, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" || strings.HasPrefix(strings.ToLower(ref), "data:") {
		return ""
	}
	if strings.HasPrefix(ref, "//") {
		return "https:" + ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	if base == nil || u.IsAbs() {
		return u.String()
	}
	return base.ResolveReference(u).String()
}

// attrURL returns the first non-empty URL-bearing attribute of the selection.
func attrURL(sel *goquery.Selection) string {
	for _, attr := range imageSrcAttr {
		if v, ok := sel.Attr(attr); ok && strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func metaImages(selector string) func(p *page) []string {
	return func(p *page) []string {
		var out []string
		p.doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			if u := resolveURL(p.source, attrURL(sel)); u != "" {
				out = append(out, u)
			}
		})
		return out
	}
}

func contentImages(selector string) func(p *page) []string {
	return func(p *page) []string {
		var out []string
		p.doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			if inChrome(sel) {
				return
			}
			if goquery.NodeName(sel) != "img" && attrURL(sel) == "" {
				sel = sel.Find("img").First()
			}
			raw := attrURL(sel)
			if raw == "" || badImageRe.MatchString(raw) {
				return
			}
			if u := resolveURL(p.source, raw); u != "" {
				out = append(out, u)
			}
		})
		return out
	}
}

var imageStrategies = []strategy[string]{
	{"og-image", metaImages(`meta[property="og:image"], meta[property="og:image:secure_url"], meta[name="og:image"]`)},
	{"twitter-image", metaImages(`meta[name="twitter:image"], meta[property="twitter:image"]`)},
	{"link-image-src", metaImages(`link[rel="image_src"]`)},
	{"recipe-image", contentImages(`.wprm-recipe-image img, .tasty-recipes-image img, .recipe-image img, .recipe-photo img, [itemprop="image"]`)},
	{"article-image", contentImages(`article img, main img, .entry-content img, .post-content img`)},
}

func videoLinks(selector string, attrs ...string) func(p *page) []string {
	return func(p *page) []string {
		var out []string
		p.doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			for _, attr := range attrs {
				v, ok := sel.Attr(attr)
				if !ok || !videoHostRe.MatchString(strings.TrimSpace(v)) {
					continue
				}
				if u := resolveURL(p.source, v); u != "" {
					out = append(out, u)
					return
				}
			}
		})
		return out
	}
}

var videoStrategies = []strategy[string]{
	{"iframe", videoLinks("iframe", "src", "data-src", "data-lazy-src")},
	{"og-video", videoLinks(`meta[property="og:video"], meta[property="og:video:url"], meta[property="og:video:secure_url"]`, "content")},
	{"anchor", videoLinks("a[href]", "href")},
}

func (s *Scraper) findImage(p *page) string {
	img, name := firstString(p, imageStrategies)
	s.record("image", name, 1)
	return img
}

func (s *Scraper) findVideo(p *page) string {
	video, name := firstString(p, videoStrategies)
	s.record("video", name, 1)
	return video
}
