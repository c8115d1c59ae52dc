package corpus

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/dgallion1/ditagen/internal/config"
)

// TargetKind classifies what an href points at.
type TargetKind int

const (
	TargetInternal TargetKind = iota // a corpus page, addressed by Key
	TargetExternal                   // another site, addressed by URL
	TargetAnchor                     // empty or fragment-only
)

func (k TargetKind) String() string {
	switch k {
	case TargetInternal:
		return "internal"
	case TargetExternal:
		return "external"
	default:
		return "anchor"
	}
}

// Target is a resolved href.
type Target struct {
	Kind TargetKind
	Key  string
	URL  string
}

// pageExtensions are stripped from keys so rendered and source names agree.
var pageExtensions = []string{".html", ".htm", ".md", ".markdown"}

// Resolver turns hrefs into corpus keys. A key is the slash-separated path of
// a page relative to the corpus root, without extension, fragment or query.
type Resolver struct {
	host   string // site host, lower case, without "www."
	prefix string // site path prefix, without trailing slash
}

// NewResolver returns a Resolver for the site the corpus was mirrored from.
// An empty siteURL treats every absolute URL as external.
func NewResolver(siteURL string) (*Resolver, error) {
	r := &Resolver{}
	if siteURL == "" {
		return r, nil
	}
	u, err := url.Parse(siteURL)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", config.ErrInvalidSiteURL, siteURL)
	}
	r.host = bareHost(u.Hostname())
	r.prefix = strings.TrimSuffix(u.Path, "/")
	return r, nil
}

// Resolve classifies href. Relative paths are resolved against base, a key
// of the directory the href is written in ("" for the corpus root).
func (r *Resolver) Resolve(href, base string) (Target, error) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return Target{Kind: TargetAnchor}, nil
	}

	u, err := url.Parse(href)
	if err != nil {
		return Target{}, fmt.Errorf("parse href %q: %w", href, err)
	}

	if u.Scheme != "" || u.Host != "" {
		if !r.OnSite(u) {
			return Target{Kind: TargetExternal, URL: href}, nil
		}
		return keyTarget(Key(r.SiteRelative(u.Path), "")), nil
	}

	if u.Path == "" {
		// query or fragment only
		return Target{Kind: TargetAnchor}, nil
	}
	return keyTarget(Key(u.Path, base)), nil
}

// OnSite reports whether u is an http(s) URL on the corpus site.
func (r *Resolver) OnSite(u *url.URL) bool {
	if r == nil || r.host == "" {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "", "http", "https":
	default:
		return false
	}
	return u.Host != "" && bareHost(u.Hostname()) == r.host
}

// SiteRelative strips the site path prefix from the path of an on-site URL.
func (r *Resolver) SiteRelative(p string) string {
	if r == nil || r.prefix == "" {
		return p
	}
	if rest, ok := strings.CutPrefix(p, r.prefix); ok && (rest == "" || strings.HasPrefix(rest, "/")) {
		return rest
	}
	return p
}

// SitePath returns the path of an absolute on-site href, unchanged.
func (r *Resolver) SitePath(href string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil || u.Host == "" || !r.OnSite(u) {
		return "", false
	}
	return u.Path, true
}

// Key normalizes a slash path into a corpus key. Paths not starting with "/"
// are joined to base first. Traversal above the root is clamped to the root.
func Key(p, base string) string {
	if !strings.HasPrefix(p, "/") && base != "" {
		p = base + "/" + p
	}
	p = path.Clean("/" + p)
	lower := strings.ToLower(p)
	for _, ext := range pageExtensions {
		if strings.HasSuffix(lower, ext) {
			p = p[:len(p)-len(ext)]
			break
		}
	}
	return strings.Trim(p, "/")
}

func keyTarget(key string) Target {
	if key == "" {
		return Target{Kind: TargetAnchor}
	}
	return Target{Kind: TargetInternal, Key: key}
}

func bareHost(h string) string {
	h = strings.ToLower(h)
	return strings.TrimPrefix(h, "www.")
}
