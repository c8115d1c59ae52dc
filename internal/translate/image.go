package translate

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/dgallion1/ditagen/internal/audit"
	"github.com/dgallion1/ditagen/internal/dita"
	"github.com/dgallion1/ditagen/internal/doctree"
)

// Container is the nearest block that holds an image.
type Container int

const (
	ContainerNone Container = iota
	ContainerParagraph
	ContainerListItem
	ContainerTableCell
)

// Placement is how an image is laid out.
type Placement int

const (
	PlacementBlock Placement = iota
	PlacementInline
)

func (p Placement) String() string {
	if p == PlacementInline {
		return dita.PlacementInline
	}
	return dita.PlacementBreak
}

// ImageContext is what the classifier knows about an image's surroundings.
type ImageContext struct {
	Container   Container
	InSpan      bool // wrapped in an inline span
	SiblingText bool // the container holds non-whitespace text besides the image
}

// Classify decides whether an image flows with text or stands alone.
func Classify(ctx ImageContext) Placement {
	if ctx.InSpan {
		return PlacementInline
	}
	switch ctx.Container {
	case ContainerParagraph, ContainerListItem, ContainerTableCell:
		if ctx.SiblingText {
			return PlacementInline
		}
	}
	return PlacementBlock
}

// image returns the output image for n, or nil when it is dropped.
func (d *document) image(n *doctree.Node, ctx ImageContext) *dita.Image {
	src := strings.TrimSpace(n.Src)
	if src == "" {
		d.record(audit.AssetUnembeddable, n.Alt, "image without a source")
		return nil
	}
	if strings.HasPrefix(strings.ToLower(src), "data:") {
		d.record(audit.AssetUnembeddable, abbreviate(src), "data URI")
		return nil
	}

	href, err := d.imagePath(src)
	if err != nil {
		if errors.Is(err, errExternalImage) {
			d.record(audit.AssetUnembeddable, src, "external image")
			return nil
		}
		d.record(audit.AssetPathUnresolvable, src, err.Error())
		href = src
	}

	img := &dita.Image{Href: href, Alt: strings.TrimSpace(n.Alt)}
	if Classify(ctx) == PlacementInline {
		img.Placement = dita.PlacementInline
	} else {
		img.Placement = dita.PlacementBreak
		img.Align = "left"
	}
	return img
}

var errExternalImage = errors.New("external image")

// imagePath re-expresses src, written relative to the source document,
// relative to the output directory. Root-relative and on-site absolute
// sources are taken from the corpus root.
func (d *document) imagePath(src string) (string, error) {
	u, err := url.Parse(src)
	if err != nil {
		return "", fmt.Errorf("parse image path: %w", err)
	}

	p := u.Path
	if u.Scheme != "" || u.Host != "" {
		if !d.Resolver.OnSite(u) {
			return "", errExternalImage
		}
		p = "/" + strings.TrimPrefix(d.Resolver.SiteRelative(p), "/")
	}
	if p == "" {
		return "", errors.New("empty image path")
	}

	var joined string
	if strings.HasPrefix(p, "/") {
		joined = filepath.Join(d.CorpusRoot, filepath.FromSlash(p))
	} else {
		joined = filepath.Join(d.dir, filepath.FromSlash(p))
	}
	abs, err := filepath.Abs(joined)
	if err != nil {
		return "", fmt.Errorf("resolve image path: %w", err)
	}
	out, err := filepath.Abs(d.OutputDir)
	if err != nil {
		return "", fmt.Errorf("resolve output directory: %w", err)
	}
	rel, err := filepath.Rel(out, abs)
	if err != nil {
		return "", fmt.Errorf("relate image path: %w", err)
	}
	return filepath.ToSlash(rel), nil
}

func abbreviate(s string) string {
	const limit = 48
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
