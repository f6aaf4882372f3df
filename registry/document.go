package registry

import (
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/trackd/ModuleFast/internal/errs"
	"github.com/trackd/ModuleFast/version"
)

// Dependency is one entry of a catalog entry's dependencyGroups[].dependencies[].
type Dependency struct {
	ID    string
	Range string
}

// CatalogEntry is the per-version metadata inside a registration leaf. The
// resolver treats PackageContent as one of its attributes, even though on
// the wire it is a sibling field of catalogEntry within the leaf (§3.4).
type CatalogEntry struct {
	ID             string
	Version        string
	Dependencies   []Dependency
	PackageContent string
}

// Leaf is a per-version record inside a registration page.
type Leaf struct {
	CatalogEntry CatalogEntry
}

// Page is a contiguous version bucket in a registration index. Leaves is nil
// when the page is not Inlined, i.e. it must be fetched by ID.
type Page struct {
	ID      string
	Lower   version.SemVer
	Upper   version.SemVer
	Inlined bool
	Leaves  []Leaf
}

// Index is a parsed registration index document.
type Index struct {
	Count int
	Pages []Page
}

func parseIndex(doc gjson.Result) (Index, error) {
	items := doc.Get("items")
	if !items.Exists() || !items.IsArray() {
		return Index{}, fmt.Errorf("%w: registration index is missing an items array", errs.ErrInvalidRegistryResponse)
	}
	raw := items.Array()
	pages := make([]Page, 0, len(raw))
	for _, it := range raw {
		p, err := parsePage(it)
		if err != nil {
			return Index{}, err
		}
		pages = append(pages, p)
	}
	count := int(doc.Get("count").Int())
	if count == 0 || len(pages) == 0 {
		return Index{}, fmt.Errorf("%w: registration index has no pages", errs.ErrInvalidRegistryResponse)
	}
	return Index{Count: count, Pages: pages}, nil
}

func parsePage(it gjson.Result) (Page, error) {
	lowerStr := it.Get("lower").String()
	upperStr := it.Get("upper").String()
	if lowerStr == "" || upperStr == "" {
		return Page{}, fmt.Errorf("%w: registration page missing lower/upper bounds", errs.ErrInvalidRegistryResponse)
	}
	lower, err := version.ParseEither(lowerStr)
	if err != nil {
		return Page{}, fmt.Errorf("%w: page lower bound %q: %v", errs.ErrInvalidRegistryResponse, lowerStr, err)
	}
	upper, err := version.ParseEither(upperStr)
	if err != nil {
		return Page{}, fmt.Errorf("%w: page upper bound %q: %v", errs.ErrInvalidRegistryResponse, upperStr, err)
	}

	p := Page{ID: it.Get("@id").String(), Lower: lower, Upper: upper}

	leaves := it.Get("items")
	if leaves.Exists() && leaves.IsArray() {
		p.Inlined = true
		for _, lj := range leaves.Array() {
			leaf, err := parseLeaf(lj)
			if err != nil {
				return Page{}, err
			}
			p.Leaves = append(p.Leaves, leaf)
		}
	}
	return p, nil
}

func parseLeaf(it gjson.Result) (Leaf, error) {
	ce := it.Get("catalogEntry")
	if !ce.Exists() {
		return Leaf{}, fmt.Errorf("%w: registration leaf missing catalogEntry", errs.ErrInvalidRegistryResponse)
	}
	entry := CatalogEntry{
		ID:      ce.Get("id").String(),
		Version: ce.Get("version").String(),
	}
	for _, grp := range ce.Get("dependencyGroups").Array() {
		for _, d := range grp.Get("dependencies").Array() {
			entry.Dependencies = append(entry.Dependencies, Dependency{
				ID:    d.Get("id").String(),
				Range: d.Get("range").String(),
			})
		}
	}
	// Attach packageContent, a sibling field of catalogEntry on the wire, as
	// an attribute of the catalog entry itself (§3.4).
	entry.PackageContent = it.Get("packageContent").String()

	return Leaf{CatalogEntry: entry}, nil
}
