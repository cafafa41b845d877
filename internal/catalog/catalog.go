// Package catalog provides the immutable domain registry used for routing.
package catalog

import (
	"fmt"
	"strings"

	"github.com/civiclab/radca/internal/models"
)

// Catalog is a read-only set of domains, fixed for the process lifetime.
// It is constructed once from configuration and shared by reference; no
// method mutates it, so concurrent use is safe.
type Catalog struct {
	domains []models.Domain
	byID    map[string]models.Domain
}

// New creates a catalog from the given domains. IDs must be unique and
// non-empty, and every domain must carry a description, since descriptions
// are the only signal the router has.
func New(domains []models.Domain) (*Catalog, error) {
	if len(domains) == 0 {
		return nil, fmt.Errorf("catalog requires at least one domain")
	}
	byID := make(map[string]models.Domain, len(domains))
	for _, d := range domains {
		if d.ID == "" || d.Description == "" {
			return nil, fmt.Errorf("domain %q must have an id and a description", d.ID)
		}
		if _, ok := byID[d.ID]; ok {
			return nil, fmt.Errorf("duplicate domain id %q", d.ID)
		}
		byID[d.ID] = d
	}
	copied := make([]models.Domain, len(domains))
	copy(copied, domains)
	return &Catalog{domains: copied, byID: byID}, nil
}

// Domains returns the domains in declaration order.
func (c *Catalog) Domains() []models.Domain {
	out := make([]models.Domain, len(c.domains))
	copy(out, c.domains)
	return out
}

// IDs returns the domain identifiers in declaration order.
func (c *Catalog) IDs() []string {
	out := make([]string, len(c.domains))
	for i, d := range c.domains {
		out[i] = d.ID
	}
	return out
}

// Has reports whether id names a configured domain.
func (c *Catalog) Has(id string) bool {
	_, ok := c.byID[id]
	return ok
}

// Len returns the number of domains.
func (c *Catalog) Len() int {
	return len(c.domains)
}

// Describe renders every domain as "id: description" lines, in declaration
// order. Descriptions are passed through verbatim, never summarized, because
// the routing behavior depends on their exact wording.
func (c *Catalog) Describe() string {
	var b strings.Builder
	for i, d := range c.domains {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(d.ID)
		b.WriteString(": ")
		b.WriteString(d.Description)
	}
	return b.String()
}
