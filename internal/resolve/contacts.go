package resolve

import (
	"strconv"

	"github.com/giftology/radar/internal/xmltree"
	"github.com/giftology/radar/pkg/schema"
)

var (
	nameKeys   = []string{"Name", "name", "ContactName", "contactName", "FullName"}
	serialKeys = []string{"Serial", "serial", "ContactSerial", "contactSerial"}
)

func toContact(n any) schema.Contact {
	return schema.Contact{
		Name:   text(n, nameKeys...),
		Serial: integer(n, serialKeys...),
		Status: text(n, "Status", "status"),
		Phone:  text(n, "Phone", "phone"),
	}
}

// ContactExtractors is the priority order for GetContactList: the documented
// Selections.Contact path and its casing variants, then a bounded search of
// the whole tree for record-like nodes.
func ContactExtractors() []Extractor[schema.Contact] {
	ex := pathExtractors("Contact", toContact)
	return append(ex, Extractor[schema.Contact]{
		Name: "deep-search",
		Find: searchContacts,
	})
}

// Contacts resolves a GetContactList payload.
func Contacts(tree map[string]any) []schema.Contact {
	out, _ := FirstMatch(tree, ContactExtractors()...)
	return out
}

// recordLike reports whether a node carries a name- or serial-like key.
func recordLike(n any) bool {
	return xmltree.Has(n, nameKeys...) || xmltree.Has(n, serialKeys...)
}

// searchContacts walks the tree looking for record-like objects, either on
// their own or as elements of a list, and unions what it finds. Records are
// de-duplicated by serial, or by name when the serial is missing.
func searchContacts(tree map[string]any) []schema.Contact {
	var out []schema.Contact
	seen := map[string]bool{}

	add := func(n any) {
		c := toContact(n)
		if c.Name == "" && c.Serial == 0 {
			return
		}
		id := "name:" + c.Name
		if c.Serial != 0 {
			id = "serial:" + strconv.Itoa(c.Serial)
		}
		if seen[id] {
			return
		}
		seen[id] = true
		out = append(out, c)
	}

	var walk func(n any, depth int)
	walk = func(n any, depth int) {
		if depth > MaxSearchDepth {
			return
		}
		switch v := n.(type) {
		case []any:
			for _, el := range v {
				walk(el, depth+1)
			}
		default:
			m := xmltree.AsMap(v)
			if m == nil {
				return
			}
			if recordLike(m) {
				add(m)
				return
			}
			for _, k := range xmltree.Keys(m) {
				walk(m[k], depth+1)
			}
		}
	}

	for _, k := range xmltree.Keys(tree) {
		walk(tree[k], 1)
	}
	return out
}
