package model

// LeftoversID is the sentinel submitted in place of a category id to open
// the bucket of associative items left unassigned.
const LeftoversID = "leftovers"

// Category is an associative header with the members that follow it.
type Category struct {
	Header  AssociativeItem
	Members []AssociativeItem
}

// PartitionByHeader splits a flat item list into categories. Each member is
// attached to the nearest preceding header; members before the first header
// are dropped.
func PartitionByHeader(items []AssociativeItem) []Category {
	var out []Category
	for _, item := range items {
		if item.Category {
			out = append(out, Category{Header: item})
			continue
		}
		if len(out) == 0 {
			continue
		}
		last := &out[len(out)-1]
		last.Members = append(last.Members, item)
	}
	return out
}

// Contains reports whether the category has a member with the given id.
func (c Category) Contains(id string) bool {
	for _, m := range c.Members {
		if m.ID == id {
			return true
		}
	}
	return false
}
