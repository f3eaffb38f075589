package msed

import "github.com/agenthands/kinlink/internal/core/model"

// FamilySet is a growable set of records believed to be siblings. Members
// are keyed by persistent record ID and kept in insertion order.
type FamilySet struct {
	members []model.Record
	index   map[string]struct{}
}

func NewFamilySet(records ...model.Record) *FamilySet {
	f := &FamilySet{index: make(map[string]struct{})}
	f.Add(records...)
	return f
}

// Add inserts records not already present.
func (f *FamilySet) Add(records ...model.Record) {
	for _, r := range records {
		if _, ok := f.index[r.ID()]; ok {
			continue
		}
		f.index[r.ID()] = struct{}{}
		f.members = append(f.members, r)
	}
}

func (f *FamilySet) Contains(id string) bool {
	_, ok := f.index[id]
	return ok
}

// ContainsAny reports whether any of records is a member.
func (f *FamilySet) ContainsAny(records ...model.Record) bool {
	for _, r := range records {
		if f.Contains(r.ID()) {
			return true
		}
	}
	return false
}

func (f *FamilySet) Members() []model.Record {
	return f.members
}

func (f *FamilySet) Len() int {
	return len(f.members)
}

// IDs returns member IDs in insertion order.
func (f *FamilySet) IDs() []string {
	ids := make([]string, len(f.members))
	for i, r := range f.members {
		ids[i] = r.ID()
	}
	return ids
}
