package catalog

// Member identifies a property read on a dictionary value.
type Member uint8

const (
	MemberUnknown Member = iota
	Keys
	Values
	Count
	IsEmpty
)

var memberNames = map[Member]string{
	Keys:    "Keys",
	Values:  "Values",
	Count:   "Count",
	IsEmpty: "IsEmpty",
}

// ParseMember resolves a member name. Unknown names yield MemberUnknown.
func ParseMember(name string) Member {
	for m, n := range memberNames {
		if n == name {
			return m
		}
	}
	return MemberUnknown
}

// Members returns the declared members in declaration order.
func Members() []Member {
	return []Member{Keys, Values, Count, IsEmpty}
}

func (m Member) String() string {
	if n, ok := memberNames[m]; ok {
		return n
	}
	return "unknown"
}
