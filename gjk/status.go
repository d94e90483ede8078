package gjk

// Status is the outcome of a proximity query.
type Status int

const (
	// StatusNonIntersect: the shapes are separated beyond the contact distance.
	StatusNonIntersect Status = iota
	// StatusMargin: the shapes touch inside their margin shells. The contact
	// is resolved from the separating axis without EPA.
	StatusMargin
	// StatusDepenetration: the shape cores overlap and the penetration
	// must be computed on the full shapes.
	StatusDepenetration
	// StatusContact: a contact has been produced.
	StatusContact
)

func (s Status) String() string {
	switch s {
	case StatusNonIntersect:
		return "NON_INTERSECT"
	case StatusMargin:
		return "MARGIN"
	case StatusDepenetration:
		return "DEPENETRATION"
	case StatusContact:
		return "CONTACT"
	}
	return "UNDEFINED"
}
