package entities

// NeedKind identifies one accessibility need the extractor can detect in a
// free-text query.
type NeedKind string

const (
	NeedGroundFloor NeedKind = "ground_floor"
	NeedOKUToilets  NeedKind = "oku_toilets"
	NeedPetArea     NeedKind = "pet_area"
	NeedFamilyRoom  NeedKind = "family_room"
)

// AllNeedKinds returns every need kind in canonical order. Iteration over
// NeedFlags goes through this list so output ordering is deterministic.
func AllNeedKinds() []NeedKind {
	return []NeedKind{NeedGroundFloor, NeedOKUToilets, NeedPetArea, NeedFamilyRoom}
}

// NeedFlags maps each need kind to whether the query expressed it. The
// extractor always populates all four kinds.
type NeedFlags map[NeedKind]bool

// Any reports whether at least one need was detected.
func (f NeedFlags) Any() bool {
	for _, set := range f {
		if set {
			return true
		}
	}
	return false
}

// Active returns the detected need kinds in canonical order.
func (f NeedFlags) Active() []NeedKind {
	var active []NeedKind
	for _, kind := range AllNeedKinds() {
		if f[kind] {
			active = append(active, kind)
		}
	}
	return active
}

// NeedVerdict classifies how a center's capability tags resolve one need.
type NeedVerdict string

const (
	VerdictMatched NeedVerdict = "MATCHED"
	VerdictFailed  NeedVerdict = "FAILED"
	VerdictUnknown NeedVerdict = "UNKNOWN"
)

// NeedAssessment pairs a need kind with its verdict for one center. Reasons
// shown to users are rendered from these at the response boundary.
type NeedAssessment struct {
	Kind    NeedKind    `json:"kind"`
	Verdict NeedVerdict `json:"verdict"`
}
