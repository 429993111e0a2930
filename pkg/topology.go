package pdsp

// Topology is the interaction class of an event derived from its truth.
type Topology int

const (
	TopoUnknown       Topology = -1
	TopoNoPion        Topology = 0
	TopoSinglePi0     Topology = 1
	TopoMultiPion     Topology = 2
	TopoNoInteraction Topology = 3

	// NTopologies counts the trainable classes (0..3).
	NTopologies = 4
)

const (
	PDGPiPlus   = 211
	PDGMuonPlus = -13
)

func (t Topology) String() string {
	switch t {
	case TopoUnknown:
		return "unknown"
	case TopoNoPion:
		return "no-pion"
	case TopoSinglePi0:
		return "single-pi0"
	case TopoMultiPion:
		return "multi-pion"
	case TopoNoInteraction:
		return "no-interaction"
	default:
		return "invalid"
	}
}

// Trainable reports whether t can be used as a one-hot class index.
func (t Topology) Trainable() bool {
	return t >= 0 && t < NTopologies
}

// IsSignalPDG reports whether the beam particle is one of the studied species.
func IsSignalPDG(pdg int32) bool {
	return pdg == PDGPiPlus || pdg == PDGMuonPlus
}

// Classify maps the truth of an event to its topology. The first matching
// rule wins.
func Classify(pdg int32, interacted bool, nPiPlus, nPiMinus, nPi0 int32) Topology {
	switch {
	case !IsSignalPDG(pdg):
		return TopoUnknown
	case !interacted:
		return TopoNoInteraction
	case nPiPlus == 0 && nPiMinus == 0 && nPi0 == 0:
		return TopoNoPion
	case nPiPlus == 0 && nPiMinus == 0 && nPi0 == 1:
		return TopoSinglePi0
	default:
		return TopoMultiPion
	}
}

func ClassifyTruth(t Truth) Topology {
	return Classify(t.PDG, t.Interacted, t.NPiPlus, t.NPiMinus, t.NPi0)
}
