package exposure

// RiskVerdict is the combined early-warning outcome of a scenario.
type RiskVerdict string

const (
	VerdictNoRisk        RiskVerdict = "NO_RISK"
	VerdictPotentialRisk RiskVerdict = "POTENTIAL_RISK"
)

func (v RiskVerdict) String() string { return string(v) }

// Label renders the verdict for display.
func (v RiskVerdict) Label() string {
	if v == VerdictPotentialRisk {
		return "Potential Risk"
	}
	return "No Risk"
}

// IsRisk reports whether v is VerdictPotentialRisk.
func (v RiskVerdict) IsRisk() bool { return v == VerdictPotentialRisk }

// CombineVerdict applies the fixed early-warning rule: a potential risk
// exists when MDA shows any response (inhibition or stimulation) and ROS
// shows stimulation.  Classes are compared by exact equality.
func CombineVerdict(mdaClass, rosClass int) RiskVerdict {
	mdaResponds := mdaClass == ClassInhibition || mdaClass == ClassStimulation
	if mdaResponds && rosClass == ClassStimulation {
		return VerdictPotentialRisk
	}
	return VerdictNoRisk
}

//Personal.AI order the ending
