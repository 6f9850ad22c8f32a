package detect

// Classification is the outcome of running the rule table over a text.
type Classification struct {
	Kind     Kind
	Rule     string
	Reason   string
	Evidence *Evidence
}

// Classify evaluates the rules in order and stops at the first match.
func Classify(text string) Classification {
	ev := NewEvidence()
	for _, r := range rules {
		ok, reason := r.match(text)
		ev.Add(Hint{Rule: r.name, Matched: ok, Reason: reason})
		if ok {
			return Classification{Kind: r.kind, Rule: r.name, Reason: reason, Evidence: ev}
		}
	}
	return Classification{Kind: Unknown, Rule: "fallthrough", Reason: "no rule matched", Evidence: ev}
}

// Detect returns only the kind of text.
func Detect(text string) Kind {
	return Classify(text).Kind
}
