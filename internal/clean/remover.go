package clean

// Remover strips noise from sentence pairs using an ordered rule chain.
// A Remover is immutable and safe for concurrent use.
type Remover struct {
	rules []Rule
}

// NewRemover returns a Remover for the given chain. A nil chain selects
// DefaultRules.
func NewRemover(rules []Rule) *Remover {
	if rules == nil {
		rules = DefaultRules()
	}
	cp := make([]Rule, len(rules))
	copy(cp, rules)
	return &Remover{rules: cp}
}

// Rules returns a copy of the chain.
func (r *Remover) Rules() []Rule {
	cp := make([]Rule, len(r.rules))
	copy(cp, r.rules)
	return cp
}

// Clean returns the cleaned pair. The chain is reapplied until neither side
// changes, so Clean(Clean(x)) == Clean(x).
func (r *Remover) Clean(en, ja string) (string, string) {
	en, ja = r.apply(en, English), r.apply(ja, Japanese)
	for n := passLimit(en, ja); n > 0; n-- {
		nen := r.apply(en, English)
		nja := r.apply(ja, Japanese)
		if nen == en && nja == ja {
			break
		}
		en, ja = nen, nja
	}
	return en, ja
}

// CleanSentence runs the chain for one side only.
func (r *Remover) CleanSentence(s string, side Side) string {
	s = r.apply(s, side)
	for n := passLimit(s); n > 0; n-- {
		next := r.apply(s, side)
		if next == s {
			break
		}
		s = next
	}
	return s
}

// passLimit bounds the passes after the first. From then on each default
// rule either deletes bytes or turns a tab or CR into a space, and nothing
// brings those back, so every pass that changes the text shortens it or
// happens once. Removing one artifact can expose another, which is why the
// bound grows with the input. Only a custom chain that never settles reaches
// it.
func passLimit(sides ...string) int {
	n := 2
	for _, s := range sides {
		n += len(s)
	}
	return n
}

func (r *Remover) apply(s string, side Side) string {
	for _, rule := range r.rules {
		if rule.Side&side == 0 {
			continue
		}
		s = rule.Apply(s)
	}
	return s
}
