package access

// Verdict is the terminal outcome of one decision. The caller maps it
// to a continuation, a 429, or a 403; nothing here serializes bodies.
type Verdict string

const (
	VerdictAllow       Verdict = "allow"
	VerdictRateLimited Verdict = "rate_limited"
	VerdictBlacklisted Verdict = "blacklisted"
)

func (v Verdict) String() string {
	return string(v)
}

// ClassState is the guard's classification of an identity before any
// counting happens.
type ClassState string

const (
	ClassBlocked  ClassState = "blocked"
	ClassBypassed ClassState = "bypassed"
	ClassNormal   ClassState = "normal"
)

// Classification carries the guard's state plus the whitelist
// multiplier (1.0 when no whitelist entry matched).
type Classification struct {
	State      ClassState
	Multiplier float64
}

func Blocked() Classification {
	return Classification{State: ClassBlocked, Multiplier: 1.0}
}

func Bypassed(multiplier float64) Classification {
	return Classification{State: ClassBypassed, Multiplier: multiplier}
}

func Normal(multiplier float64) Classification {
	return Classification{State: ClassNormal, Multiplier: multiplier}
}
