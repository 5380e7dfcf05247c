package policy

type Conclusion int

const (
	UNSET Conclusion = iota
	ALLOW
	DENY
)

func ParseConclusion(s string) Conclusion {
	switch s {
	case "allow":
		return ALLOW
	case "deny":
		return DENY
	default:
		return UNSET
	}
}

func (c Conclusion) String() string {
	switch c {
	case ALLOW:
		return "allow"
	case DENY:
		return "deny"
	default:
		return "unset"
	}
}

// Or merges two conclusions. DENY wins over ALLOW.
func (c Conclusion) Or(other Conclusion) Conclusion {
	if c == UNSET {
		return other
	}
	if other == UNSET {
		return c
	}
	if c == DENY || other == DENY {
		return DENY
	}
	return ALLOW
}

// Action is what a subject wants to do with a cat.
type Action string

const (
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Subject is the minimal view of a user the policy needs.
type Subject struct {
	ID   string
	Role string
}

func (s Subject) toMap() map[string]any {
	return map[string]any{
		"id":   s.ID,
		"role": s.Role,
	}
}

type RequestContext struct {
	Requester map[string]any `json:"requester"`
	Owner     map[string]any `json:"owner"`
	Params    map[string]any `json:"params"`
}

type Policy struct {
	Statements map[Action][]Stmt `json:"statements"`
	Defaults   map[Action]bool   `json:"defaults"`
}

type Stmt struct {
	Emit      string `json:"emit"`
	Condition Expr   `json:"condition"`
}

type Expr struct {
	Operator string `json:"op"`
	Args     []Expr `json:"args"`
	Const    any    `json:"const,omitempty"`
}

type EvalResult struct {
	Operator string       `json:"op"`
	Args     []EvalResult `json:"args"`
	Result   any          `json:"result"`
	Error    string       `json:"error"`
}
