package policy

// RoleAdmin is the role that may act on records it does not own.
const RoleAdmin = "admin"

var ownerOrAdmin = Or(
	Eq(Load("requester.id"), Load("owner.id")),
	Eq(Load("requester.role"), Const(RoleAdmin)),
)

// CatPolicy governs access to cats. Reads are public; updates and deletes
// belong to the owner and to admins.
var CatPolicy = Policy{
	Statements: map[Action][]Stmt{
		ActionUpdate: {{Emit: "allow", Condition: ownerOrAdmin}},
		ActionDelete: {{Emit: "allow", Condition: ownerOrAdmin}},
	},
	Defaults: map[Action]bool{
		ActionRead:   true,
		ActionUpdate: false,
		ActionDelete: false,
	},
}

// Decide evaluates CatPolicy. A nil or anonymous requester is only ever allowed to read.
func Decide(requester *Subject, owner Subject, action Action) Conclusion {
	return DecideWith(CatPolicy, requester, owner, action)
}

// DecideWith is Decide against an arbitrary policy. Unknown actions are denied.
func DecideWith(p Policy, requester *Subject, owner Subject, action Action) Conclusion {
	defaultAllow := p.Defaults[action]
	if requester == nil || requester.ID == "" {
		if defaultAllow {
			return ALLOW
		}
		return DENY
	}

	ctx := RequestContext{
		Requester: requester.toMap(),
		Owner:     owner.toMap(),
	}
	return Summarize(EvaluatePolicy(p, ctx, action), defaultAllow)
}
