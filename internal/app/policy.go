package app

import "github.com/dkeye/Watch/internal/core"

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	KickMember
	DropFrame
)

// Policy decides what happens to a member whose send buffer is full.
type Policy interface {
	OnBackPressure(room string, member core.MemberSession) BackpressureAction
}

// SimplePolicy kicks every slow member.
type SimplePolicy struct{}

func (SimplePolicy) OnBackPressure(room string, member core.MemberSession) BackpressureAction {
	return KickMember
}

// TolerantPolicy only drops the frame.
type TolerantPolicy struct{}

func (TolerantPolicy) OnBackPressure(room string, member core.MemberSession) BackpressureAction {
	return DropFrame
}

// PolicyFor maps a configured policy name to its implementation.
// Unknown names fall back to SimplePolicy.
func PolicyFor(name string) Policy {
	switch name {
	case "tolerant":
		return TolerantPolicy{}
	default:
		return SimplePolicy{}
	}
}
