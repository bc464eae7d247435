package core

import "github.com/dkeye/Watch/internal/domain"

type SessionID string

// MemberSession binds domain.Member and its transport endpoint.
// This is what the registry stores and fans out to.
type MemberSession interface {
	ID() SessionID
	Meta() *domain.Member
	Signal() SignalConnection
}

type memberSession struct {
	id     SessionID
	meta   *domain.Member
	signal SignalConnection
}

func NewMemberSession(id SessionID, meta *domain.Member, signal SignalConnection) MemberSession {
	return &memberSession{id: id, meta: meta, signal: signal}
}

func (m *memberSession) ID() SessionID            { return m.id }
func (m *memberSession) Meta() *domain.Member     { return m.meta }
func (m *memberSession) Signal() SignalConnection { return m.signal }
