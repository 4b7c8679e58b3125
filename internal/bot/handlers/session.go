package handlers

import "sync"

type dialogState int

const (
	stateIdle dialogState = iota
	stateAwaitAdd
	stateAwaitDelete
	stateAwaitEditSelect
	stateAwaitEditInput
)

func (s dialogState) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateAwaitAdd:
		return "await_add"
	case stateAwaitDelete:
		return "await_delete"
	case stateAwaitEditSelect:
		return "await_edit_select"
	case stateAwaitEditInput:
		return "await_edit_input"
	}
	return "unknown"
}

// session is one user's position in a multi-step command. taskID is only
// meaningful in stateAwaitEditInput; its listing position is looked up again
// when the edit is applied.
type session struct {
	state  dialogState
	taskID int64
}

type sessions struct {
	mu   sync.Mutex
	byID map[int64]session
}

func newSessions() *sessions {
	return &sessions{byID: make(map[int64]session)}
}

func (s *sessions) get(owner int64) session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.byID[owner]
}

func (s *sessions) set(owner int64, sess session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess.state == stateIdle {
		delete(s.byID, owner)
		return
	}
	s.byID[owner] = sess
}
