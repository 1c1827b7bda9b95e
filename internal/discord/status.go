package discord

import "sync/atomic"

// Identity 机器人登录后的身份
type Identity struct {
	UserName string
}

// Status 进程级就绪状态，只由 Bot 的网关事件处理函数写入
// identity 在第一次 Ready 后保留；断线只清除 connected，Resume 后恢复
type Status struct {
	identity  atomic.Pointer[Identity]
	connected atomic.Bool
}

func NewStatus() *Status {
	return &Status{}
}

func (s *Status) MarkReady(userName string) {
	s.identity.Store(&Identity{UserName: userName})
	s.connected.Store(true)
}

// MarkResumed 会话恢复后重新就绪；从未 Ready 过时无效
func (s *Status) MarkResumed() {
	if s.identity.Load() != nil {
		s.connected.Store(true)
	}
}

// MarkDisconnected 连接断开后回到未就绪
func (s *Status) MarkDisconnected() {
	s.connected.Store(false)
}

func (s *Status) Ready() bool {
	return s.connected.Load() && s.identity.Load() != nil
}

// UserName 返回机器人用户名，未就绪时 ok 为 false
func (s *Status) UserName() (name string, ok bool) {
	if !s.Ready() {
		return "", false
	}
	return s.identity.Load().UserName, true
}
