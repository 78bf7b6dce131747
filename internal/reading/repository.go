package reading

import (
	"fmt"
	"sync"
	"time"

	"github.com/SlpAus/tarot-reading-backend/pkg/lifecycle"
)

// janitorInterval 是过期会话清扫的周期
const janitorInterval = 5 * time.Minute

// sessionRepository 是reading模块的中央会话仓库。
// 会话是短生命周期的进程内状态：由下一次抽牌替换、被显式清除，
// 或超过TTL后被清扫器回收。
type sessionRepository struct {
	mu sync.RWMutex
	// sessions 按会话ID索引全部存活会话
	sessions map[string]*Session
	// byClient 记录每个客户端当前的会话ID，用于"新抽牌替换旧会话"
	byClient map[string]string
}

// globalSessions 是仓库的私有单例实例
var globalSessions = &sessionRepository{
	sessions: make(map[string]*Session),
	byClient: make(map[string]string),
}

// PutSession 登记一个新会话。
// 同一客户端之前的会话会被立即移除：抽牌之间不保留任何部分状态。
func PutSession(s *Session) {
	globalSessions.mu.Lock()
	defer globalSessions.mu.Unlock()

	if oldID, ok := globalSessions.byClient[s.ClientKey]; ok {
		delete(globalSessions.sessions, oldID)
	}
	globalSessions.sessions[s.ID] = s
	globalSessions.byClient[s.ClientKey] = s.ID
}

// GetSession 按ID取会话
func GetSession(id string) (*Session, error) {
	globalSessions.mu.RLock()
	defer globalSessions.mu.RUnlock()

	s, ok := globalSessions.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// DeleteSession 显式清除一个会话，对应界面上的"清空"动作
func DeleteSession(id string) {
	globalSessions.mu.Lock()
	defer globalSessions.mu.Unlock()

	s, ok := globalSessions.sessions[id]
	if !ok {
		return
	}
	delete(globalSessions.sessions, id)
	if globalSessions.byClient[s.ClientKey] == id {
		delete(globalSessions.byClient, s.ClientKey)
	}
}

// sessionCount 返回当前存活会话数（测试用）
func sessionCount() int {
	globalSessions.mu.RLock()
	defer globalSessions.mu.RUnlock()
	return len(globalSessions.sessions)
}

// evictExpired 移除创建时间早于TTL的会话，返回清除的数量
func evictExpired(ttl time.Duration) int {
	deadline := time.Now().Add(-ttl)

	globalSessions.mu.Lock()
	defer globalSessions.mu.Unlock()

	evicted := 0
	for id, s := range globalSessions.sessions {
		if s.CreatedAt.Before(deadline) {
			delete(globalSessions.sessions, id)
			if globalSessions.byClient[s.ClientKey] == id {
				delete(globalSessions.byClient, s.ClientKey)
			}
			evicted++
		}
	}
	return evicted
}

// StartSessionJanitor 启动后台的过期会话清扫循环
func StartSessionJanitor(handle *lifecycle.Handle, ttl time.Duration) {
	defer handle.Close()

	fmt.Println("会话清扫器已启动。")
	for {
		if err := handle.Sleep(janitorInterval); err != nil {
			fmt.Println("会话清扫器已停止。")
			return
		}
		if evicted := evictExpired(ttl); evicted > 0 {
			fmt.Printf("会话清扫器: 清除了 %d 个过期会话。\n", evicted)
		}
	}
}
