// Package flash 实现重定向后显示一次的提示消息
//
// 浏览器只持有一个随机ID(cookie)，消息本身存放在Store中：
// 启用Redis时是redis.FlashStore，否则是进程内的MemoryStore。
package flash

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/xiebiao/relatorio/pkg/logger"
)

// 消息类别，与index.html中的样式对应
const (
	CategorySuccess = "success"
	CategoryError   = "error"
)

const contextKey = "flash_id"

// Store 消息存储
// Pop取出全部消息并删除
type Store interface {
	Push(ctx context.Context, id string, payload string) error
	Pop(ctx context.Context, id string) ([]string, error)
}

// Message 一条提示消息
type Message struct {
	Category string `json:"category"`
	Text     string `json:"text"`
}

// Manager 读写当前请求的提示消息
type Manager struct {
	store      Store
	cookieName string
	ttl        time.Duration
}

// NewManager 创建消息管理器
func NewManager(store Store, cookieName string, ttl time.Duration) *Manager {
	return &Manager{store: store, cookieName: cookieName, ttl: ttl}
}

// Add 追加一条消息
// 提示消息是尽力而为的：存储失败只记日志，不影响本次请求
func (m *Manager) Add(c *gin.Context, category, text string) {
	id := m.sessionID(c)

	payload, err := json.Marshal(Message{Category: category, Text: text})
	if err != nil {
		logger.FromContext(c.Request.Context()).Error().Err(err).Msg("编码提示消息失败")
		return
	}
	if err := m.store.Push(c.Request.Context(), id, string(payload)); err != nil {
		logger.FromContext(c.Request.Context()).Error().Err(err).Str("flash_id", id).Msg("保存提示消息失败")
	}
}

// Success 追加一条成功消息
func (m *Manager) Success(c *gin.Context, text string) {
	m.Add(c, CategorySuccess, text)
}

// Error 追加一条错误消息
func (m *Manager) Error(c *gin.Context, text string) {
	m.Add(c, CategoryError, text)
}

// Pop 取出并清空当前浏览器的全部消息
func (m *Manager) Pop(c *gin.Context) []Message {
	id, err := c.Cookie(m.cookieName)
	if err != nil || id == "" {
		return nil
	}

	payloads, err := m.store.Pop(c.Request.Context(), id)
	if err != nil {
		logger.FromContext(c.Request.Context()).Error().Err(err).Str("flash_id", id).Msg("读取提示消息失败")
		return nil
	}

	messages := make([]Message, 0, len(payloads))
	for _, p := range payloads {
		var msg Message
		if err := json.Unmarshal([]byte(p), &msg); err != nil {
			continue
		}
		messages = append(messages, msg)
	}
	return messages
}

// sessionID 取cookie中的ID，没有则生成并写回cookie
// 新生成的ID同时记在gin.Context里，同一请求内多次Add共用一个ID
func (m *Manager) sessionID(c *gin.Context) string {
	if id := c.GetString(contextKey); id != "" {
		return id
	}
	if id, err := c.Cookie(m.cookieName); err == nil && id != "" {
		return id
	}
	id := uuid.New().String()
	c.Set(contextKey, id)
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.cookieName, id, int(m.ttl.Seconds()), "/", "", false, true)
	return id
}
