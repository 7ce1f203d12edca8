package admin

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
)

// Entry 是后台菜单中的一项，Parent 为空表示顶级菜单
type Entry struct {
	Slug   string `json:"slug"`
	Label  string `json:"label"`
	Icon   string `json:"icon,omitempty"`
	Parent string `json:"parent,omitempty"`
}

// Menu 保存插件注册的后台菜单，按注册顺序输出
type Menu struct {
	mu      sync.RWMutex
	entries []Entry
}

func NewMenu() *Menu {
	return &Menu{}
}

// Add 注册菜单项，相同 slug 的项会被替换
func (m *Menu) Add(e Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.entries {
		if m.entries[i].Slug == e.Slug {
			m.entries[i] = e
			return
		}
	}
	m.entries = append(m.entries, e)
}

// Entries 返回所有菜单项的副本
func (m *Menu) Entries() []Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Entry(nil), m.entries...)
}

// MenuNode 是菜单树的一个节点
type MenuNode struct {
	Entry
	Children []Entry `json:"children,omitempty"`
}

// Tree 将菜单组装成两级树，父菜单不存在的子项被忽略
func (m *Menu) Tree() []MenuNode {
	entries := m.Entries()
	nodes := make([]MenuNode, 0)
	index := make(map[string]int)
	for _, e := range entries {
		if e.Parent == "" {
			index[e.Slug] = len(nodes)
			nodes = append(nodes, MenuNode{Entry: e})
		}
	}
	for _, e := range entries {
		if e.Parent == "" {
			continue
		}
		if i, ok := index[e.Parent]; ok {
			nodes[i].Children = append(nodes[i].Children, e)
		}
	}
	return nodes
}

// GetMenu 返回后台菜单树
func (m *Menu) GetMenu(c *gin.Context) {
	c.JSON(http.StatusOK, m.Tree())
}
