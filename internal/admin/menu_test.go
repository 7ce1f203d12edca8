package admin

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMenuTree(t *testing.T) {
	m := NewMenu()
	m.Add(Entry{Slug: "form_addon_record", Label: "Formulaires", Icon: "dashicons-clipboard"})
	m.Add(Entry{Slug: "contact", Label: "Contacts", Parent: "form_addon_record"})
	m.Add(Entry{Slug: "contact", Label: "Demandes", Parent: "form_addon_record"})
	m.Add(Entry{Slug: "orphan", Label: "Orphan", Parent: "missing"})

	tree := m.Tree()
	require.Len(t, tree, 1)
	assert.Equal(t, "Formulaires", tree[0].Label)
	require.Len(t, tree[0].Children, 1)
	assert.Equal(t, "Demandes", tree[0].Children[0].Label)
	assert.Len(t, m.Entries(), 3)
}

func TestGetMenu(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMenu()
	m.Add(Entry{Slug: "form_addon_record", Label: "Formulaires"})

	r := gin.New()
	r.GET("/api/admin/menu", m.GetMenu)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/admin/menu", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var nodes []MenuNode
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &nodes))
	require.Len(t, nodes, 1)
	assert.Equal(t, "form_addon_record", nodes[0].Slug)
}
