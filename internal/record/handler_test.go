package record

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (s *RecordSuite) router() *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(s.registry, s.addon, s.repo, zap.NewNop())
	r := gin.New()
	r.GET("/records", h.ListAllRecords)
	r.GET("/forms/:alias/records", h.ListFormRecords)
	r.GET("/forms/:alias/records/:id", h.GetFormRecord)
	return r
}

func (s *RecordSuite) get(path string, out any) int {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	s.router().ServeHTTP(w, req)
	if out != nil && w.Code == http.StatusOK {
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), out))
	}
	return w.Code
}

func (s *RecordSuite) TestHandlerListFormRecords() {
	s.seed()

	var resp ListResponse
	s.Require().Equal(http.StatusOK, s.get("/forms/contact/records?per_page=2", &resp))
	s.Equal(int64(3), resp.Total)
	s.Equal(2, resp.PerPage)
	s.Require().Len(resp.Items, 2)
	s.Equal("c3", resp.Items[0].Record.Session)
	s.Require().NotNil(resp.Table)
	s.Len(resp.Table.Columns, 3)
	s.Require().Len(resp.Rows, 2)
	s.Equal("c3@b.com", resp.Rows[0]["email"])
}

func (s *RecordSuite) TestHandlerListAllRecords() {
	s.seed()

	var resp ListResponse
	s.Require().Equal(http.StatusOK, s.get("/records", &resp))
	s.Equal(int64(4), resp.Total)
	s.Nil(resp.Table)
	s.Equal("n1", resp.Items[0].Record.Session)
}

func (s *RecordSuite) TestHandlerUnknownOrDisabledForm() {
	s.Equal(http.StatusNotFound, s.get("/forms/missing/records", nil))
	s.Equal(http.StatusNotFound, s.get("/forms/plain/records", nil))
}

func (s *RecordSuite) TestHandlerGetFormRecord() {
	s.seed()
	var contactID, newsletterID uint64
	for _, rec := range s.records() {
		if rec.Session == "c1" {
			contactID = rec.ID
		}
		if rec.Session == "n1" {
			newsletterID = rec.ID
		}
	}

	var resp RecordResponse
	s.Require().Equal(http.StatusOK, s.get(fmt.Sprintf("/forms/contact/records/%d", contactID), &resp))
	s.Equal("c1", resp.Record.Session)
	s.Require().NotEmpty(resp.Preview)
	s.Equal("email", resp.Preview[0].Slug)
	s.Equal([]string{"c1@b.com"}, resp.Preview[0].Values)

	s.Equal(http.StatusBadRequest, s.get("/forms/contact/records/abc", nil))
	s.Equal(http.StatusNotFound, s.get("/forms/contact/records/9999", nil))
	// 属于其它表单的记录视为不存在
	s.Equal(http.StatusNotFound, s.get(fmt.Sprintf("/forms/contact/records/%d", newsletterID), nil))
}
