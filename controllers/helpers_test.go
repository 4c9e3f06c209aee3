package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"myhotel/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var out map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func TestParseIDRejectsBadValues(t *testing.T) {
	r := gin.New()
	r.GET("/things/:id", func(c *gin.Context) {
		getRecord(c, zap.NewNop(), func(_ context.Context, id uint) (gin.H, error) {
			return gin.H{"id": id}, nil
		})
	})

	for _, raw := range []string{"0", "abc", "-4"} {
		w, body := serve(r, http.MethodGet, "/things/"+raw, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, raw)
		assert.Equal(t, "invalid_id", body["code"], raw)
	}

	w, body := serve(r, http.MethodGet, "/things/17", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]interface{}{"id": float64(17)}, body["data"])
}

func TestListRecordsPassesMode(t *testing.T) {
	var got services.QueryMode
	r := gin.New()
	r.GET("/things", func(c *gin.Context) {
		listRecords(c, zap.NewNop(), func(_ context.Context, mode services.QueryMode) ([]string, error) {
			got = mode
			return []string{"a"}, nil
		})
	})

	w, _ := serve(r, http.MethodGet, "/things?mode=deleted_only", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, services.QueryDeletedOnly, got)

	w, body := serve(r, http.MethodGet, "/things?mode=everything", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_query_mode", body["code"])
}

func TestCreateRecordEchoesFormDataOnFailure(t *testing.T) {
	type input struct {
		Name string `json:"name"`
	}
	r := gin.New()
	r.POST("/things", func(c *gin.Context) {
		createRecord(c, zap.NewNop(), func(_ context.Context, in input) (input, error) {
			if in.Name == "taken" {
				return input{}, services.Conflict("name_taken", "That name is taken.")
			}
			return in, nil
		})
	})

	w, body := serve(r, http.MethodPost, "/things", `{"name":"taken"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "name_taken", body["code"])
	assert.Equal(t, map[string]interface{}{"name": "taken"}, body["form_data"])

	w, _ = serve(r, http.MethodPost, "/things", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = serve(r, http.MethodPost, "/things", `{"name":"fresh"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestQueryHelpers(t *testing.T) {
	r := gin.New()
	r.GET("/q", func(c *gin.Context) {
		limit, err := queryInt(c, "limit", 50)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"field": "limit"})
			return
		}
		from, err := queryDate(c, "from")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"field": "from"})
			return
		}
		room, err := queryUint(c, "room_id")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"field": "room_id"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"limit": limit, "has_from": from != nil, "room_id": room})
	})

	w, body := serve(r, http.MethodGet, "/q", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(50), body["limit"])
	assert.Equal(t, false, body["has_from"])

	w, body = serve(r, http.MethodGet, "/q?limit=5&from=2025-03-01&room_id=4", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(5), body["limit"])
	assert.Equal(t, true, body["has_from"])
	assert.Equal(t, float64(4), body["room_id"])

	for q, field := range map[string]string{"limit=-1": "limit", "from=03/01/2025": "from", "room_id=x": "room_id"} {
		w, body = serve(r, http.MethodGet, "/q?"+q, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
		assert.Equal(t, field, body["field"], q)
	}
}
