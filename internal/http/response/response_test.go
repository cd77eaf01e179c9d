package response

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func recorder() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	return c, w
}

func TestRespondListEncodesNilAsEmpty(t *testing.T) {
	c, w := recorder()
	var rows []string
	RespondList(c, rows)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())

	c, w = recorder()
	RespondList(c, []int{1, 2})
	assert.Equal(t, "[1,2]", w.Body.String())
}

func TestRespondError(t *testing.T) {
	c, w := recorder()
	RespondError(c, http.StatusNotFound, "not_found", errors.New("child not found"))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":{"message":"child not found","code":"not_found"}}`, w.Body.String())

	c, w = recorder()
	RespondError(c, http.StatusServiceUnavailable, "", nil)
	assert.JSONEq(t, `{"error":{"message":"Service Unavailable"}}`, w.Body.String())
}

func TestRespondStatuses(t *testing.T) {
	c, w := recorder()
	RespondCreated(c, gin.H{"id": 3})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"id":3}`, w.Body.String())

	c, w = recorder()
	RespondNoContent(c)
	c.Writer.WriteHeaderNow()
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}
