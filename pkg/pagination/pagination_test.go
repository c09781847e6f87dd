package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func parseQuery(t *testing.T, query string) Params {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+query, nil)
	return Parse(c)
}

func TestParseDefaults(t *testing.T) {
	params := parseQuery(t, "")

	assert.Equal(t, 1, params.Page)
	assert.Equal(t, 20, params.Limit)
	assert.Equal(t, 0, params.Offset)
}

func TestParseExplicitValues(t *testing.T) {
	params := parseQuery(t, "page=3&limit=25")

	assert.Equal(t, 3, params.Page)
	assert.Equal(t, 25, params.Limit)
	assert.Equal(t, 50, params.Offset)
}

func TestParseClampsPage(t *testing.T) {
	assert.Equal(t, 1, parseQuery(t, "page=0").Page)
	assert.Equal(t, 1, parseQuery(t, "page=-5").Page)
}

func TestParseClampsLimit(t *testing.T) {
	assert.Equal(t, 20, parseQuery(t, "limit=0").Limit)
	assert.Equal(t, 20, parseQuery(t, "limit=-1").Limit)
	assert.Equal(t, 100, parseQuery(t, "limit=500").Limit)
}

func TestParseNonNumericFallsBack(t *testing.T) {
	params := parseQuery(t, "page=abc&limit=xyz")

	assert.Equal(t, 1, params.Page)
	assert.Equal(t, 20, params.Limit)
}
