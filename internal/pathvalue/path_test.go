package pathvalue

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsIntegerTyped(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/x:int", true},
		{"/x:intvector", true},
		{"/a/b/c:int", true},
		{"/x", false},
		{"/x:integer", false},
		{"/x:int/y", false},
		{"/xint", false},
		{"/x:alias", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, IsIntegerTyped(tt.path))
		})
	}
}

func TestRoutingKey(t *testing.T) {
	assert.Equal(t, "/Keys/", RoutingKey("/Keys:alias"))
	assert.Equal(t, "/a/b/", RoutingKey("/a/b:alias"))
	assert.Equal(t, "/a/b", RoutingKey("/a/b"))
	assert.Equal(t, "/a:aliasx", RoutingKey("/a:aliasx"))
}

func TestSegments(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c:int"}, Segments("/a/b/c:int"))
	assert.Equal(t, []string{"zone", `"Africa/Abidjan"`, "ec"}, Segments(`/zone/"Africa/Abidjan"/ec`))
	assert.Equal(t, []string{"a", "b"}, Segments("//a//b/"))
	assert.Empty(t, Segments("/"))
}

func TestJoin(t *testing.T) {
	assert.Equal(t, "/a/b", Join("a", "b"))
}

func TestCheckName(t *testing.T) {
	for _, name := range []string{"en", "en_US", "root", "sr_Latn", "a..b"} {
		assert.NoError(t, CheckName(name), name)
	}

	for _, name := range []string{"", ".", "..", "../x", "a/b", `a\b`, "/abs", "a\x00b"} {
		assert.Error(t, CheckName(name), name)
	}
}
