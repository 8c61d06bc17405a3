package bypass

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const articleURL = "https://www.ft.com/content/12345"

func TestBuildURL_KnownMethods(t *testing.T) {
	tests := []struct {
		method Method
		want   string
	}{
		{RemovePaywalls, "https://removepaywalls.com/https://www.ft.com/content/12345"},
		{ArchiveTodayLatest, "https://archive.today/latest/https://www.ft.com/content/12345"},
		{ArchiveFoOldest, "https://archive.fo/oldest/https://www.ft.com/content/12345"},
		{RemovePaywalls3, "https://removepaywalls.com/3/https://www.ft.com/content/12345"},
		{RemovePaywalls4, "https://removepaywalls.com/4/https://www.ft.com/content/12345"},
		{RemovePaywalls5, "https://removepaywalls.com/5/https://www.ft.com/content/12345"},
	}

	for _, tt := range tests {
		t.Run(tt.method.Name(), func(t *testing.T) {
			assert.Equal(t, tt.want, BuildURL(articleURL, tt.method))
		})
	}
}

// TestBuildURL_UnknownFallsBack verifies out-of-range identifiers use method 1
func TestBuildURL_UnknownFallsBack(t *testing.T) {
	want := BuildURL(articleURL, RemovePaywalls)
	for _, id := range []int{0, 7, 9, -1, 100} {
		assert.Equal(t, want, BuildURL(articleURL, Method(id)), "method %d", id)
	}
}

func TestBuildURL_NoEscaping(t *testing.T) {
	raw := "https://example.com/a b?q=1&x=é"
	assert.Equal(t, "https://archive.fo/oldest/"+raw, BuildURL(raw, ArchiveFoOldest))
}

func TestAll_AscendingOrder(t *testing.T) {
	all := All()
	require.Len(t, all, 6)
	for i, m := range all {
		assert.Equal(t, Method(i+1), m)
		assert.True(t, m.Valid())
	}
}

func TestName(t *testing.T) {
	assert.Equal(t, "archive.today", ArchiveTodayLatest.Name())
	assert.Equal(t, "removepaywalls.com method 5", RemovePaywalls5.Name())
	assert.Equal(t, "unknown", Method(9).Name())
}

func TestParse(t *testing.T) {
	m, err := Parse(4)
	require.NoError(t, err)
	assert.Equal(t, RemovePaywalls3, m)

	_, err = Parse(9)
	assert.Error(t, err)
	_, err = Parse(0)
	assert.Error(t, err)
}

func TestString(t *testing.T) {
	assert.Equal(t, "2 (archive.today)", ArchiveTodayLatest.String())
	assert.Equal(t, "7 (unknown)", Method(7).String())
}
