package patch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		path string
		want Kind
	}{
		{"golden.patch", KindGolden},
		{"solution.diff", KindGolden},
		{"/tmp/x/test.patch", KindTest},
		{"Test_Patch.diff", KindTest},
		{"tests.diff", KindTest},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.path))
		})
	}
}

func TestIsDiffFile(t *testing.T) {
	assert.True(t, IsDiffFile("a.diff"))
	assert.True(t, IsDiffFile("a.PATCH"))
	assert.False(t, IsDiffFile("a.log"))
}

func TestSearchKey(t *testing.T) {
	assert.Equal(t, "parses_empty", SearchKey("crate::tests::parses_empty"))
	assert.Equal(t, "plain", SearchKey("plain"))
}

func TestDefinesFunction(t *testing.T) {
	tests := []struct {
		name    string
		content string
		key     string
		want    bool
	}{
		{
			name:    "literal signature",
			content: "+    fn parses_empty() {\n",
			key:     "parses_empty",
			want:    true,
		},
		{
			name:    "attribute then generic fn",
			content: "+    #[test]\n+    fn parses_empty<T>() {\n",
			key:     "parses_empty",
			want:    true,
		},
		{
			name:    "attribute with async fn within three lines",
			content: "+#[test]\n+#[ignore]\n+// slow\n+async fn parses_empty () {}\n",
			key:     "parses_empty",
			want:    true,
		},
		{
			name:    "fn too far after attribute",
			content: "+#[test]\n+\n+\n+\n+fn parses_empty {}\n",
			key:     "parses_empty",
			want:    false,
		},
		{
			name:    "prefix of a longer name",
			content: "+#[test]\n+fn parses_empty_input() {}\n",
			key:     "parses_empty",
			want:    false,
		},
		{
			name:    "only called",
			content: "+    parses_empty();\n",
			key:     "parses_empty",
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DefinesFunction(tt.content, tt.key))
		})
	}
}

func TestLoadAndLookup(t *testing.T) {
	dir := t.TempDir()
	golden := filepath.Join(dir, "golden.patch")
	tests := filepath.Join(dir, "test.patch")
	require.NoError(t, os.WriteFile(golden, []byte("+fn helper_for_parses_empty() {}\n"), 0644))
	require.NoError(t, os.WriteFile(tests, []byte("+#[test]\n+fn other() {}\n"), 0644))

	s, err := Load([]string{golden, tests})
	require.NoError(t, err)
	require.Len(t, s.Golden, 1)
	require.Len(t, s.Tests, 1)
	assert.Equal(t, []string{golden, tests}, s.Paths())
	assert.False(t, s.Empty())

	path, ok := s.GoldenMention("parses_empty")
	assert.True(t, ok)
	assert.Equal(t, golden, path)
	assert.False(t, s.TestDefines("parses_empty"))
	assert.True(t, s.TestDefines("other"))

	_, err = Load([]string{filepath.Join(dir, "missing.diff")})
	assert.Error(t, err)
}
