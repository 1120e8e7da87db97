package comment

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedTime = time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

func TestNew_TopLevelHasNullParent(t *testing.T) {
	c := New("c1", "Bob", "Hi", fixedTime, "")

	assert.True(t, c.IsTopLevel())
	assert.Equal(t, "", c.Parent())
	assert.Equal(t, "2026-10-16T09:00:00.000Z", c.Timestamp)
	assert.NotNil(t, c.Replies)
	assert.Empty(t, c.Replies)
}

func TestNew_ReplyRecordsParent(t *testing.T) {
	c := New("c2", "Alice", "Hello", fixedTime, "c1")

	assert.False(t, c.IsTopLevel())
	assert.Equal(t, "c1", c.Parent())
}

func TestFormatTimestamp_ConvertsToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	ts := time.Date(2026, 10, 16, 11, 0, 0, 123_000_000, loc)

	assert.Equal(t, "2026-10-16T09:00:00.123Z", FormatTimestamp(ts))
}

func TestParseTimestamp(t *testing.T) {
	got, err := ParseTimestamp("2026-10-16T09:00:00.123Z")
	require.NoError(t, err)
	assert.True(t, got.Equal(fixedTime.Add(123*time.Millisecond)))

	_, err = ParseTimestamp("yesterday")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "yesterday")
}

func TestMarshalJSON_Layout(t *testing.T) {
	f := Forest{New("c1", "Bob", "Hi", fixedTime, "")}
	f[0].Replies = append(f[0].Replies, New("c2", "Alice", "Yo", fixedTime, "c1"))

	data, err := json.Marshal(f)
	require.NoError(t, err)

	want := `[{"id":"c1","author":"Bob","text":"Hi","timestamp":"2026-10-16T09:00:00.000Z","parentId":null,` +
		`"replies":[{"id":"c2","author":"Alice","text":"Yo","timestamp":"2026-10-16T09:00:00.000Z","parentId":"c1","replies":[]}]}]`
	assert.JSONEq(t, want, string(data))
}

func TestMarshalJSON_NilRepliesAndForest(t *testing.T) {
	data, err := json.Marshal(Forest(nil))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))

	data, err = json.Marshal(Comment{ID: "x", Author: "a", Text: "t"})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"replies":[]`)
}

func TestNormalize_FillsNilRepliesAtEveryDepth(t *testing.T) {
	var f Forest
	require.NoError(t, json.Unmarshal([]byte(`[{"id":"a","replies":[{"id":"b"}]},{"id":"c","replies":null}]`), &f))

	f = Normalize(f)

	assert.NotNil(t, f[0].Replies[0].Replies)
	assert.NotNil(t, f[1].Replies)
	assert.Equal(t, Forest{}, Normalize(nil))
}

func TestClone_IsDeep(t *testing.T) {
	f := Forest{New("c1", "Bob", "Hi", fixedTime, "")}
	f[0].Replies = append(f[0].Replies, New("c2", "Alice", "Yo", fixedTime, "c1"))

	cp := f.Clone()
	cp[0].Replies[0].Text = "changed"
	*cp[0].Replies[0].ParentID = "other"
	cp[0].Replies = append(cp[0].Replies, New("c3", "Eve", "!", fixedTime, "c1"))

	assert.Equal(t, "Yo", f[0].Replies[0].Text)
	assert.Equal(t, "c1", f[0].Replies[0].Parent())
	assert.Len(t, f[0].Replies, 1)
}

func TestDraft_IsZero(t *testing.T) {
	assert.True(t, Draft{}.IsZero())
	assert.False(t, Draft{UserName: "Bob"}.IsZero())
}

func TestMarshalJSON_NoHTMLEscaping(t *testing.T) {
	c := New("a", "Ann & Bob", "<b>hi</b>", time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC), "")

	data, err := Forest{c}.MarshalJSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"author":"Ann & Bob"`)
	assert.Contains(t, string(data), `"text":"<b>hi</b>"`)
}
