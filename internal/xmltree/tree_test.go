package xmltree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextOf(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"string", "Alice", "Alice"},
		{"int", 42, "42"},
		{"float", 1.5, "1.5"},
		{"text key", map[string]any{"#text": "Bob", "-id": "7"}, "Bob"},
		{"nested scalar", map[string]any{"Value": "Carol"}, "Carol"},
		{"nested text key", map[string]any{"Inner": map[string]any{"#text": "Dan"}}, "Dan"},
		{"too deep", map[string]any{"A": map[string]any{"B": "x"}}, ""},
		{"slice", []any{"a", "b"}, ""},
		{"empty map", map[string]any{}, ""},
		{"unrecognized", struct{}{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() { TextOf(tt.in) })
			assert.Equal(t, tt.want, TextOf(tt.in))
		})
	}
}

func TestList(t *testing.T) {
	assert.Empty(t, List(nil))
	assert.Empty(t, List(""))
	assert.Empty(t, List("  \n"))

	single := map[string]any{"Name": "a"}
	assert.Equal(t, []any{single}, List(single))

	many := []any{single, map[string]any{"Name": "b"}}
	assert.Equal(t, many, List(many))
}

func TestNumber(t *testing.T) {
	assert.Equal(t, 36000.0, Number("$36,000"))
	assert.Equal(t, 12.5, Number(" 12.5 "))
	assert.Equal(t, -3.0, Number("-3"))
	assert.Equal(t, 0.0, Number("n/a"))
	assert.Equal(t, 0.0, Number("1.2.3"))
	assert.Equal(t, 0.0, Number(nil))
	assert.Equal(t, 7.0, Number(map[string]any{"#text": "7"}))
}

func TestInt(t *testing.T) {
	assert.Equal(t, 42, Int("0042"))
	assert.Equal(t, 3, Int(" 3 "))
	assert.Equal(t, 0, Int("abc"))
	assert.Equal(t, 0, Int(nil))
}

func TestFirstSkipsEmptyValues(t *testing.T) {
	m := map[string]any{"Name": "", "TaskName": "Call Jo"}
	assert.Equal(t, "Call Jo", First(m, "Name", "TaskName"))
	assert.Nil(t, First(m, "Missing"))
	assert.Nil(t, First("not a map", "Name"))
}

func TestParseRepeatedElements(t *testing.T) {
	tree, err := Parse([]byte(`<Root><Item><Name>a</Name></Item><Item><Name>b</Name></Item></Root>`))
	require.NoError(t, err)

	items := List(Get(tree, "Root", "Item"))
	require.Len(t, items, 2)
	assert.Equal(t, "b", TextOf(Get(items[1], "Name")))
}

func TestNormalizeSuccess(t *testing.T) {
	env := Normalize([]byte(`<?xml version="1.0"?>
<ResultInfo>
  <Result>Success</Result>
  <ErrorNumber>0</ErrorNumber>
  <Message></Message>
  <Selections><Contact><Name>Jack</Name></Contact></Selections>
</ResultInfo>`))

	assert.True(t, env.Success)
	assert.Equal(t, 0, env.ErrorNumber)
	assert.Equal(t, "", env.Message)
	assert.Equal(t, "Jack", TextOf(Get(env.Selections(), "Contact", "Name")))
}

func TestNormalizeSuccessIsIndependentOfErrorNumber(t *testing.T) {
	env := Normalize([]byte(`<ResultInfo><Result>SUCCESS</Result><ErrorNumber>12</ErrorNumber></ResultInfo>`))
	assert.True(t, env.Success)
	assert.Equal(t, 12, env.ErrorNumber)

	env = Normalize([]byte(`<ResultInfo><Result>Failure</Result><ErrorNumber>0</ErrorNumber><Message>bad credentials</Message></ResultInfo>`))
	assert.False(t, env.Success)
	assert.Equal(t, "bad credentials", env.Message)
}

func TestNormalizeWithoutResultInfoUsesRoot(t *testing.T) {
	env := Normalize([]byte(`<Response><Result>x</Result></Response>`))
	assert.False(t, env.Success)
	assert.NotNil(t, env.Payload)
	assert.Contains(t, env.Payload, "Response")
}

func TestNormalizeMalformed(t *testing.T) {
	for _, body := range []string{"", "<ResultInfo><Result>", "<html><body>oops"} {
		var env Envelope
		require.NotPanics(t, func() { env = Normalize([]byte(body)) })
		assert.False(t, env.Success)
		assert.NotEmpty(t, env.Message)
		assert.NotNil(t, env.Payload)
		assert.Empty(t, env.Selections())
	}
}

func TestSelectionsMissingOrEmpty(t *testing.T) {
	env := Normalize([]byte(`<ResultInfo><Result>Success</Result><Selections></Selections></ResultInfo>`))
	assert.Empty(t, env.Selections())

	env = Normalize([]byte(`<ResultInfo><Result>Success</Result></ResultInfo>`))
	assert.Empty(t, env.Selections())
}
