package htmlutil

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func TestCleanText(t *testing.T) {
	table := []struct {
		input    string
		expected string
	}{
		{input: "  Liga X \n", expected: "Liga X"},
		{input: "TeamA\t -  \n TeamB", expected: "TeamA - TeamB"},
		{input: "2:1\u0000", expected: "2:1"},
		{input: "", expected: ""},
	}
	for _, row := range table {
		require.Equal(t, row.expected, CleanText(row.input))
	}
}

func TestFirstMatch(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`
		<table><tr class="row dark">
			<td class="a"><a href="/x">first</a></td>
			<td class="b">  second
				value </td>
		</tr></table>`))
	if err != nil {
		t.Fatal(err)
	}
	row := doc.Find("tr").First()

	sel, ok := FirstMatch(row, []string{"td.missing", "td.b"})
	require.True(t, ok)
	require.Equal(t, "second value", Text(sel))

	sel, ok = FirstMatch(row, []string{"td.a a", "td.b"})
	require.True(t, ok)
	require.Equal(t, "first", Text(sel))
	require.Equal(t, "first", GetText(sel.Nodes[0]))

	_, ok = FirstMatch(row, []string{"td.none"})
	require.False(t, ok)

	require.True(t, HasAnyClass(row, []string{"center", "dark"}))
	require.False(t, HasAnyClass(row, []string{"center"}))
}

func TestFirstMatchExcept(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`
		<table><tr>
			<td><a href="/virtual-soccer/liga-x/">Liga X</a></td>
			<td><a href="/virtual-soccer/liga-x/teama-teamb/">TeamA - TeamB</a></td>
		</tr></table>`))
	if err != nil {
		t.Fatal(err)
	}
	row := doc.Find("tr").First()
	league := row.Find("td:nth-child(1) a")

	sel, ok := FirstMatchExcept(row, []string{`a[href*="/liga-x/"]`}, league)
	require.True(t, ok)
	require.Equal(t, 1, sel.Length())
	require.Equal(t, "TeamA - TeamB", Text(sel.First()))

	_, ok = FirstMatchExcept(row, []string{"td:nth-child(1) a"}, league)
	require.False(t, ok)
}
