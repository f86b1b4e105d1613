package scraper

import (
	"testing"

	"go-career-scraper/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestSplitLocation(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		city    string
		country string
	}{
		{name: "city region country", input: "Lahore, Punjab, Pakistan", city: "Lahore", country: "Pakistan"},
		{name: "single token", input: "Remote", city: "Remote", country: "Remote"},
		{name: "empty", input: "", city: models.NotSpecified, country: models.NotSpecified},
		{name: "whitespace", input: "   ", city: models.NotSpecified, country: models.NotSpecified},
		{name: "trailing comma", input: "Lahore,", city: "Lahore", country: models.NotSpecified},
		{name: "leading comma", input: ", Pakistan", city: models.NotSpecified, country: "Pakistan"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			city, country := SplitLocation(tt.input)
			assert.Equal(t, tt.city, city)
			assert.Equal(t, tt.country, country)
		})
	}
}

func TestParseBracketList(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "empty string", input: "", want: nil},
		{name: "empty list", input: "f(this, [])", want: nil},
		{name: "single entity quoted", input: "showMore(this, [&quot;Pakistan&quot;])", want: []string{"Pakistan"}},
		{
			name:  "multiple entity quoted",
			input: "showMore(this, [&quot;Lahore&quot;, &quot;Karachi&quot;,&quot;Islamabad&quot;])",
			want:  []string{"Lahore", "Karachi", "Islamabad"},
		},
		{name: "literal quotes", input: `x(["Lahore","Karachi"])`, want: []string{"Lahore", "Karachi"}},
		{name: "blank entries dropped", input: "[&quot;&quot;, Lahore ,]", want: []string{"Lahore"}},
		{name: "missing open bracket", input: "&quot;Lahore&quot;]", want: nil},
		{name: "missing close bracket", input: "[&quot;Lahore&quot;", want: nil},
		{name: "reversed brackets", input: "]Lahore[", want: nil},
		{name: "nested brackets keep outer span", input: "[[&quot;A&quot;], [&quot;B&quot;]]", want: []string{"[A]", "[B]"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseBracketList(tt.input))
		})
	}
}

func TestJoinOrDefault(t *testing.T) {
	assert.Equal(t, models.NotSpecified, JoinOrDefault(nil))
	assert.Equal(t, "Lahore, Karachi", JoinOrDefault([]string{"Lahore", "Karachi"}))
}
