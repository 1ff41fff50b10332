package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitList(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{name: "empty", input: "", expected: nil},
		{name: "only separators", input: " , ,", expected: nil},
		{name: "single", input: "k1:9092", expected: []string{"k1:9092"}},
		{name: "trims whitespace", input: " k1:9092 , k2:9092 ", expected: []string{"k1:9092", "k2:9092"}},
		{name: "drops repeats", input: "k1,k2,k1", expected: []string{"k1", "k2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SplitList(tt.input, ","))
		})
	}
}
