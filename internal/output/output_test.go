// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package output

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/urfave/cli/v3"

	"github.com/kmsctl/kmsctl/internal/attrs"
)

func TestSortDataset(t *testing.T) {
	testData := []map[string]interface{}{
		{"name": "zebra-key", "count": 3.0, "manager": "CUSTOMER"},
		{"name": "alpha-key", "count": 1.0, "manager": "AWS"},
		{"name": "beta-key", "count": 2.0, "manager": "CUSTOMER"},
	}

	tests := []struct {
		name      string
		spec      string
		wantOrder []string
	}{
		{
			name:      "ascending by name",
			spec:      "name",
			wantOrder: []string{"alpha-key", "beta-key", "zebra-key"},
		},
		{
			name:      "descending by name",
			spec:      "-name",
			wantOrder: []string{"zebra-key", "beta-key", "alpha-key"},
		},
		{
			name:      "ascending by count",
			spec:      "count",
			wantOrder: []string{"alpha-key", "beta-key", "zebra-key"},
		},
		{
			name:      "descending by count",
			spec:      "-count",
			wantOrder: []string{"zebra-key", "beta-key", "alpha-key"},
		},
		{
			name:      "case sensitive",
			spec:      "!name",
			wantOrder: []string{"alpha-key", "beta-key", "zebra-key"},
		},
		{
			name:      "multiple fields",
			spec:      "manager,name",
			wantOrder: []string{"alpha-key", "beta-key", "zebra-key"},
		},
		{
			name:      "empty spec",
			spec:      "",
			wantOrder: []string{"zebra-key", "alpha-key", "beta-key"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := make([]map[string]interface{}, len(testData))
			copy(data, testData)
			SortDataset(data, tt.spec)
			for i, expectedName := range tt.wantOrder {
				assert.Equal(t, expectedName, data[i]["name"], "at index %d", i)
			}
		})
	}
}

func TestInterfaceToString(t *testing.T) {
	tests := []struct {
		name     string
		value    interface{}
		emptyVal string
		want     string
	}{
		{
			name:  "string",
			value: "hello",
			want:  "hello",
		},
		{
			name:  "int",
			value: 42,
			want:  "42",
		},
		{
			name:  "float64",
			value: 42.5,
			want:  "42",
		},
		{
			name:  "float64 with decimal",
			value: 42.7,
			want:  "43",
		},
		{
			name:  "bool true",
			value: true,
			want:  "true",
		},
		{
			name:  "bool false is zero value",
			value: false,
			want:  "",
		},
		{
			name:  "nil default",
			value: nil,
			want:  "",
		},
		{
			name:     "nil custom",
			value:    nil,
			emptyVal: "-",
			want:     "-",
		},
		{
			name:  "slice",
			value: []string{"a", "b"},
			want:  `["a","b"]`,
		},
		{
			name:  "map",
			value: map[string]int{"x": 1},
			want:  `{"x":1}`,
		},
		{
			name:  "zero value int",
			value: 0,
			want:  "",
		},
		{
			name:     "zero value with custom empty",
			value:    0,
			emptyVal: "N/A",
			want:     "N/A",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			if tt.emptyVal != "" {
				got = InterfaceToString(tt.value, tt.emptyVal)
			} else {
				got = InterfaceToString(tt.value)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewTag(t *testing.T) {
	tests := []struct {
		name string
		h    string
		s    string
		want schemaTag
	}{
		{
			name: "simple name",
			s:    "name",
			want: schemaTag{Kind: "attr", Name: "name"},
		},
		{
			name: "with holder",
			h:    "key",
			s:    "name",
			want: schemaTag{Kind: "attr", Name: "key.name"},
		},
		{
			name: "with option",
			s:    "name,omitempty",
			want: schemaTag{Kind: "attr", Name: "name", Encoding: "omitempty"},
		},
		{
			name: "suppressed field",
			s:    "-",
			want: schemaTag{},
		},
		{
			name: "empty string",
			s:    "",
			want: schemaTag{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewTag(tt.h, tt.s)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTag_Print(t *testing.T) {
	tests := []struct {
		name string
		tag  schemaTag
		want string
	}{
		{
			name: "with name",
			tag:  schemaTag{Name: "key.name"},
			want: "key.name",
		},
		{
			name: "empty tag",
			tag:  schemaTag{},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.tag.print()
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDumpSchemaWalker(t *testing.T) {
	type SimpleStruct struct {
		Name string `json:"name"`
		ID   int    `json:"id"`
	}

	type NestedStruct struct {
		Title    string        `json:"title"`
		Simple   SimpleStruct  `json:"simple"`
		Ptr      *SimpleStruct `json:"ptr_simple"`
		Internal string        `json:"-"`
	}

	tests := []struct {
		name     string
		prefix   string
		typ      reflect.Type
		checkLen func([]schemaTag) bool
	}{
		{
			name:   "simple struct",
			prefix: "",
			typ:    reflect.TypeOf(SimpleStruct{}),
			checkLen: func(tags []schemaTag) bool {
				return len(tags) >= 2
			},
		},
		{
			name:   "nested struct",
			prefix: "parent",
			typ:    reflect.TypeOf(NestedStruct{}),
			checkLen: func(tags []schemaTag) bool {
				return len(tags) >= 1 // At least title
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := dumpSchemaWalker(tt.prefix, tt.typ, 0)
			assert.True(t, tt.checkLen(got), "unexpected tag count: %v", len(got))
		})
	}
}

func TestDumpSchemaWalker_SuppressedFields(t *testing.T) {
	type Detail struct {
		ID     string `json:"id"`
		Policy string `json:"-"`
	}

	got := dumpSchemaWalker("", reflect.TypeOf(Detail{}), 0)
	assert.Len(t, got, 1)
	assert.Equal(t, "id", got[0].Name)
}

func TestGetColors(t *testing.T) {
	// This test verifies that getColors returns color.Color values.
	header, even, odd := getColors("colors")

	// Should return non-nil color.Color values.
	assert.NotNil(t, header)
	assert.NotNil(t, even)
	assert.NotNil(t, odd)
}

// TestTableWriter verifies tabular output formatting.
// Note: TableWriter uses fmt.Println which writes to stdout, not the provided
// writer. This test verifies behavior through the data passed to table rendering,
// since we can't easily intercept fmt.Println. A better approach would be to
// refactor TableWriter to accept an io.Writer parameter for all output.
func TestTableWriter(t *testing.T) {
	tests := []struct {
		name      string
		resultSet []map[string]interface{}
		attrs     attrs.AttrList
		withColor bool
		withTitle string
		checkFunc func(*testing.T, []map[string]interface{}, attrs.AttrList)
	}{
		{
			name:      "empty result set returns early",
			resultSet: []map[string]interface{}{},
			attrs:     attrs.AttrList{},
			checkFunc: func(t *testing.T, rs []map[string]interface{}, a attrs.AttrList) {
				// Empty result set should cause early return
				assert.Empty(t, rs)
			},
		},
		{
			name: "single row preserves data",
			resultSet: []map[string]interface{}{
				{"name": "payments-key", "id": "1234abcd-12ab-34cd-56ef-1234567890ab"},
			},
			attrs: attrs.AttrList{
				attrs.Attr{
					OutputKey: "name",
					Include:   true,
				},
				attrs.Attr{
					OutputKey: "id",
					Include:   true,
				},
			},
			checkFunc: func(t *testing.T, rs []map[string]interface{}, a attrs.AttrList) {
				assert.Len(t, rs, 1)
				assert.Equal(t, "payments-key", rs[0]["name"])
				assert.Equal(t, "1234abcd-12ab-34cd-56ef-1234567890ab", rs[0]["id"])
			},
		},
		{
			name: "respects include flag filtering",
			resultSet: []map[string]interface{}{
				{"name": "payments-key", "hidden": "secret"},
			},
			attrs: attrs.AttrList{
				attrs.Attr{
					OutputKey: "name",
					Include:   true,
				},
				attrs.Attr{
					OutputKey: "hidden",
					Include:   false,
				},
			},
			checkFunc: func(t *testing.T, rs []map[string]interface{}, a attrs.AttrList) {
				// Check that attributes with Include=false are skipped
				included := 0
				for _, attr := range a {
					if attr.Include {
						included++
					}
				}
				assert.Equal(t, 1, included)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Create a no-op writer since TableWriter writes to os.Stdout directly
			buf := new(bytes.Buffer)

			cmd := &cli.Command{
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "color", Value: tt.withColor},
					&cli.BoolFlag{Name: "titles", Value: true},
				},
			}
			cmd.Metadata = make(map[string]interface{})
			if tt.withTitle != "" {
				cmd.Metadata["header"] = tt.withTitle
			}

			// Call TableWriter - output goes to stdout
			TableWriter(tt.resultSet, tt.attrs, cmd, buf)

			// Verify data integrity through passed parameters
			tt.checkFunc(t, tt.resultSet, tt.attrs)
		})
	}
}

// TestInterfaceToStringEdgeCases covers edge cases in value-to-string conversion.
func TestInterfaceToStringEdgeCases(t *testing.T) {
	tests := []struct {
		name     string
		value    interface{}
		emptyVal string
		want     string
	}{
		{
			name:  "empty string",
			value: "",
			want:  "",
		},
		{
			name:     "empty string with custom empty",
			value:    "",
			emptyVal: "N/A",
			want:     "N/A",
		},
		{
			name:  "nested map",
			value: map[string]interface{}{"key": "value"},
			want:  `{"key":"value"}`,
		},
		{
			name:  "nested slice",
			value: []interface{}{1, "two", true},
			want:  `[1,"two",true]`,
		},
		{
			name:  "large number",
			value: 999999.999,
			want:  "1000000",
		},
		{
			name:  "negative number",
			value: -42.0,
			want:  "-42",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			if tt.emptyVal != "" {
				got = InterfaceToString(tt.value, tt.emptyVal)
			} else {
				got = InterfaceToString(tt.value)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func BenchmarkSortDataset(b *testing.B) {
	testData := []map[string]interface{}{
		{"name": "zebra-key", "count": 3.0},
		{"name": "alpha-key", "count": 1.0},
		{"name": "beta-key", "count": 2.0},
	}

	spec := "name"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		data := make([]map[string]interface{}, len(testData))
		copy(data, testData)
		SortDataset(data, spec)
	}
}

func BenchmarkInterfaceToString(b *testing.B) {
	values := []interface{}{
		"string",
		42,
		42.5,
		true,
		nil,
		[]string{"a", "b"},
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, v := range values {
			InterfaceToString(v)
		}
	}
}
