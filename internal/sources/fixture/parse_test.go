package fixture

import (
	"testing"
)

func TestOrderedObject(t *testing.T) {
	entries, err := orderedObject([]byte(`{"b": 1, "a": {"x": [1,2]}, "b": 3}`))
	if err != nil {
		t.Fatalf("orderedObject() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len = %d, want 2", len(entries))
	}
	if entries[0].key != "b" || string(entries[0].raw) != "3" {
		t.Errorf("entries[0] = %s:%s, want b:3 (first position, last value)", entries[0].key, entries[0].raw)
	}
	if entries[1].key != "a" {
		t.Errorf("entries[1].key = %s, want a", entries[1].key)
	}
}

func TestOrderedObjectRejectsNonObjects(t *testing.T) {
	for _, input := range []string{`[]`, `"text"`, ``, `42`} {
		if _, err := orderedObject([]byte(input)); err == nil {
			t.Errorf("orderedObject(%q) should fail", input)
		}
	}
}

func TestYAMLToJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "keeps mapping order",
			input: "z: 1\na: two\nm: [true, null, 1.5]\n",
			want:  `{"z":1,"a":"two","m":[true,null,1.5]}`,
		},
		{
			name:  "quoted numbers stay strings",
			input: "page: \"12\"\n",
			want:  `{"page":"12"}`,
		},
		{
			name:  "aliases are expanded",
			input: "base: &b {k: v}\ncopy: *b\n",
			want:  `{"base":{"k":"v"},"copy":{"k":"v"}}`,
		},
		{
			name:  "empty document",
			input: "",
			want:  `{}`,
		},
		{
			name:    "infinity rejected",
			input:   "x: .inf\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := yamlToJSON([]byte(tt.input))
			if tt.wantErr {
				if err == nil {
					t.Errorf("yamlToJSON() = %s, want error", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("yamlToJSON() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("yamlToJSON() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestParseArraySections(t *testing.T) {
	ds, err := Parse([]byte(`{"topics": [{"key": "quality"}], "scenarios": null}`), ".json")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(ds.Topics) != 1 || ds.Topics[0].Key != "quality" {
		t.Errorf("topics = %+v, want quality", ds.Topics)
	}

	if _, err := Parse([]byte(`{"topics": [{"title": "no key"}]}`), ".json"); err == nil {
		t.Error("Parse() of a keyless topic should fail")
	}
}
