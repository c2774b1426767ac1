package record

import "testing"

func TestParseKind(t *testing.T) {
	tests := []struct {
		input  string
		want   Kind
		wantOK bool
	}{
		{"excelSheets", KindSheets, true},
		{"excel-sheets", KindSheets, true},
		{"  Sheets ", KindSheets, true},
		{"websiteLinks", KindLinks, true},
		{"website-links", KindLinks, true},
		{"links", KindLinks, true},
		{"tasks", KindTasks, true},
		{"TASK", KindTasks, true},
		{"notes", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseKind(tt.input)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ParseKind(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestSpecFor(t *testing.T) {
	for _, k := range Kinds() {
		spec, ok := SpecFor(k)
		if !ok {
			t.Fatalf("SpecFor(%q) not found", k)
		}
		if spec.Kind != k {
			t.Errorf("SpecFor(%q).Kind = %q", k, spec.Kind)
		}
	}

	if _, ok := SpecFor("notes"); ok {
		t.Error("SpecFor(notes) should not be found")
	}
}

func TestSpec_RequiredMessage(t *testing.T) {
	sheets, _ := SpecFor(KindSheets)
	tasks, _ := SpecFor(KindTasks)

	if got := sheets.RequiredMessage(); got != "Name and URL are required" {
		t.Errorf("sheets message = %q", got)
	}
	if got := tasks.RequiredMessage(); got != "Name is required" {
		t.Errorf("tasks message = %q", got)
	}
	if got := sheets.RequiredFields(); len(got) != 2 {
		t.Errorf("sheets required = %v, want [name url]", got)
	}
}

func TestKinds_Order(t *testing.T) {
	got := Kinds()
	want := []Kind{KindSheets, KindLinks, KindTasks}
	if len(got) != len(want) {
		t.Fatalf("Kinds() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Kinds()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
