package app

import "testing"

func TestNewFixRun(t *testing.T) {
	tests := []struct {
		name       string
		operation  string
		parameters string
	}{
		{
			name:       "with parameters",
			operation:  "RestoreBackup",
			parameters: ".config_backup/build.gradle.kts.backup.20240115_103000",
		},
		{
			name:       "empty parameters",
			operation:  "Fix",
			parameters: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewFixRun(tt.operation, tt.parameters)

			if r.Operation != tt.operation {
				t.Errorf("Operation = %q, want %q", r.Operation, tt.operation)
			}
			if r.Parameters != tt.parameters {
				t.Errorf("Parameters = %q, want %q", r.Parameters, tt.parameters)
			}
			if r.Status != "success" {
				t.Errorf("Status = %q, want %q", r.Status, "success")
			}
			if r.ID != 0 {
				t.Errorf("ID = %d, want 0", r.ID)
			}
		})
	}
}

func TestFixRun_Persisted(t *testing.T) {
	tests := []struct {
		name string
		id   int64
		want bool
	}{
		{name: "not persisted when ID is 0", id: 0, want: false},
		{name: "persisted when ID is positive", id: 1, want: true},
		{name: "persisted when ID is large", id: 99999, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &FixRun{ID: tt.id}
			if got := r.Persisted(); got != tt.want {
				t.Errorf("Persisted() = %v, want %v", got, tt.want)
			}
		})
	}
}
